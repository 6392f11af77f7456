package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCrawlFailed indicates the crawl engine produced no usable web pages
	ErrCrawlFailed = errors.New("crawl failed")

	// ErrEmbeddingDimension indicates an embedding with the wrong vector width
	ErrEmbeddingDimension = errors.New("embedding dimension mismatch")

	// ErrInvalidTransition indicates a crawl job status change that would
	// regress the state machine
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrServiceUnavailable indicates an upstream AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
