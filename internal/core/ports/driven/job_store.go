package driven

import (
	"context"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// JobStore handles crawl job persistence (PostgreSQL)
type JobStore interface {
	// Create persists a new job
	Create(ctx context.Context, job *domain.CrawlJob) error

	// Get retrieves a job by ID
	Get(ctx context.Context, id string) (*domain.CrawlJob, error)

	// Update persists the job's current status, counts and timestamps
	Update(ctx context.Context, job *domain.CrawlJob) error

	// UpdateProgress writes the URL counters without touching status.
	// May be called any number of times while the job is processing.
	UpdateProgress(ctx context.Context, id string, webFound, pdfFound int) error

	// List retrieves jobs matching the filter, newest first
	List(ctx context.Context, filter domain.JobFilter) ([]*domain.CrawlJob, error)
}
