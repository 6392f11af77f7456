package driven

import (
	"context"
)

// LLMService provides the chat completion used to phrase answers.
// It is a black box: failures propagate, no retries are attempted here.
type LLMService interface {
	// Complete produces a completion for a system instruction and user turn
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
