package driven

import (
	"context"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// AnswerCache stores resolved answers keyed by (state, normalized question).
// Cache failures are always non-fatal to callers: a read error is treated as
// a miss, a write error is logged and skipped.
type AnswerCache interface {
	// Get retrieves a cached answer. Returns domain.ErrNotFound on miss.
	Get(ctx context.Context, state, question string) (*domain.Answer, error)

	// Set stores an answer under the expiry class
	Set(ctx context.Context, state, question string, answer *domain.Answer, class domain.TTLClass) error

	// Ping checks if the cache backend is healthy
	Ping(ctx context.Context) error
}
