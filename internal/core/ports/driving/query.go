package driving

import (
	"context"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// QueryService answers natural-language questions scoped to one state
type QueryService interface {
	// Answer resolves a question via cache, retrieval and the language model
	Answer(ctx context.Context, state, question string) (*domain.Answer, error)
}
