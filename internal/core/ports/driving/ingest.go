package driving

import (
	"context"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// IngestService ingests web documents for one state
type IngestService interface {
	// Ingest crawls, chunks, embeds and stores the request's URLs
	// synchronously, returning the full run statistics
	Ingest(ctx context.Context, state string, req domain.IngestRequest) (*domain.IngestResult, error)

	// IngestDetached validates the request, creates the job and enqueues the
	// work, returning immediately with the job ID. Job-status polling is the
	// only way to observe completion.
	IngestDetached(ctx context.Context, state string, req domain.IngestRequest) (string, error)
}
