package driving

import (
	"context"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// JobService exposes crawl job status for polling
type JobService interface {
	// Get retrieves a job by ID
	Get(ctx context.Context, id string) (*domain.CrawlJob, error)

	// List retrieves jobs matching the filter
	List(ctx context.Context, filter domain.JobFilter) ([]*domain.CrawlJob, error)
}
