package services

import (
	"context"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driving"
)

// Ensure jobService implements JobService
var _ driving.JobService = (*jobService)(nil)

// jobService exposes crawl job status for polling
type jobService struct {
	store driven.JobStore
}

// NewJobService creates a new JobService
func NewJobService(store driven.JobStore) driving.JobService {
	return &jobService{store: store}
}

// Get retrieves a job by ID
func (s *jobService) Get(ctx context.Context, id string) (*domain.CrawlJob, error) {
	return s.store.Get(ctx, id)
}

// List retrieves jobs matching the filter
func (s *jobService) List(ctx context.Context, filter domain.JobFilter) ([]*domain.CrawlJob, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.store.List(ctx, filter)
}
