package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// MockJobStore is an in-memory JobStore for testing
type MockJobStore struct {
	mu   sync.RWMutex
	jobs map[string]*domain.CrawlJob
}

// NewMockJobStore creates a new MockJobStore
func NewMockJobStore() *MockJobStore {
	return &MockJobStore{jobs: make(map[string]*domain.CrawlJob)}
}

func (m *MockJobStore) Create(ctx context.Context, job *domain.CrawlJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *MockJobStore) Get(ctx context.Context, id string) (*domain.CrawlJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *MockJobStore) Update(ctx context.Context, job *domain.CrawlJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *MockJobStore) UpdateProgress(ctx context.Context, id string, webFound, pdfFound int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	job.WebURLsFound = webFound
	job.PDFURLsFound = pdfFound
	return nil
}

func (m *MockJobStore) List(ctx context.Context, filter domain.JobFilter) ([]*domain.CrawlJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var jobs []*domain.CrawlJob
	for _, job := range m.jobs {
		if filter.State != "" && job.State != filter.State {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		copied := *job
		jobs = append(jobs, &copied)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if filter.Limit > 0 && len(jobs) > filter.Limit {
		jobs = jobs[:filter.Limit]
	}
	return jobs, nil
}
