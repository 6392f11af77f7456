package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// MockPassageStore is an in-memory PassageStore with brute-force cosine search
type MockPassageStore struct {
	mu       sync.RWMutex
	passages []*domain.Passage
	failNext error
}

// NewMockPassageStore creates a new MockPassageStore
func NewMockPassageStore() *MockPassageStore {
	return &MockPassageStore{}
}

func (m *MockPassageStore) Upsert(ctx context.Context, passages []*domain.Passage) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passages = append(m.passages, passages...)
	return nil
}

func (m *MockPassageStore) DeleteBySourceURLs(ctx context.Context, urls []string) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(urls)
	return nil
}

func (m *MockPassageStore) Replace(ctx context.Context, urls []string, passages []*domain.Passage) error {
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(urls)
	m.passages = append(m.passages, passages...)
	return nil
}

func (m *MockPassageStore) Search(ctx context.Context, embedding []float32, k int, state string) ([]*domain.ScoredPassage, error) {
	if err := m.takeFailure(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*domain.ScoredPassage
	for _, p := range m.passages {
		if p.State != state {
			continue
		}
		results = append(results, &domain.ScoredPassage{
			Passage: p,
			Score:   cosine(embedding, p.Embedding),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *MockPassageStore) CountBySourceURL(ctx context.Context, url string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, p := range m.passages {
		if p.SourceURL == url {
			count++
		}
	}
	return count, nil
}

// Helper methods for testing

// SetFailNext makes the next mutating or searching call fail with err
func (m *MockPassageStore) SetFailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// Seed inserts passages directly, bypassing failure injection
func (m *MockPassageStore) Seed(passages ...*domain.Passage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passages = append(m.passages, passages...)
}

// Len returns the number of stored passages
func (m *MockPassageStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.passages)
}

func (m *MockPassageStore) takeFailure() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *MockPassageStore) deleteLocked(urls []string) {
	drop := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		drop[u] = struct{}{}
	}
	kept := m.passages[:0]
	for _, p := range m.passages {
		if _, ok := drop[p.SourceURL]; !ok {
			kept = append(kept, p)
		}
	}
	m.passages = kept
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
