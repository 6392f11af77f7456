package mocks

import (
	"context"
	"sync"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// MockAnswerCache is an in-memory AnswerCache recording the TTL class used
// for each write
type MockAnswerCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Answer
	classes map[string]domain.TTLClass
	getErr  error
	setErr  error
}

// NewMockAnswerCache creates a new MockAnswerCache
func NewMockAnswerCache() *MockAnswerCache {
	return &MockAnswerCache{
		entries: make(map[string]*domain.Answer),
		classes: make(map[string]domain.TTLClass),
	}
}

func (m *MockAnswerCache) Get(ctx context.Context, state, question string) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	answer, ok := m.entries[state+"|"+question]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return answer, nil
}

func (m *MockAnswerCache) Set(ctx context.Context, state, question string, answer *domain.Answer, class domain.TTLClass) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	key := state + "|" + question
	m.entries[key] = answer
	m.classes[key] = class
	return nil
}

func (m *MockAnswerCache) Ping(ctx context.Context) error {
	return nil
}

// Helper methods for testing

// ClassFor returns the TTL class recorded for a key
func (m *MockAnswerCache) ClassFor(state, question string) (domain.TTLClass, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	class, ok := m.classes[state+"|"+question]
	return class, ok
}

// SetGetError makes every Get fail with err
func (m *MockAnswerCache) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// SetSetError makes every Set fail with err
func (m *MockAnswerCache) SetSetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}
