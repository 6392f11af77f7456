package mocks

import (
	"context"
	"errors"
	"hash/fnv"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// MockEmbeddingService produces deterministic vectors at the pipeline's
// fixed dimension. The same text always embeds to the same vector, which
// lets tests seed the passage store with passages that score exactly 1.0
// against a known query.
type MockEmbeddingService struct {
	failNext bool
}

func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.failNext {
		m.failNext = false
		return nil, errors.New("mock embedding failure")
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text)
	}
	return vectors, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.failNext {
		m.failNext = false
		return nil, errors.New("mock embedding failure")
	}
	return deterministicVector(query), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return domain.EmbeddingDimensions
}

func (m *MockEmbeddingService) Model() string {
	return "mock-embedding-model"
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	return nil
}

// SetFailNext makes the next Embed or EmbedQuery call return an error.
func (m *MockEmbeddingService) SetFailNext(fail bool) {
	m.failNext = fail
}

// deterministicVector hashes the text into a pseudo-random but stable
// vector of the pipeline's fixed width.
func deterministicVector(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	state := h.Sum32()

	vector := make([]float32, domain.EmbeddingDimensions)
	for i := range vector {
		state = state*1664525 + 1013904223
		vector[i] = float32(state%2000)/1000.0 - 1.0
	}
	return vector
}
