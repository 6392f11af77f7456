package chunker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

// Config controls one chunking call
type Config struct {
	// WindowSize is the number of neighbouring units on each side included
	// in a unit's anchored window. 0 degenerates each window to the anchor
	// unit alone.
	WindowSize int

	// SimilarityThreshold closes the current chunk when the cosine
	// similarity between adjacent windows falls below it
	SimilarityThreshold float64

	// MaxTokens is the character budget per chunk (character count is the
	// token-length proxy)
	MaxTokens int

	// WithEmbeddings attaches each chunk's anchored-window embedding
	WithEmbeddings bool
}

// DefaultConfig returns the observed defaults
func DefaultConfig() Config {
	return Config{
		WindowSize:          2,
		SimilarityThreshold: 0.75,
		MaxTokens:           384,
		WithEmbeddings:      false,
	}
}

// Chunk is one emitted chunk. Embedding and TokenLength are optional members
// selected by Config, not by a separate type.
type Chunk struct {
	DocumentID  string
	Label       string
	Number      int // 1-based
	Count       int // total chunks for this call, backfilled after the walk
	Content     string
	Embedding   []float32
	TokenLength int
}

// SemanticChunker groups atomic units into chunks by windowed similarity.
// Window embeddings are generated concurrently on a bounded pool; order is
// reconstructed by index afterwards, not by completion time.
type SemanticChunker struct {
	embedder driven.EmbeddingService
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a SemanticChunker
type Option func(*SemanticChunker)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *SemanticChunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a semantic chunker with a pool sized to the host
func New(embedder driven.EmbeddingService, opts ...Option) (*SemanticChunker, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}

	size := runtime.NumCPU()
	if size < 2 {
		size = 2
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding pool: %w", err)
	}

	c := &SemanticChunker{
		embedder: embedder,
		pool:     pool,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the worker pool
func (c *SemanticChunker) Close() {
	c.pool.Release()
}

// Chunk splits text into semantically coherent chunks tagged with label.
// The document ID is derived per call and unique across calls.
func (c *SemanticChunker) Chunk(ctx context.Context, text, label string, cfg Config) ([]*Chunk, error) {
	units := SplitUnits(text)
	if len(units) == 0 {
		return nil, nil
	}

	docID := uuid.NewString()

	embeddings, err := c.embedWindows(ctx, units, cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	var chunks []*Chunk
	current := []string{units[0]}
	currentStart := 0

	emit := func(start int) {
		content := strings.Join(current, " ")
		chunk := &Chunk{
			DocumentID:  docID,
			Label:       label,
			Number:      len(chunks) + 1,
			Content:     content,
			TokenLength: len(content),
		}
		if cfg.WithEmbeddings {
			chunk.Embedding = embeddings[start]
		}
		chunks = append(chunks, chunk)
	}

	for i := 1; i < len(units); i++ {
		similarity := CosineSimilarity(embeddings[i-1], embeddings[i])
		accumulated := len(strings.Join(current, " "))
		overBudget := accumulated+1+len(units[i]) > cfg.MaxTokens

		if similarity < cfg.SimilarityThreshold || overBudget {
			emit(currentStart)
			current = []string{units[i]}
			currentStart = i
			continue
		}
		current = append(current, units[i])
	}
	emit(currentStart)

	for _, chunk := range chunks {
		chunk.Count = len(chunks)
	}

	c.logger.Debug("chunked document",
		"label", label,
		"units", len(units),
		"chunks", len(chunks),
	)

	return chunks, nil
}

// embedWindows embeds every unit's anchored window concurrently
func (c *SemanticChunker) embedWindows(ctx context.Context, units []string, windowSize int) ([][]float32, error) {
	embeddings := make([][]float32, len(units))
	errs := make([]error, len(units))

	var wg sync.WaitGroup
	for i := range units {
		i := i
		wg.Add(1)
		submitErr := c.pool.Submit(func() {
			defer wg.Done()
			window := anchoredWindow(units, i, windowSize)
			embedding, err := c.embedder.EmbedQuery(ctx, window)
			if err != nil {
				errs[i] = err
				return
			}
			if len(embedding) != c.embedder.Dimensions() {
				errs[i] = fmt.Errorf("%w: got %d, want %d",
					domain.ErrEmbeddingDimension, len(embedding), c.embedder.Dimensions())
				return
			}
			embeddings[i] = embedding
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("failed to submit embedding task: %w", submitErr)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("window embedding failed: %w", err)
		}
	}

	return embeddings, nil
}

// anchoredWindow joins units [i-windowSize .. i+windowSize], clamped to the
// sequence bounds, with spaces
func anchoredWindow(units []string, i, windowSize int) string {
	start := i - windowSize
	if start < 0 {
		start = 0
	}
	end := i + windowSize
	if end > len(units)-1 {
		end = len(units) - 1
	}
	return strings.Join(units[start:end+1], " ")
}
