package domain

import (
	"fmt"
	"time"
)

// EmbeddingDimensions is the fixed vector width the pipeline stores.
// A mismatched embedding is a hard failure, never a silent truncation.
const EmbeddingDimensions = 384

// Passage is one semantically coherent span of a source page, embedded as a
// single vector and scoped to one state (jurisdiction)
type Passage struct {
	DocumentID  string    `json:"document_id"`
	ChunkNumber int       `json:"chunk_number"` // 1-based ordinal within the document
	ChunkCount  int       `json:"chunk_count"`  // total chunks for the document
	Content     string    `json:"content"`
	Embedding   []float32 `json:"embedding,omitempty"`
	TokenLength int       `json:"token_length"`
	SourceURL   string    `json:"source_url"`
	State       string    `json:"state"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// Validate checks the invariants enforced at creation time
func (p *Passage) Validate() error {
	if p.SourceURL == "" || p.State == "" {
		return fmt.Errorf("%w: passage requires a source URL and state", ErrInvalidInput)
	}
	if len(p.Embedding) != EmbeddingDimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrEmbeddingDimension, len(p.Embedding), EmbeddingDimensions)
	}
	return nil
}

// ScoredPassage pairs a retrieved passage with its similarity score
type ScoredPassage struct {
	Passage *Passage `json:"passage"`
	Score   float64  `json:"score"`
}
