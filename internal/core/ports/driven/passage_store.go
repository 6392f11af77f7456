package driven

import (
	"context"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
)

// PassageStore handles passage persistence and vector similarity search
type PassageStore interface {
	// Upsert inserts passages, overwriting on (document_id, chunk_number)
	Upsert(ctx context.Context, passages []*domain.Passage) error

	// DeleteBySourceURLs removes every passage whose source URL is in urls
	DeleteBySourceURLs(ctx context.Context, urls []string) error

	// Replace deletes all passages for the given URLs, then inserts the new
	// set, within one transaction. Re-crawling a URL replaces its passages
	// wholesale rather than merging.
	Replace(ctx context.Context, urls []string, passages []*domain.Passage) error

	// Search returns the k nearest passages for the embedding, restricted to
	// one state, ordered by descending similarity score
	Search(ctx context.Context, embedding []float32, k int, state string) ([]*domain.ScoredPassage, error)

	// CountBySourceURL returns the number of stored passages for a URL
	CountBySourceURL(ctx context.Context, url string) (int, error)
}
