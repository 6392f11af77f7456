package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PassageStore = (*PassageStore)(nil)

// PassageStore implements driven.PassageStore using PostgreSQL with pgvector
type PassageStore struct {
	db *DB
}

// NewPassageStore creates a new PassageStore
func NewPassageStore(db *DB) *PassageStore {
	return &PassageStore{db: db}
}

const insertPassageQuery = `
	INSERT INTO passages (document_id, chunk_number, chunk_count, content, embedding, token_length, source_url, state, ingested_at)
	VALUES ($1, $2, $3, $4, $5::vector, $6, $7, $8, $9)
`

// Upsert stores a batch of passages
func (s *PassageStore) Upsert(ctx context.Context, passages []*domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		return insertPassages(ctx, tx, passages)
	})
}

// DeleteBySourceURLs removes every passage originating from the given URLs
func (s *PassageStore) DeleteBySourceURLs(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM passages WHERE source_url = ANY($1)`,
		pq.Array(urls),
	)
	return err
}

// Replace atomically swaps the passages of the given source URLs for the new
// batch. Re-ingesting a URL never accumulates duplicates.
func (s *PassageStore) Replace(ctx context.Context, urls []string, passages []*domain.Passage) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if len(urls) > 0 {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM passages WHERE source_url = ANY($1)`,
				pq.Array(urls),
			); err != nil {
				return err
			}
		}
		return insertPassages(ctx, tx, passages)
	})
}

// Search returns the k nearest passages for one state by cosine similarity,
// best first
func (s *PassageStore) Search(ctx context.Context, embedding []float32, k int, state string) ([]*domain.ScoredPassage, error) {
	query := `
		SELECT document_id, chunk_number, chunk_count, content, token_length, source_url, state, ingested_at,
			1 - (embedding <=> $1::vector) AS score
		FROM passages
		WHERE state = $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, encodeVector(embedding), state, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.ScoredPassage
	for rows.Next() {
		var passage domain.Passage
		var score float64
		err := rows.Scan(
			&passage.DocumentID,
			&passage.ChunkNumber,
			&passage.ChunkCount,
			&passage.Content,
			&passage.TokenLength,
			&passage.SourceURL,
			&passage.State,
			&passage.IngestedAt,
			&score,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &domain.ScoredPassage{Passage: &passage, Score: score})
	}
	return results, rows.Err()
}

// CountBySourceURL returns how many passages a source URL currently holds
func (s *PassageStore) CountBySourceURL(ctx context.Context, url string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM passages WHERE source_url = $1`,
		url,
	).Scan(&count)
	return count, err
}

func insertPassages(ctx context.Context, tx *sql.Tx, passages []*domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, insertPassageQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range passages {
		_, err = stmt.ExecContext(ctx,
			p.DocumentID,
			p.ChunkNumber,
			p.ChunkCount,
			p.Content,
			encodeVector(p.Embedding),
			p.TokenLength,
			p.SourceURL,
			p.State,
			p.IngestedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// encodeVector renders an embedding in pgvector's text literal form
func encodeVector(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
