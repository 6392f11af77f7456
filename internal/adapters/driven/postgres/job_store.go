package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/civica-labs/lexrag-core/internal/core/domain"
	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.JobStore = (*JobStore)(nil)

// JobStore implements driven.JobStore using PostgreSQL
type JobStore struct {
	db *DB
}

// NewJobStore creates a new JobStore
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

// Create persists a new crawl job
func (s *JobStore) Create(ctx context.Context, job *domain.CrawlJob) error {
	query := `
		INSERT INTO crawl_jobs (id, state, input_urls, max_urls, status, web_urls_found, pdf_urls_found, error, created_at, started_at, completed_at, duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.State,
		pq.Array(job.InputURLs),
		job.MaxURLs,
		string(job.Status),
		job.WebURLsFound,
		job.PDFURLsFound,
		job.Error,
		job.CreatedAt,
		NullTime(job.StartedAt),
		NullTime(job.CompletedAt),
		job.DurationSeconds,
	)
	return err
}

// Get retrieves a job by ID
func (s *JobStore) Get(ctx context.Context, id string) (*domain.CrawlJob, error) {
	query := `
		SELECT id, state, input_urls, max_urls, status, web_urls_found, pdf_urls_found, error, created_at, started_at, completed_at, duration_seconds
		FROM crawl_jobs
		WHERE id = $1
	`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Update persists the full state of an existing job
func (s *JobStore) Update(ctx context.Context, job *domain.CrawlJob) error {
	query := `
		UPDATE crawl_jobs
		SET status = $2,
			web_urls_found = $3,
			pdf_urls_found = $4,
			error = $5,
			started_at = $6,
			completed_at = $7,
			duration_seconds = $8
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		job.ID,
		string(job.Status),
		job.WebURLsFound,
		job.PDFURLsFound,
		job.Error,
		NullTime(job.StartedAt),
		NullTime(job.CompletedAt),
		job.DurationSeconds,
	)
	if err != nil {
		return err
	}
	return requireRow(result, job.ID)
}

// UpdateProgress records discovered URL counts while a job is still running
func (s *JobStore) UpdateProgress(ctx context.Context, id string, webFound, pdfFound int) error {
	query := `
		UPDATE crawl_jobs
		SET web_urls_found = $2, pdf_urls_found = $3
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id, webFound, pdfFound)
	if err != nil {
		return err
	}
	return requireRow(result, id)
}

// List retrieves jobs matching the filter, newest first
func (s *JobStore) List(ctx context.Context, filter domain.JobFilter) ([]*domain.CrawlJob, error) {
	var conditions []string
	var args []any

	if filter.State != "" {
		args = append(args, filter.State)
		conditions = append(conditions, fmt.Sprintf("state = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `
		SELECT id, state, input_urls, max_urls, status, web_urls_found, pdf_urls_found, error, created_at, started_at, completed_at, duration_seconds
		FROM crawl_jobs
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.CrawlJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.CrawlJob, error) {
	var job domain.CrawlJob
	var status string
	var inputURLs pq.StringArray
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&job.ID,
		&job.State,
		&inputURLs,
		&job.MaxURLs,
		&status,
		&job.WebURLsFound,
		&job.PDFURLsFound,
		&job.Error,
		&job.CreatedAt,
		&startedAt,
		&completedAt,
		&job.DurationSeconds,
	)
	if err != nil {
		return nil, err
	}

	job.InputURLs = inputURLs
	job.Status = domain.JobStatus(status)
	job.StartedAt = TimePtr(startedAt)
	job.CompletedAt = TimePtr(completedAt)
	return &job, nil
}

func requireRow(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	return nil
}
