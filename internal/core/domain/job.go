package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a crawl job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is an end state
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransitionTo reports whether the status may move to next.
// Transitions are monotonic: pending -> processing -> {completed, failed},
// with failed also reachable directly from pending.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing || next == JobStatusFailed
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	default:
		return false
	}
}

// CrawlJob tracks one ingestion run for a state (jurisdiction)
type CrawlJob struct {
	ID              string     `json:"id"`
	State           string     `json:"state"`
	InputURLs       []string   `json:"input_urls"`
	MaxURLs         int        `json:"max_urls"`
	Status          JobStatus  `json:"status"`
	WebURLsFound    int        `json:"web_urls_found"`
	PDFURLsFound    int        `json:"pdf_urls_found"`
	Error           string     `json:"error,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds float64    `json:"duration_seconds"`
}

// NewCrawlJob creates a pending job for the given state and URL frontier
func NewCrawlJob(state string, urls []string, maxURLs int) *CrawlJob {
	return &CrawlJob{
		ID:        uuid.NewString(),
		State:     state,
		InputURLs: urls,
		MaxURLs:   maxURLs,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}
}

// Start moves the job into processing, setting StartedAt once
func (j *CrawlJob) Start() error {
	if !j.Status.CanTransitionTo(JobStatusProcessing) {
		return ErrInvalidTransition
	}
	j.Status = JobStatusProcessing
	if j.StartedAt == nil {
		now := time.Now()
		j.StartedAt = &now
	}
	return nil
}

// Complete moves the job to its successful terminal state with final counts
func (j *CrawlJob) Complete(webFound, pdfFound int) error {
	if !j.Status.CanTransitionTo(JobStatusCompleted) {
		return ErrInvalidTransition
	}
	j.Status = JobStatusCompleted
	j.WebURLsFound = webFound
	j.PDFURLsFound = pdfFound
	j.finish()
	return nil
}

// Fail moves the job to its failed terminal state with a captured message
func (j *CrawlJob) Fail(message string) error {
	if !j.Status.CanTransitionTo(JobStatusFailed) {
		return ErrInvalidTransition
	}
	j.Status = JobStatusFailed
	j.Error = message
	j.finish()
	return nil
}

// finish stamps CompletedAt and DurationSeconds exactly once
func (j *CrawlJob) finish() {
	if j.CompletedAt != nil {
		return
	}
	now := time.Now()
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationSeconds = now.Sub(*j.StartedAt).Seconds()
	}
}

// JobFilter selects jobs for listing
type JobFilter struct {
	State  string
	Status JobStatus
	Limit  int
	Offset int
}
