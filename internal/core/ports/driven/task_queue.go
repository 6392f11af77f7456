package driven

import (
	"context"
	"time"
)

// IngestTask is a detached ingestion unit of work. The CrawlJob row is the
// only externally observable progress signal; nothing awaits the task
// in-process after the initial acknowledgment.
type IngestTask struct {
	ID         string    `json:"id"`
	JobID      string    `json:"job_id"`
	State      string    `json:"state"`
	URLs       []string  `json:"urls"`
	MaxURLs    int       `json:"max_urls"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// TaskQueue hands detached ingestion work to the background worker
type TaskQueue interface {
	// Enqueue adds a task for processing
	Enqueue(ctx context.Context, task *IngestTask) error

	// DequeueWithTimeout retrieves the next task, waiting up to timeout
	// seconds. Returns nil, nil if the timeout elapses with no task.
	DequeueWithTimeout(ctx context.Context, timeout int) (*IngestTask, error)

	// Ack acknowledges successful completion of a task
	Ack(ctx context.Context, taskID string) error

	// Nack returns a failed task to the queue for retry, or parks it once
	// the retry budget is exhausted
	Nack(ctx context.Context, taskID string, reason string) error

	// Ping checks if the queue backend is healthy
	Ping(ctx context.Context) error

	// Close cleans up resources
	Close() error
}
