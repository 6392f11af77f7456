package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/civica-labs/lexrag-core/internal/core/ports/driven"
)

const (
	// Stream names
	taskStream = "lexrag:ingest:tasks"
	taskGroup  = "lexrag:ingest:workers"
	deadStream = "lexrag:ingest:dead"

	// Default consumer name prefix
	consumerPrefix = "worker-"

	// Tasks are retried this many times before landing in the dead stream
	maxAttempts = 3
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using Redis Streams.
// A consumer group tracks deliveries, so an acknowledged task is processed
// exactly once and an abandoned one can be reclaimed.
type Queue struct {
	client       *redis.Client
	consumerName string

	mu        sync.Mutex
	delivered map[string]string // task ID -> stream message ID
}

// NewQueue creates a new Redis-backed task queue.
// The consumerName should be unique per worker instance (e.g., hostname + PID).
func NewQueue(client *redis.Client, consumerName string) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if consumerName == "" {
		consumerName = fmt.Sprintf("%s%d", consumerPrefix, time.Now().UnixNano())
	}

	q := &Queue{
		client:       client,
		consumerName: consumerName,
		delivered:    make(map[string]string),
	}

	// Create consumer group if it doesn't exist
	ctx := context.Background()
	err := q.client.XGroupCreateMkStream(ctx, taskStream, taskGroup, "0").Err()
	if err != nil && !isGroupExistsError(err) {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return q, nil
}

// Enqueue adds an ingestion task to the stream
func (q *Queue) Enqueue(ctx context.Context, task *driven.IngestTask) error {
	if task == nil {
		return errors.New("task is required")
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: taskStream,
		Values: map[string]interface{}{
			"task_id": task.ID,
			"task":    string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// DequeueWithTimeout blocks up to timeout seconds for the next task.
// Returns (nil, nil) when the timeout elapses with nothing to do.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*driven.IngestTask, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    taskGroup,
		Consumer: q.consumerName,
		Streams:  []string{taskStream, ">"},
		Count:    1,
		Block:    time.Duration(timeout) * time.Second,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task stream: %w", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}

	msg := streams[0].Messages[0]
	raw, ok := msg.Values["task"].(string)
	if !ok {
		// Malformed entry; acknowledge so it never blocks the group
		q.client.XAck(ctx, taskStream, taskGroup, msg.ID)
		return nil, fmt.Errorf("malformed task entry %s", msg.ID)
	}

	var task driven.IngestTask
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		q.client.XAck(ctx, taskStream, taskGroup, msg.ID)
		return nil, fmt.Errorf("failed to unmarshal task %s: %w", msg.ID, err)
	}

	q.mu.Lock()
	q.delivered[task.ID] = msg.ID
	q.mu.Unlock()

	return &task, nil
}

// Ack acknowledges a completed task
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	msgID, ok := q.takeDelivery(taskID)
	if !ok {
		return fmt.Errorf("task %s was not delivered to this consumer", taskID)
	}

	if err := q.client.XAck(ctx, taskStream, taskGroup, msgID).Err(); err != nil {
		return fmt.Errorf("failed to ack task %s: %w", taskID, err)
	}
	return nil
}

// Nack acknowledges the failed delivery and either re-enqueues the task with
// an incremented attempt count or, once attempts are exhausted, records it
// in the dead stream
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	msgID, ok := q.takeDelivery(taskID)
	if !ok {
		return fmt.Errorf("task %s was not delivered to this consumer", taskID)
	}

	msgs, err := q.client.XRange(ctx, taskStream, msgID, msgID).Result()
	if err != nil {
		return fmt.Errorf("failed to load task %s for retry: %w", taskID, err)
	}

	pipe := q.client.Pipeline()
	pipe.XAck(ctx, taskStream, taskGroup, msgID)

	if len(msgs) > 0 {
		if raw, ok := msgs[0].Values["task"].(string); ok {
			var task driven.IngestTask
			if err := json.Unmarshal([]byte(raw), &task); err == nil {
				task.Attempts++
				if data, err := json.Marshal(&task); err == nil {
					stream := taskStream
					values := map[string]interface{}{
						"task_id": task.ID,
						"task":    string(data),
					}
					if task.Attempts >= maxAttempts {
						stream = deadStream
						values["reason"] = reason
					}
					pipe.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: values})
				}
			}
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to nack task %s: %w", taskID, err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close releases the queue's resources. The shared Redis client is owned by
// the caller and stays open.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.delivered = make(map[string]string)
	return nil
}

func (q *Queue) takeDelivery(taskID string) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgID, ok := q.delivered[taskID]
	if ok {
		delete(q.delivered, taskID)
	}
	return msgID, ok
}

func isGroupExistsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "BUSYGROUP")
}
