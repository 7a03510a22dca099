// Package jobs provides the deduplicated background job queue. Enqueue is
// guarded by a deterministic redis key so the same logical job is never
// pending twice; a worker binary drains the list and dispatches handlers.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// ErrAlreadyPending is returned when the job's dedupe key is already held by
// a pending job.
var ErrAlreadyPending = errors.New("job is already pending")

// Job is one unit of background work. Kind selects the handler; ResourceID
// scopes the dedupe key.
type Job struct {
	Kind       string         `json:"kind"`
	ResourceID uint           `json:"resource_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// dedupeKey is deterministic so concurrent enqueues of the same logical job
// collapse onto one pending entry.
func dedupeKey(prefix, kind string, resourceID uint) string {
	return fmt.Sprintf("%s:pending:%s:%d", prefix, kind, resourceID)
}

// Queue is a redis list with a SETNX pending guard per (kind, resource id).
type Queue struct {
	client     *redis.Client
	prefix     string
	pendingTTL time.Duration
	logger     logger.Interface
}

// NewQueue creates a job queue. The prefix namespaces both the list and the
// pending guard keys; pendingTTL bounds how long a crashed worker can block
// re-enqueue.
func NewQueue(client *redis.Client, prefix string, pendingTTL time.Duration, log logger.Interface) *Queue {
	return &Queue{
		client:     client,
		prefix:     prefix,
		pendingTTL: pendingTTL,
		logger:     log,
	}
}

func (q *Queue) listKey() string {
	return q.prefix + ":queue"
}

// Enqueue pushes a job unless one with the same dedupe key is already
// pending. Returns ErrAlreadyPending in that case; the job is not re-queued.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	key := dedupeKey(q.prefix, job.Kind, job.ResourceID)
	acquired, err := q.client.SetNX(ctx, key, 1, q.pendingTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire pending guard: %w", err)
	}
	if !acquired {
		return ErrAlreadyPending
	}

	if err := q.push(ctx, job); err != nil {
		// Release the guard so a later enqueue can retry.
		q.client.Del(ctx, key)
		return err
	}

	q.logger.Infow("job enqueued", "kind", job.Kind, "resource_id", job.ResourceID)
	return nil
}

// Push appends a job without the dedupe guard. Append-only work like audit
// event persistence uses this path: every event is distinct, so collapsing
// them would lose entries.
func (q *Queue) Push(ctx context.Context, job Job) error {
	return q.push(ctx, job)
}

func (q *Queue) push(ctx context.Context, job Job) error {
	job.EnqueuedAt = time.Now()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.listKey(), data).Err(); err != nil {
		return fmt.Errorf("failed to push job: %w", err)
	}
	return nil
}

// Pending reports whether a job with this dedupe key is waiting.
func (q *Queue) Pending(ctx context.Context, kind string, resourceID uint) (bool, error) {
	n, err := q.client.Exists(ctx, dedupeKey(q.prefix, kind, resourceID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check pending status: %w", err)
	}
	return n > 0, nil
}

// Dequeue blocks up to timeout for the next job and releases its pending
// guard. A zero timeout blocks indefinitely.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BRPop(ctx, timeout, q.listKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop job: %w", err)
	}

	// BRPOP returns [key, value].
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	if err := q.client.Del(ctx, dedupeKey(q.prefix, job.Kind, job.ResourceID)).Err(); err != nil {
		q.logger.Warnw("failed to release pending guard",
			"kind", job.Kind,
			"resource_id", job.ResourceID,
			"error", err)
	}
	return &job, nil
}
