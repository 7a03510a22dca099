package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// Job kinds consumed by the worker binary.
const (
	JobKindAuditEvent     = "audit_event"
	JobKindMembershipSync = "membership_sync"
)

var _ audit.Recorder = (*QueueRecorder)(nil)

// QueueRecorder is the audit sink used on the decision path: it hands the
// event to the job queue and returns. Persistence happens in the worker.
type QueueRecorder struct {
	queue  *Queue
	logger logger.Interface
}

// NewQueueRecorder creates an enqueueing audit recorder.
func NewQueueRecorder(queue *Queue, log logger.Interface) *QueueRecorder {
	return &QueueRecorder{
		queue:  queue,
		logger: log,
	}
}

// Record enqueues the event. Failures are logged and swallowed so the
// authorization decision never depends on the audit trail being writable.
func (r *QueueRecorder) Record(ctx context.Context, event audit.Event) error {
	payload, err := eventPayload(event)
	if err != nil {
		r.logger.Errorw("failed to encode audit event", "error", err)
		return nil
	}

	job := Job{
		Kind:       JobKindAuditEvent,
		ResourceID: event.ResourceID,
		Payload:    payload,
	}
	if err := r.queue.Push(ctx, job); err != nil {
		r.logger.Errorw("failed to enqueue audit event",
			"actor_id", event.ActorID,
			"action", event.Action,
			"error", err)
	}
	return nil
}

func eventPayload(event audit.Event) (map[string]any, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit event: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode audit event payload: %w", err)
	}
	return payload, nil
}

// EventFromJob decodes the audit event carried by a job payload. The worker
// uses it to hand events to the gorm-backed recorder.
func EventFromJob(job Job) (audit.Event, error) {
	raw, err := json.Marshal(job.Payload)
	if err != nil {
		return audit.Event{}, fmt.Errorf("failed to marshal job payload: %w", err)
	}
	var event audit.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return audit.Event{}, fmt.Errorf("failed to unmarshal audit event: %w", err)
	}
	return event, nil
}
