package jobs

import (
	"context"
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// Handler processes one job.
type Handler func(ctx context.Context, job Job) error

// Worker drains the queue and dispatches jobs to registered handlers.
type Worker struct {
	queue    *Queue
	handlers map[string]Handler
	logger   logger.Interface
}

// NewWorker creates a worker over the queue.
func NewWorker(queue *Queue, log logger.Interface) *Worker {
	return &Worker{
		queue:    queue,
		handlers: make(map[string]Handler),
		logger:   log,
	}
}

// Register binds a handler to a job kind. Not safe to call after Run starts.
func (w *Worker) Register(kind string, handler Handler) {
	w.handlers[kind] = handler
}

// Run consumes jobs until the context is canceled. Handler failures are
// logged and the job is dropped; jobs carry no delivery guarantee beyond
// at-most-once.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Infow("worker started", "kinds", len(w.handlers))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return ctx.Err()
		default:
		}

		job, err := w.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("worker stopped")
				return ctx.Err()
			}
			w.logger.Errorw("failed to dequeue job", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		handler, ok := w.handlers[job.Kind]
		if !ok {
			w.logger.Warnw("no handler for job kind", "kind", job.Kind)
			continue
		}

		if err := handler(ctx, *job); err != nil {
			w.logger.Errorw("job handler failed",
				"kind", job.Kind,
				"resource_id", job.ResourceID,
				"error", err)
		}
	}
}
