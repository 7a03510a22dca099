// Package audit defines the audit trail sink this core reports authorized
// mutating actions to. Persistence and delivery live outside the decision
// path.
package audit

import (
	"context"
	"time"
)

// Event is one audit trail entry: who did what to which resource, and what
// the gate decided.
type Event struct {
	ActorID      uint           `json:"actor_id"`
	Action       string         `json:"action"`
	ResourceKind string         `json:"resource_kind"`
	ResourceID   uint           `json:"resource_id"`
	Reason       string         `json:"reason"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Recorder is the audit sink. Implementations must not block the decision
// path; recording failures are logged, never surfaced to the requester.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// AuthorFilterKind selects how the event list is narrowed by acting user.
type AuthorFilterKind int

const (
	// AuthorFilterUnset applies no author constraint.
	AuthorFilterUnset AuthorFilterKind = iota
	// AuthorFilterNone keeps only system events with no acting user.
	AuthorFilterNone
	// AuthorFilterAny keeps only events with an acting user.
	AuthorFilterAny
	// AuthorFilterID keeps only events by one specific user.
	AuthorFilterID
)

// AuthorFilter narrows an event listing by its acting user.
type AuthorFilter struct {
	Kind AuthorFilterKind
	ID   uint
}

// Reader serves the audit event list endpoint. A non-zero idAfter switches
// the listing to keyset pagination and the offset is ignored.
type Reader interface {
	ListForResource(ctx context.Context, resourceKind string, resourceID uint, author AuthorFilter, idAfter uint, offset, limit int, sortAsc bool) ([]Event, int64, error)
}

// NopRecorder discards events. Used where auditing is not licensed.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(ctx context.Context, event Event) error {
	return nil
}
