package protection

import (
	"fmt"
	"time"
)

// CheckState is the last recorded result of an external status check
type CheckState string

const (
	CheckStatePending CheckState = "pending"
	CheckStatePassed  CheckState = "passed"
	CheckStateFailed  CheckState = "failed"
)

// IsValid checks if the check state is valid
func (s CheckState) IsValid() bool {
	switch s {
	case CheckStatePending, CheckStatePassed, CheckStateFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the check state
func (s CheckState) String() string {
	return string(s)
}

// ExternalStatusCheck is a third-party gate on merge requests. Only its last
// recorded state lives here; the check itself runs outside this core.
type ExternalStatusCheck struct {
	id        uint
	projectID uint
	name      string
	url       string
	lastState CheckState
	updatedAt time.Time
}

// NewExternalStatusCheck creates a status check definition.
func NewExternalStatusCheck(projectID uint, name, url string) (*ExternalStatusCheck, error) {
	if projectID == 0 {
		return nil, fmt.Errorf("project ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("status check name is required")
	}
	if url == "" {
		return nil, fmt.Errorf("status check URL is required")
	}
	return &ExternalStatusCheck{
		projectID: projectID,
		name:      name,
		url:       url,
		lastState: CheckStatePending,
		updatedAt: time.Now(),
	}, nil
}

// ReconstructExternalStatusCheck reconstructs a check from persistence.
func ReconstructExternalStatusCheck(id, projectID uint, name, url string, lastState CheckState, updatedAt time.Time) (*ExternalStatusCheck, error) {
	if id == 0 {
		return nil, fmt.Errorf("status check ID cannot be zero")
	}
	if !lastState.IsValid() {
		return nil, fmt.Errorf("invalid check state: %s", lastState)
	}
	return &ExternalStatusCheck{
		id:        id,
		projectID: projectID,
		name:      name,
		url:       url,
		lastState: lastState,
		updatedAt: updatedAt,
	}, nil
}

// ID returns the check ID
func (c *ExternalStatusCheck) ID() uint {
	return c.id
}

// SetID sets the check ID (only for persistence layer use)
func (c *ExternalStatusCheck) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("status check ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("status check ID cannot be zero")
	}
	c.id = id
	return nil
}

// ProjectID returns the owning project
func (c *ExternalStatusCheck) ProjectID() uint {
	return c.projectID
}

// Name returns the check name
func (c *ExternalStatusCheck) Name() string {
	return c.name
}

// URL returns the external endpoint
func (c *ExternalStatusCheck) URL() string {
	return c.url
}

// LastState returns the last recorded state
func (c *ExternalStatusCheck) LastState() CheckState {
	return c.lastState
}

// UpdatedAt returns the last state change timestamp
func (c *ExternalStatusCheck) UpdatedAt() time.Time {
	return c.updatedAt
}

// Record stores a new result for the check.
func (c *ExternalStatusCheck) Record(state CheckState) error {
	if !state.IsValid() {
		return fmt.Errorf("invalid check state: %s", state)
	}
	c.lastState = state
	c.updatedAt = time.Now()
	return nil
}

// Retry resets the check to pending. A retry is only valid when the last
// recorded state is exactly failed; retrying a passed or pending check is a
// semantic error, not an idempotent success.
func (c *ExternalStatusCheck) Retry() error {
	if c.lastState != CheckStateFailed {
		return ErrCheckNotFailed
	}
	c.lastState = CheckStatePending
	c.updatedAt = time.Now()
	return nil
}
