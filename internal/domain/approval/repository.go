package approval

import "context"

// Merge request workflow states.
const (
	MergeRequestStateOpened = "opened"
	MergeRequestStateMerged = "merged"
	MergeRequestStateClosed = "closed"
)

// MergeRequest is the read model approvals attach to: it pins the head SHA
// and the owning project.
type MergeRequest struct {
	ID        uint
	ProjectID uint
	HeadSHA   string
	State     string
}

// Open reports whether the merge request can still be approved or merged.
func (m *MergeRequest) Open() bool {
	return m.State == MergeRequestStateOpened
}

// MergeRequestRepository resolves merge requests for approval operations.
type MergeRequestRepository interface {
	GetByID(ctx context.Context, id uint) (*MergeRequest, error)

	// UpdateState moves the merge request to a new workflow state.
	UpdateState(ctx context.Context, id uint, state string) error
}

// Repository defines persistence operations for merge request approval state.
type Repository interface {
	// GetState loads the merge request's snapshotted rules and collected
	// approvals in one read.
	GetState(ctx context.Context, mergeRequestID uint) (*State, error)

	// SaveState persists the approval set and any newly snapshotted rules.
	SaveState(ctx context.Context, state *State) error

	// ListProjectRules returns the project's rule templates, the source for
	// merge request snapshots.
	ListProjectRules(ctx context.Context, projectID uint) ([]*Rule, error)

	// CreateProjectRule persists a new rule template.
	CreateProjectRule(ctx context.Context, projectID uint, rule *Rule) error
}
