package membership

import (
	"errors"
	"fmt"
)

var (
	// ErrMemberNotFound is returned when a membership record is not found
	ErrMemberNotFound = errors.New("member not found")

	// ErrMemberNotAwaiting is returned when approving a member that is not
	// in the awaiting state
	ErrMemberNotAwaiting = errors.New("member is not awaiting activation")

	// ErrDuplicateMember is returned when the actor already holds a grant on
	// the resource
	ErrDuplicateMember = errors.New("member already exists")

	// ErrMinimalAccessNotLicensed is returned when assigning minimal access
	// without the gating feature
	ErrMinimalAccessNotLicensed = errors.New("minimal access requires a licensed feature")

	// ErrMinimalAccessScope is returned when assigning minimal access below a
	// top-level group
	ErrMinimalAccessScope = errors.New("minimal access is only available on top-level groups")
)

// ErrSeatLimitReached returns the structured error for a namespace at its
// seat cap. The message names the limit so callers can surface it verbatim.
func ErrSeatLimitReached(namespaceID uint, limit int) error {
	return fmt.Errorf("cannot add member: namespace %d has reached its seat limit of %d", namespaceID, limit)
}

// ErrTooManyAssignees returns the structured error for exceeding the
// assignee/reviewer cap.
func ErrTooManyAssignees(max int) error {
	return fmt.Errorf("total number of assignees or reviewers exceeds limit of %d", max)
}
