package protection

import "errors"

var (
	// ErrBranchNameRequired is returned when a rule is created without a name
	ErrBranchNameRequired = errors.New("branch name is required")

	// ErrAccessEntriesTooShort is returned when an update would leave a rule
	// with no access entries
	ErrAccessEntriesTooShort = errors.New("access levels is too short (minimum is 1 entry)")

	// ErrAccessEntryNotFound is returned when a referenced child entry does
	// not exist on the aggregate
	ErrAccessEntryNotFound = errors.New("access entry not found")

	// ErrAlreadyProtected is returned when protecting a branch or environment
	// that already has a rule in the same scope
	ErrAlreadyProtected = errors.New("protected rule already exists")

	// ErrNotProtected is returned when unprotecting a branch or environment
	// that has no rule
	ErrNotProtected = errors.New("protected rule not found")

	// ErrSHAMismatch is returned when an approval references a commit that is
	// no longer the deployment's head
	ErrSHAMismatch = errors.New("sha does not match the deployment head")

	// ErrCheckNotFailed is returned when retrying a status check whose last
	// state is not failed
	ErrCheckNotFailed = errors.New("status check cannot be retried unless it has failed")

	// ErrNotEligibleApprover is returned when the actor satisfies no deploy
	// access level or approval rule
	ErrNotEligibleApprover = errors.New("actor is not an eligible approver")

	// ErrAmbiguousRepresentation is returned when the actor qualifies via
	// multiple groups and no represented_as disambiguation was given
	ErrAmbiguousRepresentation = errors.New("approver qualifies via multiple groups, represented_as is required")
)
