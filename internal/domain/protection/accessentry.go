// Package protection provides resource-specific protection rules: protected
// branches, protected environments, deployment approvals, and external status
// checks, plus the evaluator that decides whether a given access level may
// act against them.
package protection

import (
	"fmt"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
)

// EntryKind distinguishes the three mutually exclusive shapes of an access
// entry: a role threshold, a specific user, or a specific group.
type EntryKind string

const (
	EntryKindRole  EntryKind = "role"
	EntryKindUser  EntryKind = "user"
	EntryKindGroup EntryKind = "group"
)

// IsValid checks if the entry kind is valid
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindRole, EntryKindUser, EntryKindGroup:
		return true
	default:
		return false
	}
}

// GroupInheritanceType controls whether a group grant cascades to subgroups
// and shared groups.
type GroupInheritanceType int

const (
	GroupInheritanceDefault GroupInheritanceType = 0
	GroupInheritanceAll     GroupInheritanceType = 1
)

// IsValid checks if the inheritance type is valid
func (t GroupInheritanceType) IsValid() bool {
	return t == GroupInheritanceDefault || t == GroupInheritanceAll
}

// AccessEntry names one party allowed to act: exactly one of a role
// threshold, a user id, or a group id.
type AccessEntry struct {
	id               uint
	kind             EntryKind
	accessLevel      membership.AccessLevel // set for role entries
	userID           uint                   // set for user entries
	groupID          uint                   // set for group entries
	groupInheritance GroupInheritanceType   // group entries only
}

// NewRoleEntry creates an access entry naming a role threshold.
func NewRoleEntry(level membership.AccessLevel) (*AccessEntry, error) {
	if !level.IsValid() || level == membership.NoAccess {
		return nil, fmt.Errorf("invalid access level: %d", level)
	}
	return &AccessEntry{kind: EntryKindRole, accessLevel: level}, nil
}

// NewUserEntry creates an access entry naming a specific user.
func NewUserEntry(userID uint) (*AccessEntry, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	return &AccessEntry{kind: EntryKindUser, userID: userID}, nil
}

// NewGroupEntry creates an access entry naming a group.
func NewGroupEntry(groupID uint, inheritance GroupInheritanceType) (*AccessEntry, error) {
	if groupID == 0 {
		return nil, fmt.Errorf("group ID is required")
	}
	if !inheritance.IsValid() {
		return nil, fmt.Errorf("invalid group inheritance type: %d", inheritance)
	}
	return &AccessEntry{kind: EntryKindGroup, groupID: groupID, groupInheritance: inheritance}, nil
}

// ReconstructAccessEntry reconstructs an access entry from persistence.
func ReconstructAccessEntry(id uint, kind EntryKind, level membership.AccessLevel, userID, groupID uint, inheritance GroupInheritanceType) (*AccessEntry, error) {
	if id == 0 {
		return nil, fmt.Errorf("access entry ID cannot be zero")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid entry kind: %s", kind)
	}
	return &AccessEntry{
		id:               id,
		kind:             kind,
		accessLevel:      level,
		userID:           userID,
		groupID:          groupID,
		groupInheritance: inheritance,
	}, nil
}

// ID returns the entry ID
func (e *AccessEntry) ID() uint {
	return e.id
}

// SetID sets the entry ID (only for persistence layer use)
func (e *AccessEntry) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("access entry ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("access entry ID cannot be zero")
	}
	e.id = id
	return nil
}

// Kind returns the entry kind
func (e *AccessEntry) Kind() EntryKind {
	return e.kind
}

// AccessLevel returns the role threshold for role entries
func (e *AccessEntry) AccessLevel() membership.AccessLevel {
	return e.accessLevel
}

// UserID returns the user id for user entries
func (e *AccessEntry) UserID() uint {
	return e.userID
}

// GroupID returns the group id for group entries
func (e *AccessEntry) GroupID() uint {
	return e.groupID
}

// GroupInheritance returns the inheritance type for group entries
func (e *AccessEntry) GroupInheritance() GroupInheritanceType {
	return e.groupInheritance
}

// Satisfies reports whether the given actor qualifies under this entry.
// actorGroups holds the ids of groups the actor is an active member of.
func (e *AccessEntry) Satisfies(actorID uint, actorLevel membership.AccessLevel, actorGroups []uint) bool {
	switch e.kind {
	case EntryKindRole:
		return actorLevel.AtLeast(e.accessLevel)
	case EntryKindUser:
		return e.userID == actorID
	case EntryKindGroup:
		for _, g := range actorGroups {
			if g == e.groupID {
				return true
			}
		}
		return false
	default:
		return false
	}
}
