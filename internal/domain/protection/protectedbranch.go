package protection

import (
	"fmt"
	"strings"
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
)

// ScopeKind distinguishes project-level rules from group-level rules. A rule
// belongs to exactly one scope.
type ScopeKind string

const (
	ScopeProject ScopeKind = "project"
	ScopeGroup   ScopeKind = "group"
)

// IsValid checks if the scope kind is valid
func (s ScopeKind) IsValid() bool {
	return s == ScopeProject || s == ScopeGroup
}

// ProtectedBranch is the protected branch aggregate. The name is either an
// exact branch name or a trailing-* wildcard pattern. A branch may be
// protected at both project and group level at the same time; the evaluator
// applies the union of their constraints.
type ProtectedBranch struct {
	id           uint
	name         string
	scope        ScopeKind
	scopeID      uint
	pushEntries  []*AccessEntry
	mergeEntries []*AccessEntry
	createdAt    time.Time
	updatedAt    time.Time
}

// NewProtectedBranch creates a protected branch rule. At least one push entry
// is required.
func NewProtectedBranch(name string, scope ScopeKind, scopeID uint, pushEntries, mergeEntries []*AccessEntry) (*ProtectedBranch, error) {
	if name == "" {
		return nil, ErrBranchNameRequired
	}
	if !scope.IsValid() {
		return nil, fmt.Errorf("invalid scope kind: %s", scope)
	}
	if scopeID == 0 {
		return nil, fmt.Errorf("scope ID is required")
	}
	if len(pushEntries) == 0 {
		return nil, ErrAccessEntriesTooShort
	}

	now := time.Now()
	return &ProtectedBranch{
		name:         name,
		scope:        scope,
		scopeID:      scopeID,
		pushEntries:  pushEntries,
		mergeEntries: mergeEntries,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructProtectedBranch reconstructs a protected branch from persistence.
func ReconstructProtectedBranch(id uint, name string, scope ScopeKind, scopeID uint, pushEntries, mergeEntries []*AccessEntry, createdAt, updatedAt time.Time) (*ProtectedBranch, error) {
	if id == 0 {
		return nil, fmt.Errorf("protected branch ID cannot be zero")
	}
	if !scope.IsValid() {
		return nil, fmt.Errorf("invalid scope kind: %s", scope)
	}
	return &ProtectedBranch{
		id:           id,
		name:         name,
		scope:        scope,
		scopeID:      scopeID,
		pushEntries:  pushEntries,
		mergeEntries: mergeEntries,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// ID returns the protected branch ID
func (b *ProtectedBranch) ID() uint {
	return b.id
}

// SetID sets the ID (only for persistence layer use)
func (b *ProtectedBranch) SetID(id uint) error {
	if b.id != 0 {
		return fmt.Errorf("protected branch ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("protected branch ID cannot be zero")
	}
	b.id = id
	return nil
}

// Name returns the branch name or wildcard pattern
func (b *ProtectedBranch) Name() string {
	return b.name
}

// Scope returns the scope kind
func (b *ProtectedBranch) Scope() ScopeKind {
	return b.scope
}

// ScopeID returns the project or group id owning the rule
func (b *ProtectedBranch) ScopeID() uint {
	return b.scopeID
}

// PushEntries returns who may push
func (b *ProtectedBranch) PushEntries() []*AccessEntry {
	return b.pushEntries
}

// MergeEntries returns who may merge
func (b *ProtectedBranch) MergeEntries() []*AccessEntry {
	return b.mergeEntries
}

// CreatedAt returns the creation timestamp
func (b *ProtectedBranch) CreatedAt() time.Time {
	return b.createdAt
}

// UpdatedAt returns the last update timestamp
func (b *ProtectedBranch) UpdatedAt() time.Time {
	return b.updatedAt
}

// IsWildcard reports whether the rule name is a wildcard pattern.
func (b *ProtectedBranch) IsWildcard() bool {
	return strings.Contains(b.name, "*")
}

// Matches reports whether the rule covers the given branch name. Wildcards
// match any run of characters.
func (b *ProtectedBranch) Matches(branchName string) bool {
	if !b.IsWildcard() {
		return b.name == branchName
	}
	return wildcardMatch(b.name, branchName)
}

// wildcardMatch matches a pattern where '*' spans any run of characters.
func wildcardMatch(pattern, name string) bool {
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(name, parts[0]) {
		return false
	}
	name = name[len(parts[0]):]
	for i := 1; i < len(parts); i++ {
		part := parts[i]
		if part == "" {
			if i == len(parts)-1 {
				return true
			}
			continue
		}
		idx := strings.Index(name, part)
		if idx < 0 {
			return false
		}
		if i == len(parts)-1 && !strings.HasSuffix(name, part) {
			return false
		}
		name = name[idx+len(part):]
	}
	return name == "" || strings.HasSuffix(pattern, "*")
}

// ReplacePushEntries swaps the push entry list. The list may never become
// empty: a protected branch with nobody allowed to push is a configuration
// that can only be reached by deleting the rule itself.
func (b *ProtectedBranch) ReplacePushEntries(entries []*AccessEntry) error {
	if len(entries) == 0 {
		return ErrAccessEntriesTooShort
	}
	b.pushEntries = entries
	b.updatedAt = time.Now()
	return nil
}

// ReplaceMergeEntries swaps the merge entry list.
func (b *ProtectedBranch) ReplaceMergeEntries(entries []*AccessEntry) {
	b.mergeEntries = entries
	b.updatedAt = time.Now()
}

// RemovePushEntry deletes one push entry by id, refusing to drop the last one.
func (b *ProtectedBranch) RemovePushEntry(entryID uint) error {
	if len(b.pushEntries) <= 1 {
		return ErrAccessEntriesTooShort
	}
	for i, e := range b.pushEntries {
		if e.ID() == entryID {
			b.pushEntries = append(b.pushEntries[:i], b.pushEntries[i+1:]...)
			b.updatedAt = time.Now()
			return nil
		}
	}
	return ErrAccessEntryNotFound
}

// MinimumPushLevel returns the lowest role threshold among role push entries,
// or Maintainer when only user/group entries exist.
func (b *ProtectedBranch) MinimumPushLevel() membership.AccessLevel {
	min := membership.AccessLevel(0)
	found := false
	for _, e := range b.pushEntries {
		if e.Kind() != EntryKindRole {
			continue
		}
		if !found || e.AccessLevel() < min {
			min = e.AccessLevel()
			found = true
		}
	}
	if !found {
		return membership.Maintainer
	}
	return min
}
