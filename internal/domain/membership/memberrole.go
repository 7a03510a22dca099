package membership

import (
	"context"
	"fmt"
	"time"
)

// MemberRole is a custom role: a base access level refined with additional
// ability grants. The grants themselves live in the permission enforcer; the
// aggregate only carries the base level the resolver falls back to.
type MemberRole struct {
	id          uint
	namespaceID uint
	name        string
	baseLevel   AccessLevel
	createdAt   time.Time
}

// NewMemberRole creates a custom role rooted at a namespace.
func NewMemberRole(namespaceID uint, name string, baseLevel AccessLevel) (*MemberRole, error) {
	if namespaceID == 0 {
		return nil, fmt.Errorf("namespace ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}
	if !baseLevel.IsValid() || baseLevel == NoAccess {
		return nil, fmt.Errorf("invalid base access level: %d", baseLevel)
	}
	return &MemberRole{
		namespaceID: namespaceID,
		name:        name,
		baseLevel:   baseLevel,
		createdAt:   time.Now(),
	}, nil
}

// ReconstructMemberRole reconstructs a custom role from persistence.
func ReconstructMemberRole(id, namespaceID uint, name string, baseLevel AccessLevel, createdAt time.Time) (*MemberRole, error) {
	if id == 0 {
		return nil, fmt.Errorf("member role ID cannot be zero")
	}
	if !baseLevel.IsValid() {
		return nil, fmt.Errorf("invalid base access level: %d", baseLevel)
	}
	return &MemberRole{
		id:          id,
		namespaceID: namespaceID,
		name:        name,
		baseLevel:   baseLevel,
		createdAt:   createdAt,
	}, nil
}

// ID returns the role ID
func (r *MemberRole) ID() uint {
	return r.id
}

// SetID sets the role ID (only for persistence layer use)
func (r *MemberRole) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("member role ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("member role ID cannot be zero")
	}
	r.id = id
	return nil
}

// NamespaceID returns the namespace the role is defined in
func (r *MemberRole) NamespaceID() uint {
	return r.namespaceID
}

// Name returns the role name
func (r *MemberRole) Name() string {
	return r.name
}

// BaseLevel returns the access level the role builds on
func (r *MemberRole) BaseLevel() AccessLevel {
	return r.baseLevel
}

// CreatedAt returns the creation timestamp
func (r *MemberRole) CreatedAt() time.Time {
	return r.createdAt
}

// AbilityEnforcer checks and manages the ability grants attached to custom
// roles. Implementations must be safe for concurrent use.
type AbilityEnforcer interface {
	// Allows reports whether the role grants the action on the resource kind.
	Allows(roleID uint, resourceKind, action string) (bool, error)
	Grant(roleID uint, resourceKind, action string) error
	Revoke(roleID uint, resourceKind, action string) error

	// SyncAbilities replaces the role's grant set wholesale.
	SyncAbilities(roleID uint, abilities [][2]string) error
	AbilitiesFor(roleID uint) ([][]string, error)
	Reload() error
}

// MemberRoleRepository defines persistence operations for custom roles.
type MemberRoleRepository interface {
	Create(ctx context.Context, role *MemberRole) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*MemberRole, error)
	ListForNamespace(ctx context.Context, namespaceID uint) ([]*MemberRole, error)
}
