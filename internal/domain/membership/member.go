package membership

import (
	"fmt"
	"time"
)

// State represents the activation state of a membership
type State string

const (
	// StateActive members contribute their access level normally.
	StateActive State = "active"
	// StateAwaiting members have a role record but are pending activation
	// (seat-limited, SSO, or group-managed-account members). They contribute
	// NoAccess for mutating actions until approved.
	StateAwaiting State = "awaiting"
	// StateInvited members have not accepted the invitation yet.
	StateInvited State = "invited"
)

// IsValid checks if the state is valid
func (s State) IsValid() bool {
	switch s {
	case StateActive, StateAwaiting, StateInvited:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// Source represents where a membership grant came from
type Source string

const (
	SourceDirect Source = "direct"
	SourceLDAP   Source = "ldap"
)

// IsValid checks if the source is valid
func (s Source) IsValid() bool {
	switch s {
	case SourceDirect, SourceLDAP:
		return true
	default:
		return false
	}
}

// Member is the membership aggregate: one actor's grant on one resource.
type Member struct {
	id          uint
	actorID     uint
	resourceID  uint
	accessLevel AccessLevel
	state       State
	source      Source
	// ldapOverride marks an LDAP-managed membership whose level was manually
	// overridden; it counts as an explicit grant during resolution.
	ldapOverride bool
	// memberRoleID references a custom role refining this grant, zero if none.
	memberRoleID uint
	createdAt    time.Time
	updatedAt    time.Time
}

// NewMember creates a membership grant.
func NewMember(actorID, resourceID uint, level AccessLevel, state State, source Source) (*Member, error) {
	if actorID == 0 {
		return nil, fmt.Errorf("actor ID is required")
	}
	if resourceID == 0 {
		return nil, fmt.Errorf("resource ID is required")
	}
	if !level.IsValid() || level == NoAccess {
		return nil, fmt.Errorf("invalid access level: %d", level)
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid member state: %s", state)
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid member source: %s", source)
	}

	now := time.Now()
	return &Member{
		actorID:     actorID,
		resourceID:  resourceID,
		accessLevel: level,
		state:       state,
		source:      source,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructMember reconstructs a membership from persistence.
func ReconstructMember(
	id, actorID, resourceID uint,
	level AccessLevel,
	state State,
	source Source,
	ldapOverride bool,
	memberRoleID uint,
	createdAt, updatedAt time.Time,
) (*Member, error) {
	if id == 0 {
		return nil, fmt.Errorf("member ID cannot be zero")
	}
	if !level.IsValid() {
		return nil, fmt.Errorf("invalid access level: %d", level)
	}
	if !state.IsValid() {
		return nil, fmt.Errorf("invalid member state: %s", state)
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid member source: %s", source)
	}

	return &Member{
		id:           id,
		actorID:      actorID,
		resourceID:   resourceID,
		accessLevel:  level,
		state:        state,
		source:       source,
		ldapOverride: ldapOverride,
		memberRoleID: memberRoleID,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// ID returns the member ID
func (m *Member) ID() uint {
	return m.id
}

// SetID sets the member ID (only for persistence layer use)
func (m *Member) SetID(id uint) error {
	if m.id != 0 {
		return fmt.Errorf("member ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("member ID cannot be zero")
	}
	m.id = id
	return nil
}

// ActorID returns the actor this grant belongs to
func (m *Member) ActorID() uint {
	return m.actorID
}

// ResourceID returns the resource this grant applies to
func (m *Member) ResourceID() uint {
	return m.resourceID
}

// AccessLevel returns the granted access level
func (m *Member) AccessLevel() AccessLevel {
	return m.accessLevel
}

// State returns the membership state
func (m *Member) State() State {
	return m.state
}

// Source returns the membership source
func (m *Member) Source() Source {
	return m.source
}

// LDAPOverride reports whether the LDAP-managed level was manually overridden
func (m *Member) LDAPOverride() bool {
	return m.ldapOverride
}

// MemberRoleID returns the custom role reference, zero if none
func (m *Member) MemberRoleID() uint {
	return m.memberRoleID
}

// CreatedAt returns when the membership was created
func (m *Member) CreatedAt() time.Time {
	return m.createdAt
}

// UpdatedAt returns when the membership was last updated
func (m *Member) UpdatedAt() time.Time {
	return m.updatedAt
}

// IsPending reports whether the member has not been activated yet.
func (m *Member) IsPending() bool {
	return m.state == StateAwaiting || m.state == StateInvited
}

// IsExplicit reports whether the grant is an explicit, closer-scoped override
// during resolution: minimal access grants, manual LDAP overrides, and custom
// roles all win over inherited higher levels.
func (m *Member) IsExplicit() bool {
	return m.accessLevel == MinimalAccess || m.ldapOverride || m.memberRoleID != 0
}

// SetLDAPOverride marks the membership as manually overridden.
func (m *Member) SetLDAPOverride() error {
	if m.source != SourceLDAP {
		return fmt.Errorf("only LDAP-managed memberships can be overridden")
	}
	m.ldapOverride = true
	m.updatedAt = time.Now()
	return nil
}

// AssignMemberRole attaches a custom role to the membership.
func (m *Member) AssignMemberRole(memberRoleID uint) error {
	if memberRoleID == 0 {
		return fmt.Errorf("member role ID cannot be zero")
	}
	m.memberRoleID = memberRoleID
	m.updatedAt = time.Now()
	return nil
}

// Approve transitions an awaiting member to active. Approving a member that
// is not awaiting is a semantic error, not an idempotent no-op.
func (m *Member) Approve() error {
	if m.state != StateAwaiting {
		return ErrMemberNotAwaiting
	}
	m.state = StateActive
	m.updatedAt = time.Now()
	return nil
}

// UpdateAccessLevel changes the granted level.
func (m *Member) UpdateAccessLevel(level AccessLevel) error {
	if !level.IsValid() || level == NoAccess {
		return fmt.Errorf("invalid access level: %d", level)
	}
	m.accessLevel = level
	m.updatedAt = time.Now()
	return nil
}
