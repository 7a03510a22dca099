package protection

import (
	"fmt"
	"time"
)

// EnvApprovalRule names who must approve deployments to a protected
// environment and how many distinct approvals are required.
type EnvApprovalRule struct {
	id                uint
	entry             *AccessEntry
	requiredApprovals int
}

// NewEnvApprovalRule creates an environment approval rule.
func NewEnvApprovalRule(entry *AccessEntry, requiredApprovals int) (*EnvApprovalRule, error) {
	if entry == nil {
		return nil, fmt.Errorf("access entry is required")
	}
	if requiredApprovals < 1 {
		return nil, fmt.Errorf("required approvals must be at least 1")
	}
	return &EnvApprovalRule{entry: entry, requiredApprovals: requiredApprovals}, nil
}

// ReconstructEnvApprovalRule reconstructs a rule from persistence.
func ReconstructEnvApprovalRule(id uint, entry *AccessEntry, requiredApprovals int) (*EnvApprovalRule, error) {
	if id == 0 {
		return nil, fmt.Errorf("approval rule ID cannot be zero")
	}
	return &EnvApprovalRule{id: id, entry: entry, requiredApprovals: requiredApprovals}, nil
}

// ID returns the rule ID
func (r *EnvApprovalRule) ID() uint {
	return r.id
}

// SetID sets the rule ID (only for persistence layer use)
func (r *EnvApprovalRule) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("approval rule ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("approval rule ID cannot be zero")
	}
	r.id = id
	return nil
}

// Entry returns who qualifies as an approver
func (r *EnvApprovalRule) Entry() *AccessEntry {
	return r.entry
}

// RequiredApprovals returns how many distinct approvals the rule demands
func (r *EnvApprovalRule) RequiredApprovals() int {
	return r.requiredApprovals
}

// ProtectedEnvironment is the protected environment aggregate: deploy access
// levels name who may deploy, approval rules name who must approve first.
type ProtectedEnvironment struct {
	id                    uint
	name                  string
	scope                 ScopeKind
	scopeID               uint
	deployEntries         []*AccessEntry
	approvalRules         []*EnvApprovalRule
	requiredApprovalCount int
	createdAt             time.Time
	updatedAt             time.Time
}

// NewProtectedEnvironment creates a protected environment. At least one
// deploy access level is required.
func NewProtectedEnvironment(name string, scope ScopeKind, scopeID uint, deployEntries []*AccessEntry, approvalRules []*EnvApprovalRule, requiredApprovalCount int) (*ProtectedEnvironment, error) {
	if name == "" {
		return nil, fmt.Errorf("environment name is required")
	}
	if !scope.IsValid() {
		return nil, fmt.Errorf("invalid scope kind: %s", scope)
	}
	if scopeID == 0 {
		return nil, fmt.Errorf("scope ID is required")
	}
	if len(deployEntries) == 0 {
		return nil, ErrAccessEntriesTooShort
	}
	if requiredApprovalCount < 0 {
		return nil, fmt.Errorf("required approval count cannot be negative")
	}

	now := time.Now()
	return &ProtectedEnvironment{
		name:                  name,
		scope:                 scope,
		scopeID:               scopeID,
		deployEntries:         deployEntries,
		approvalRules:         approvalRules,
		requiredApprovalCount: requiredApprovalCount,
		createdAt:             now,
		updatedAt:             now,
	}, nil
}

// ReconstructProtectedEnvironment reconstructs an aggregate from persistence.
func ReconstructProtectedEnvironment(id uint, name string, scope ScopeKind, scopeID uint, deployEntries []*AccessEntry, approvalRules []*EnvApprovalRule, requiredApprovalCount int, createdAt, updatedAt time.Time) (*ProtectedEnvironment, error) {
	if id == 0 {
		return nil, fmt.Errorf("protected environment ID cannot be zero")
	}
	return &ProtectedEnvironment{
		id:                    id,
		name:                  name,
		scope:                 scope,
		scopeID:               scopeID,
		deployEntries:         deployEntries,
		approvalRules:         approvalRules,
		requiredApprovalCount: requiredApprovalCount,
		createdAt:             createdAt,
		updatedAt:             updatedAt,
	}, nil
}

// ID returns the protected environment ID
func (e *ProtectedEnvironment) ID() uint {
	return e.id
}

// SetID sets the ID (only for persistence layer use)
func (e *ProtectedEnvironment) SetID(id uint) error {
	if e.id != 0 {
		return fmt.Errorf("protected environment ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("protected environment ID cannot be zero")
	}
	e.id = id
	return nil
}

// Name returns the environment name
func (e *ProtectedEnvironment) Name() string {
	return e.name
}

// Scope returns the scope kind
func (e *ProtectedEnvironment) Scope() ScopeKind {
	return e.scope
}

// ScopeID returns the project or group id owning the rule
func (e *ProtectedEnvironment) ScopeID() uint {
	return e.scopeID
}

// DeployEntries returns who may deploy
func (e *ProtectedEnvironment) DeployEntries() []*AccessEntry {
	return e.deployEntries
}

// ApprovalRules returns the configured approval rules
func (e *ProtectedEnvironment) ApprovalRules() []*EnvApprovalRule {
	return e.approvalRules
}

// RequiredApprovalCount returns the environment-wide approval count that
// applies when no per-rule counts are configured.
func (e *ProtectedEnvironment) RequiredApprovalCount() int {
	return e.requiredApprovalCount
}

// CreatedAt returns the creation timestamp
func (e *ProtectedEnvironment) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns the last update timestamp
func (e *ProtectedEnvironment) UpdatedAt() time.Time {
	return e.updatedAt
}

// TotalRequiredApprovals sums the approvals all rules demand, falling back to
// the environment-wide count.
func (e *ProtectedEnvironment) TotalRequiredApprovals() int {
	if len(e.approvalRules) == 0 {
		return e.requiredApprovalCount
	}
	total := 0
	for _, r := range e.approvalRules {
		total += r.RequiredApprovals()
	}
	return total
}

// ReplaceDeployEntries swaps the deploy entry list, refusing to empty it.
func (e *ProtectedEnvironment) ReplaceDeployEntries(entries []*AccessEntry) error {
	if len(entries) == 0 {
		return ErrAccessEntriesTooShort
	}
	e.deployEntries = entries
	e.updatedAt = time.Now()
	return nil
}

// RemoveDeployEntry deletes one deploy entry by id, refusing to drop the last.
func (e *ProtectedEnvironment) RemoveDeployEntry(entryID uint) error {
	if len(e.deployEntries) <= 1 {
		return ErrAccessEntriesTooShort
	}
	for i, entry := range e.deployEntries {
		if entry.ID() == entryID {
			e.deployEntries = append(e.deployEntries[:i], e.deployEntries[i+1:]...)
			e.updatedAt = time.Now()
			return nil
		}
	}
	return ErrAccessEntryNotFound
}

// ReplaceApprovalRules swaps the approval rule list.
func (e *ProtectedEnvironment) ReplaceApprovalRules(rules []*EnvApprovalRule) {
	e.approvalRules = rules
	e.updatedAt = time.Now()
}

// SetRequiredApprovalCount updates the environment-wide approval count.
func (e *ProtectedEnvironment) SetRequiredApprovalCount(count int) error {
	if count < 0 {
		return fmt.Errorf("required approval count cannot be negative")
	}
	e.requiredApprovalCount = count
	e.updatedAt = time.Now()
	return nil
}
