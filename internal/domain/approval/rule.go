// Package approval models merge request approval rules and the aggregated
// approval state that decides when a merge request has collected enough
// distinct approvals to proceed.
package approval

import (
	"fmt"
	"time"
)

// RuleKind represents the origin and matching behavior of an approval rule
type RuleKind string

const (
	// RuleKindAnyApprover is satisfied by any eligible user.
	RuleKindAnyApprover RuleKind = "any_approver"
	// RuleKindRegular names specific approvers or groups.
	RuleKindRegular RuleKind = "regular"
	// RuleKindCodeOwner is derived from code owner entries, optionally
	// labeled with a section.
	RuleKindCodeOwner RuleKind = "code_owner"
	// RuleKindReportApprover is created from security/compliance reports.
	RuleKindReportApprover RuleKind = "report_approver"
)

// IsValid checks if the rule kind is valid
func (k RuleKind) IsValid() bool {
	switch k {
	case RuleKindAnyApprover, RuleKindRegular, RuleKindCodeOwner, RuleKindReportApprover:
		return true
	default:
		return false
	}
}

// String returns the string representation of the rule kind
func (k RuleKind) String() string {
	return string(k)
}

// Rule is one approval requirement: N distinct eligible approvers must
// approve. Project rules act as templates; merge request rules are
// snapshotted from them when the merge request is created.
type Rule struct {
	id                uint
	name              string
	kind              RuleKind
	section           string // code_owner rules only
	approvalsRequired int
	approverIDs       []uint
	groupIDs          []uint
	createdAt         time.Time
}

// NewRule creates an approval rule.
func NewRule(name string, kind RuleKind, approvalsRequired int, approverIDs, groupIDs []uint, section string) (*Rule, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid rule kind: %s", kind)
	}
	if kind != RuleKindAnyApprover && name == "" {
		return nil, fmt.Errorf("rule name is required")
	}
	if approvalsRequired < 0 {
		return nil, fmt.Errorf("approvals required cannot be negative")
	}
	if section != "" && kind != RuleKindCodeOwner {
		return nil, fmt.Errorf("section is only valid on code owner rules")
	}

	return &Rule{
		name:              name,
		kind:              kind,
		section:           section,
		approvalsRequired: approvalsRequired,
		approverIDs:       approverIDs,
		groupIDs:          groupIDs,
		createdAt:         time.Now(),
	}, nil
}

// ReconstructRule reconstructs a rule from persistence.
func ReconstructRule(id uint, name string, kind RuleKind, approvalsRequired int, approverIDs, groupIDs []uint, section string, createdAt time.Time) (*Rule, error) {
	if id == 0 {
		return nil, fmt.Errorf("rule ID cannot be zero")
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid rule kind: %s", kind)
	}
	return &Rule{
		id:                id,
		name:              name,
		kind:              kind,
		section:           section,
		approvalsRequired: approvalsRequired,
		approverIDs:       approverIDs,
		groupIDs:          groupIDs,
		createdAt:         createdAt,
	}, nil
}

// ID returns the rule ID
func (r *Rule) ID() uint {
	return r.id
}

// SetID sets the rule ID (only for persistence layer use)
func (r *Rule) SetID(id uint) error {
	if r.id != 0 {
		return fmt.Errorf("rule ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("rule ID cannot be zero")
	}
	r.id = id
	return nil
}

// Name returns the rule name
func (r *Rule) Name() string {
	return r.name
}

// Kind returns the rule kind
func (r *Rule) Kind() RuleKind {
	return r.kind
}

// Section returns the code owner section label, empty if none
func (r *Rule) Section() string {
	return r.section
}

// ApprovalsRequired returns how many distinct approvals the rule demands
func (r *Rule) ApprovalsRequired() int {
	return r.approvalsRequired
}

// ApproverIDs returns the eligible approver user ids
func (r *Rule) ApproverIDs() []uint {
	return r.approverIDs
}

// GroupIDs returns the eligible approver group ids
func (r *Rule) GroupIDs() []uint {
	return r.groupIDs
}

// CreatedAt returns the creation timestamp
func (r *Rule) CreatedAt() time.Time {
	return r.createdAt
}

// HasApprovers reports whether anyone is configured to satisfy the rule.
// Any-approver rules are satisfiable by construction.
func (r *Rule) HasApprovers() bool {
	if r.kind == RuleKindAnyApprover {
		return true
	}
	return len(r.approverIDs) > 0 || len(r.groupIDs) > 0
}

// Eligible reports whether the actor may satisfy this rule. actorGroups holds
// the ids of groups the actor is an active member of.
func (r *Rule) Eligible(actorID uint, actorGroups []uint) bool {
	if r.kind == RuleKindAnyApprover {
		return true
	}
	for _, id := range r.approverIDs {
		if id == actorID {
			return true
		}
	}
	for _, gid := range r.groupIDs {
		for _, g := range actorGroups {
			if g == gid {
				return true
			}
		}
	}
	return false
}

// Snapshot copies the rule for attachment to a merge request. The copy is a
// new unsaved aggregate carrying the rule's configuration at this moment;
// later edits to the project rule do not affect it.
func (r *Rule) Snapshot() *Rule {
	approvers := make([]uint, len(r.approverIDs))
	copy(approvers, r.approverIDs)
	groups := make([]uint, len(r.groupIDs))
	copy(groups, r.groupIDs)

	return &Rule{
		name:              r.name,
		kind:              r.kind,
		section:           r.section,
		approvalsRequired: r.approvalsRequired,
		approverIDs:       approvers,
		groupIDs:          groups,
		createdAt:         time.Now(),
	}
}
