package protection

import (
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
)

// BranchAction is an action a protected branch gates
type BranchAction string

const (
	BranchActionPush  BranchAction = "push"
	BranchActionMerge BranchAction = "merge"
)

// Verdict is the outcome of evaluating protection rules for one action.
type Verdict struct {
	Allowed bool
	// ApprovalsLeft is the number of distinct approvals still outstanding
	// before the action may proceed; zero when none are required.
	ApprovalsLeft int
	Reason        error
}

// Evaluator decides whether an access level suffices for an action against a
// protected resource. It holds no state and is safe for concurrent use.
type Evaluator struct{}

// NewEvaluator creates a protection rule evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// MatchBranchRules selects the rules covering a branch name. Within each
// scope an exact-name rule shadows wildcard rules; rules from different
// scopes (project and group) apply simultaneously.
func (e *Evaluator) MatchBranchRules(rules []*ProtectedBranch, branchName string) []*ProtectedBranch {
	byScope := make(map[ScopeKind][]*ProtectedBranch)
	for _, r := range rules {
		if r.Matches(branchName) {
			byScope[r.Scope()] = append(byScope[r.Scope()], r)
		}
	}

	var matched []*ProtectedBranch
	for _, scoped := range byScope {
		var exact []*ProtectedBranch
		for _, r := range scoped {
			if !r.IsWildcard() {
				exact = append(exact, r)
			}
		}
		if len(exact) > 0 {
			matched = append(matched, exact...)
		} else {
			matched = append(matched, scoped...)
		}
	}
	return matched
}

// MayActOnBranch reports whether the actor may push to or merge into the
// branch. Every matched rule must be satisfied: simultaneous project- and
// group-level protection means the union of their constraints applies.
func (e *Evaluator) MayActOnBranch(actorID uint, actorLevel membership.AccessLevel, actorGroups []uint, rules []*ProtectedBranch, branchName string, action BranchAction) Verdict {
	matched := e.MatchBranchRules(rules, branchName)
	if len(matched) == 0 {
		// Unprotected branches fall back to the plain role check: Developer
		// suffices for both actions.
		if actorLevel.AtLeast(membership.Developer) {
			return Verdict{Allowed: true}
		}
		return Verdict{Reason: ErrNotEligibleApprover}
	}

	for _, rule := range matched {
		entries := rule.PushEntries()
		if action == BranchActionMerge {
			entries = rule.MergeEntries()
		}
		if !anyEntrySatisfies(entries, actorID, actorLevel, actorGroups) {
			return Verdict{Reason: ErrNotEligibleApprover}
		}
	}
	return Verdict{Allowed: true}
}

// MayDeploy reports whether the actor may deploy to the protected
// environment, and how many approvals remain outstanding for the deployment.
func (e *Evaluator) MayDeploy(actorID uint, actorLevel membership.AccessLevel, actorGroups []uint, env *ProtectedEnvironment, approvals []*DeploymentApproval, headSHA string) Verdict {
	if !anyEntrySatisfies(env.DeployEntries(), actorID, actorLevel, actorGroups) {
		return Verdict{Reason: ErrNotEligibleApprover}
	}

	left := e.ApprovalsLeft(env, approvals, headSHA)
	if left > 0 {
		return Verdict{ApprovalsLeft: left}
	}
	return Verdict{Allowed: true}
}

// ApprovalsLeft counts the distinct qualifying approvals still outstanding.
// Only approvals referencing the exact head SHA qualify; duplicate approvers
// count once.
func (e *Evaluator) ApprovalsLeft(env *ProtectedEnvironment, approvals []*DeploymentApproval, headSHA string) int {
	required := env.TotalRequiredApprovals()
	if required == 0 {
		return 0
	}

	approvers := make(map[uint]struct{})
	for _, a := range approvals {
		if a.Status() != ApprovalStatusApproved {
			continue
		}
		if a.SHA() != headSHA {
			continue
		}
		approvers[a.ApproverID()] = struct{}{}
	}

	left := required - len(approvers)
	if left < 0 {
		return 0
	}
	return left
}

// ValidateDeploymentApproval checks an incoming approval attempt against the
// environment configuration and the deployment head. On success it returns
// the group the approver is taken to represent (zero for a direct
// qualification).
func (e *Evaluator) ValidateDeploymentApproval(
	actorID uint,
	actorLevel membership.AccessLevel,
	actorGroups []uint,
	env *ProtectedEnvironment,
	sha, headSHA string,
	representedAsGroupID uint,
) (uint, error) {
	// SHA is checked first: a stale approval is a state conflict regardless
	// of who sent it.
	if sha != headSHA {
		return 0, ErrSHAMismatch
	}

	qualifying := e.qualifyingGroups(actorID, actorLevel, actorGroups, env)
	if qualifying == nil {
		return 0, ErrNotEligibleApprover
	}

	if representedAsGroupID != 0 {
		for _, g := range qualifying {
			if g == representedAsGroupID {
				return representedAsGroupID, nil
			}
		}
		return 0, ErrNotEligibleApprover
	}

	switch len(qualifying) {
	case 0:
		// Qualified directly (role or user entry), no representation needed.
		return 0, nil
	case 1:
		return qualifying[0], nil
	default:
		return 0, ErrAmbiguousRepresentation
	}
}

// qualifyingGroups returns the group ids through which the actor qualifies as
// an approver. A non-nil empty slice means the actor qualifies directly via a
// role or user entry; nil means the actor does not qualify at all.
func (e *Evaluator) qualifyingGroups(actorID uint, actorLevel membership.AccessLevel, actorGroups []uint, env *ProtectedEnvironment) []uint {
	entries := make([]*AccessEntry, 0, len(env.DeployEntries())+len(env.ApprovalRules()))
	entries = append(entries, env.DeployEntries()...)
	for _, r := range env.ApprovalRules() {
		entries = append(entries, r.Entry())
	}

	direct := false
	var groups []uint
	seen := make(map[uint]struct{})
	for _, entry := range entries {
		if !entry.Satisfies(actorID, actorLevel, actorGroups) {
			continue
		}
		if entry.Kind() == EntryKindGroup {
			if _, dup := seen[entry.GroupID()]; !dup {
				seen[entry.GroupID()] = struct{}{}
				groups = append(groups, entry.GroupID())
			}
		} else {
			direct = true
		}
	}

	if direct {
		return []uint{}
	}
	if len(groups) > 0 {
		return groups
	}
	return nil
}

func anyEntrySatisfies(entries []*AccessEntry, actorID uint, actorLevel membership.AccessLevel, actorGroups []uint) bool {
	for _, entry := range entries {
		if entry.Satisfies(actorID, actorLevel, actorGroups) {
			return true
		}
	}
	return false
}
