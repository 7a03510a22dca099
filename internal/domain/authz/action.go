package authz

import (
	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
)

// Action describes one operation the gate can authorize. The feature policy
// is a per-action attribute: the observed behavior when a feature is off
// differs endpoint by endpoint (hide, forbid, or silently fall back) and no
// unifying rule exists.
type Action struct {
	Name     string
	Feature  license.Feature    // zero value means not feature-gated
	Policy   license.GatePolicy // what to do when Feature is disabled
	MinLevel membership.AccessLevel
	Mutating bool
}

// Well-known actions. Handlers reference these instead of building Action
// values ad hoc so the policy table stays in one place.
var (
	ActionReadProject = Action{
		Name:     "read_project",
		MinLevel: membership.Guest,
	}
	ActionReadEpic = Action{
		Name:     "read_epic",
		Feature:  license.FeatureEpics,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Guest,
	}
	ActionReadAuditEvents = Action{
		Name:     "read_audit_events",
		Feature:  license.FeatureAuditEvents,
		Policy:   license.GatePolicyForbidden,
		MinLevel: membership.Owner,
	}
	ActionPushCommit = Action{
		Name:     "push_commit",
		MinLevel: membership.Developer,
		Mutating: true,
	}
	ActionMergeMergeRequest = Action{
		Name:     "merge_merge_request",
		MinLevel: membership.Developer,
		Mutating: true,
	}
	ActionApproveMergeRequest = Action{
		Name:     "approve_merge_request",
		Feature:  license.FeatureMergeRequestApprovers,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Developer,
		Mutating: true,
	}
	ActionManageApprovalRules = Action{
		Name:     "manage_approval_rules",
		Feature:  license.FeatureMergeRequestApprovers,
		Policy:   license.GatePolicyForbidden,
		MinLevel: membership.Maintainer,
		Mutating: true,
	}
	ActionAddToMergeTrain = Action{
		Name:     "add_to_merge_train",
		Feature:  license.FeatureMergeTrains,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Developer,
		Mutating: true,
	}
	ActionProtectBranch = Action{
		Name:     "protect_branch",
		MinLevel: membership.Maintainer,
		Mutating: true,
	}
	ActionProtectGroupBranch = Action{
		Name:     "protect_group_branch",
		Feature:  license.FeatureGroupProtectedBranches,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Maintainer,
		Mutating: true,
	}
	ActionReadProtectedBranches = Action{
		Name:     "read_protected_branches",
		MinLevel: membership.Maintainer,
	}
	ActionReadGroupProtectedBranches = Action{
		Name:     "read_group_protected_branches",
		Feature:  license.FeatureGroupProtectedBranches,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Maintainer,
	}
	ActionProtectEnvironment = Action{
		Name:     "protect_environment",
		Feature:  license.FeatureProtectedEnvironments,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Maintainer,
		Mutating: true,
	}
	ActionReadProtectedEnvironments = Action{
		Name:     "read_protected_environments",
		Feature:  license.FeatureProtectedEnvironments,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Maintainer,
	}
	ActionApproveDeployment = Action{
		Name:     "approve_deployment",
		Feature:  license.FeatureDeploymentApprovals,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Developer,
		Mutating: true,
	}
	ActionManageStatusChecks = Action{
		Name:     "manage_status_checks",
		Feature:  license.FeatureExternalStatusChecks,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Maintainer,
		Mutating: true,
	}
	ActionReadStatusChecks = Action{
		Name:     "read_status_checks",
		Feature:  license.FeatureExternalStatusChecks,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Developer,
	}
	ActionRetryStatusCheck = Action{
		Name:     "retry_status_check",
		Feature:  license.FeatureExternalStatusChecks,
		Policy:   license.GatePolicyNotFound,
		MinLevel: membership.Developer,
		Mutating: true,
	}
	ActionAddMember = Action{
		Name:     "add_member",
		MinLevel: membership.Maintainer,
		Mutating: true,
	}
	ActionApproveMember = Action{
		Name:     "approve_member",
		MinLevel: membership.Owner,
		Mutating: true,
	}
	ActionReadPendingMembers = Action{
		Name:     "read_pending_members",
		MinLevel: membership.Owner,
	}
	ActionManageMemberRoles = Action{
		Name:     "manage_member_roles",
		Feature:  license.FeatureCustomRoles,
		Policy:   license.GatePolicyForbidden,
		MinLevel: membership.Owner,
		Mutating: true,
	}
	ActionUpdateGroupSettings = Action{
		Name:     "update_group_settings",
		MinLevel: membership.Owner,
		Mutating: true,
	}
	// Restricting default branch protection is itself a licensed feature,
	// but the endpoint never rejects the parameter: an unlicensed or
	// disabled setting silently coerces to the default instead.
	ActionRestrictDefaultBranchProtection = Action{
		Name:     "restrict_default_branch_protection",
		Feature:  license.FeatureDefaultBranchProtectionGroups,
		Policy:   license.GatePolicySilentFallback,
		MinLevel: membership.Owner,
		Mutating: true,
	}
)

// IsFeatureGated reports whether the action has a governing feature.
func (a Action) IsFeatureGated() bool {
	return a.Feature != ""
}
