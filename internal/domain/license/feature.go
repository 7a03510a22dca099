// Package license provides the plan feature registry: a pure lookup that
// decides whether a licensed feature is available in a given licensing
// context. Absence of a feature always means unavailable.
package license

// Feature names a license-gated capability.
type Feature string

const (
	FeatureEpics                         Feature = "epics"
	FeatureAuditEvents                   Feature = "audit_events"
	FeatureMergeTrains                   Feature = "merge_trains"
	FeatureMinimalAccessRole             Feature = "minimal_access_role"
	FeatureCustomRoles                   Feature = "custom_roles"
	FeatureProtectedEnvironments         Feature = "protected_environments"
	FeatureGroupProtectedBranches        Feature = "group_protected_branches"
	FeatureDeploymentApprovals           Feature = "deployment_approvals"
	FeatureExternalStatusChecks          Feature = "external_status_checks"
	FeatureMergeRequestApprovers         Feature = "merge_request_approvers"
	FeatureCodeOwnerApproval             Feature = "code_owner_approval_required"
	FeatureDefaultBranchProtectionGroups Feature = "default_branch_protection_restriction_in_groups"
	FeatureLDAPGroupSync                 Feature = "ldap_group_sync"
)

// IsValid checks if the feature is a known feature name
func (f Feature) IsValid() bool {
	_, ok := allFeatures[f]
	return ok
}

// String returns the string representation of the feature
func (f Feature) String() string {
	return string(f)
}

var allFeatures = map[Feature]struct{}{
	FeatureEpics:                         {},
	FeatureAuditEvents:                   {},
	FeatureMergeTrains:                   {},
	FeatureMinimalAccessRole:             {},
	FeatureCustomRoles:                   {},
	FeatureProtectedEnvironments:         {},
	FeatureGroupProtectedBranches:        {},
	FeatureDeploymentApprovals:           {},
	FeatureExternalStatusChecks:          {},
	FeatureMergeRequestApprovers:         {},
	FeatureCodeOwnerApproval:             {},
	FeatureDefaultBranchProtectionGroups: {},
	FeatureLDAPGroupSync:                 {},
}

// AllFeatures returns every known feature name.
func AllFeatures() []Feature {
	features := make([]Feature, 0, len(allFeatures))
	for f := range allFeatures {
		features = append(features, f)
	}
	return features
}

// Plan represents a subscription tier.
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPremium  Plan = "premium"
	PlanUltimate Plan = "ultimate"
)

// IsValid checks if the plan is valid
func (p Plan) IsValid() bool {
	switch p {
	case PlanFree, PlanPremium, PlanUltimate:
		return true
	default:
		return false
	}
}

// String returns the string representation of the plan
func (p Plan) String() string {
	return string(p)
}

// DefaultPlanFeatures returns the feature table for each plan. Premium is a
// superset of free, ultimate a superset of premium.
func DefaultPlanFeatures() map[Plan][]Feature {
	premium := []Feature{
		FeatureMergeRequestApprovers,
		FeatureCodeOwnerApproval,
		FeatureGroupProtectedBranches,
		FeatureMergeTrains,
		FeatureMinimalAccessRole,
		FeatureProtectedEnvironments,
		FeatureDefaultBranchProtectionGroups,
		FeatureLDAPGroupSync,
	}
	ultimate := append([]Feature{
		FeatureEpics,
		FeatureAuditEvents,
		FeatureCustomRoles,
		FeatureDeploymentApprovals,
		FeatureExternalStatusChecks,
	}, premium...)

	return map[Plan][]Feature{
		PlanFree:     nil,
		PlanPremium:  premium,
		PlanUltimate: ultimate,
	}
}
