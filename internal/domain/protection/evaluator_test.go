package protection

import (
	"errors"
	"testing"
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
)

func environment(t *testing.T, deployEntries []*AccessEntry, rules []*EnvApprovalRule, requiredCount int) *ProtectedEnvironment {
	t.Helper()
	now := time.Now()
	env, err := ReconstructProtectedEnvironment(1, "production", ScopeProject, 1, deployEntries, rules, requiredCount, now, now)
	if err != nil {
		t.Fatalf("ReconstructProtectedEnvironment() error = %v", err)
	}
	return env
}

func envRule(t *testing.T, id uint, entry *AccessEntry, required int) *EnvApprovalRule {
	t.Helper()
	r, err := ReconstructEnvApprovalRule(id, entry, required)
	if err != nil {
		t.Fatalf("ReconstructEnvApprovalRule() error = %v", err)
	}
	return r
}

func approvedAt(t *testing.T, id, approverID uint, sha string) *DeploymentApproval {
	t.Helper()
	a, err := ReconstructDeploymentApproval(id, 1, approverID, sha, ApprovalStatusApproved, "", 0, time.Now())
	if err != nil {
		t.Fatalf("ReconstructDeploymentApproval() error = %v", err)
	}
	return a
}

func TestEvaluator_MatchBranchRules(t *testing.T) {
	e := NewEvaluator()
	push := []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}

	exact := branch(t, 1, "main", ScopeProject, push, nil)
	wildcard := branch(t, 2, "ma*", ScopeProject, push, nil)
	groupWildcard := branch(t, 3, "m*", ScopeGroup, push, nil)

	t.Run("exact shadows wildcard within a scope", func(t *testing.T) {
		matched := e.MatchBranchRules([]*ProtectedBranch{exact, wildcard}, "main")
		if len(matched) != 1 || matched[0].ID() != 1 {
			t.Errorf("MatchBranchRules() = %d rules, want exactly the exact rule", len(matched))
		}
	})

	t.Run("wildcard applies when no exact rule matches", func(t *testing.T) {
		matched := e.MatchBranchRules([]*ProtectedBranch{exact, wildcard}, "master")
		if len(matched) != 1 || matched[0].ID() != 2 {
			t.Errorf("MatchBranchRules() = %d rules, want exactly the wildcard rule", len(matched))
		}
	})

	t.Run("rules from different scopes apply simultaneously", func(t *testing.T) {
		matched := e.MatchBranchRules([]*ProtectedBranch{exact, groupWildcard}, "main")
		if len(matched) != 2 {
			t.Errorf("MatchBranchRules() = %d rules, want 2 (project exact and group wildcard)", len(matched))
		}
	})

	t.Run("no match returns empty", func(t *testing.T) {
		matched := e.MatchBranchRules([]*ProtectedBranch{exact}, "develop")
		if len(matched) != 0 {
			t.Errorf("MatchBranchRules() = %d rules, want 0", len(matched))
		}
	})
}

func TestEvaluator_MayActOnBranch(t *testing.T) {
	e := NewEvaluator()

	maintainerPush := branch(t, 1, "main", ScopeProject,
		[]*AccessEntry{roleEntry(t, 1, membership.Maintainer)},
		[]*AccessEntry{roleEntry(t, 2, membership.Developer)},
	)
	groupRule := branch(t, 2, "main", ScopeGroup,
		[]*AccessEntry{userEntry(t, 3, 42)},
		nil,
	)

	tests := []struct {
		name        string
		actorID     uint
		actorLevel  membership.AccessLevel
		actorGroups []uint
		rules       []*ProtectedBranch
		branchName  string
		action      BranchAction
		wantAllowed bool
	}{
		{
			name:        "unprotected branch allows developer push",
			actorID:     7,
			actorLevel:  membership.Developer,
			branchName:  "feature/x",
			rules:       []*ProtectedBranch{maintainerPush},
			action:      BranchActionPush,
			wantAllowed: true,
		},
		{
			name:        "unprotected branch denies guest push",
			actorID:     7,
			actorLevel:  membership.Guest,
			branchName:  "feature/x",
			rules:       []*ProtectedBranch{maintainerPush},
			action:      BranchActionPush,
			wantAllowed: false,
		},
		{
			name:        "protected branch denies developer push",
			actorID:     7,
			actorLevel:  membership.Developer,
			branchName:  "main",
			rules:       []*ProtectedBranch{maintainerPush},
			action:      BranchActionPush,
			wantAllowed: false,
		},
		{
			name:        "protected branch allows maintainer push",
			actorID:     7,
			actorLevel:  membership.Maintainer,
			branchName:  "main",
			rules:       []*ProtectedBranch{maintainerPush},
			action:      BranchActionPush,
			wantAllowed: true,
		},
		{
			name:        "merge uses the merge entry list",
			actorID:     7,
			actorLevel:  membership.Developer,
			branchName:  "main",
			rules:       []*ProtectedBranch{maintainerPush},
			action:      BranchActionMerge,
			wantAllowed: true,
		},
		{
			name:        "simultaneous project and group rules both bind",
			actorID:     7,
			actorLevel:  membership.Owner,
			branchName:  "main",
			rules:       []*ProtectedBranch{maintainerPush, groupRule},
			action:      BranchActionPush,
			wantAllowed: false,
		},
		{
			name:        "named user satisfies the group-scope rule",
			actorID:     42,
			actorLevel:  membership.Maintainer,
			branchName:  "main",
			rules:       []*ProtectedBranch{maintainerPush, groupRule},
			action:      BranchActionPush,
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.MayActOnBranch(tt.actorID, tt.actorLevel, tt.actorGroups, tt.rules, tt.branchName, tt.action)
			if got.Allowed != tt.wantAllowed {
				t.Errorf("MayActOnBranch() allowed = %v, want %v (reason: %v)", got.Allowed, tt.wantAllowed, got.Reason)
			}
		})
	}
}

func TestEvaluator_MayDeploy(t *testing.T) {
	e := NewEvaluator()
	deployers := []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}

	t.Run("eligible deployer with no approvals required", func(t *testing.T) {
		env := environment(t, deployers, nil, 0)
		got := e.MayDeploy(7, membership.Maintainer, nil, env, nil, "abc123")
		if !got.Allowed {
			t.Errorf("MayDeploy() = %+v, want allowed", got)
		}
	})

	t.Run("ineligible deployer", func(t *testing.T) {
		env := environment(t, deployers, nil, 0)
		got := e.MayDeploy(7, membership.Developer, nil, env, nil, "abc123")
		if got.Allowed || !errors.Is(got.Reason, ErrNotEligibleApprover) {
			t.Errorf("MayDeploy() = %+v, want not eligible", got)
		}
	})

	t.Run("outstanding approvals block the deploy", func(t *testing.T) {
		env := environment(t, deployers, nil, 2)
		got := e.MayDeploy(7, membership.Maintainer, nil, env, nil, "abc123")
		if got.Allowed || got.ApprovalsLeft != 2 {
			t.Errorf("MayDeploy() = %+v, want blocked with 2 approvals left", got)
		}
	})

	t.Run("collected approvals unblock the deploy", func(t *testing.T) {
		env := environment(t, deployers, nil, 2)
		approvals := []*DeploymentApproval{
			approvedAt(t, 1, 10, "abc123"),
			approvedAt(t, 2, 11, "abc123"),
		}
		got := e.MayDeploy(7, membership.Maintainer, nil, env, approvals, "abc123")
		if !got.Allowed {
			t.Errorf("MayDeploy() = %+v, want allowed", got)
		}
	})
}

func TestEvaluator_ApprovalsLeft(t *testing.T) {
	e := NewEvaluator()
	deployers := []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}

	t.Run("stale sha approvals do not count", func(t *testing.T) {
		env := environment(t, deployers, nil, 2)
		approvals := []*DeploymentApproval{
			approvedAt(t, 1, 10, "old-sha"),
			approvedAt(t, 2, 11, "abc123"),
		}
		if got := e.ApprovalsLeft(env, approvals, "abc123"); got != 1 {
			t.Errorf("ApprovalsLeft() = %d, want 1", got)
		}
	})

	t.Run("duplicate approvers count once", func(t *testing.T) {
		env := environment(t, deployers, nil, 2)
		approvals := []*DeploymentApproval{
			approvedAt(t, 1, 10, "abc123"),
			approvedAt(t, 2, 10, "abc123"),
		}
		if got := e.ApprovalsLeft(env, approvals, "abc123"); got != 1 {
			t.Errorf("ApprovalsLeft() = %d, want 1", got)
		}
	})

	t.Run("rejections do not count", func(t *testing.T) {
		env := environment(t, deployers, nil, 1)
		rejected, err := ReconstructDeploymentApproval(1, 1, 10, "abc123", ApprovalStatusRejected, "", 0, time.Now())
		if err != nil {
			t.Fatalf("ReconstructDeploymentApproval() error = %v", err)
		}
		if got := e.ApprovalsLeft(env, []*DeploymentApproval{rejected}, "abc123"); got != 1 {
			t.Errorf("ApprovalsLeft() = %d, want 1", got)
		}
	})

	t.Run("per-rule counts sum", func(t *testing.T) {
		rules := []*EnvApprovalRule{
			envRule(t, 1, groupEntry(t, 10, 3), 2),
			envRule(t, 2, roleEntry(t, 11, membership.Maintainer), 1),
		}
		env := environment(t, deployers, rules, 0)
		if got := e.ApprovalsLeft(env, nil, "abc123"); got != 3 {
			t.Errorf("ApprovalsLeft() = %d, want 3", got)
		}
	})

	t.Run("over-approval clamps to zero", func(t *testing.T) {
		env := environment(t, deployers, nil, 1)
		approvals := []*DeploymentApproval{
			approvedAt(t, 1, 10, "abc123"),
			approvedAt(t, 2, 11, "abc123"),
		}
		if got := e.ApprovalsLeft(env, approvals, "abc123"); got != 0 {
			t.Errorf("ApprovalsLeft() = %d, want 0", got)
		}
	})
}

func TestEvaluator_ValidateDeploymentApproval(t *testing.T) {
	e := NewEvaluator()

	t.Run("sha mismatch is checked before eligibility", func(t *testing.T) {
		env := environment(t, []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}, nil, 1)
		_, err := e.ValidateDeploymentApproval(7, membership.Guest, nil, env, "stale", "head", 0)
		if !errors.Is(err, ErrSHAMismatch) {
			t.Errorf("ValidateDeploymentApproval() error = %v, want ErrSHAMismatch", err)
		}
	})

	t.Run("ineligible actor", func(t *testing.T) {
		env := environment(t, []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}, nil, 1)
		_, err := e.ValidateDeploymentApproval(7, membership.Guest, nil, env, "head", "head", 0)
		if !errors.Is(err, ErrNotEligibleApprover) {
			t.Errorf("ValidateDeploymentApproval() error = %v, want ErrNotEligibleApprover", err)
		}
	})

	t.Run("direct qualification returns zero group", func(t *testing.T) {
		env := environment(t, []*AccessEntry{roleEntry(t, 1, membership.Maintainer)}, nil, 1)
		group, err := e.ValidateDeploymentApproval(7, membership.Maintainer, nil, env, "head", "head", 0)
		if err != nil {
			t.Fatalf("ValidateDeploymentApproval() error = %v", err)
		}
		if group != 0 {
			t.Errorf("ValidateDeploymentApproval() group = %d, want 0", group)
		}
	})

	t.Run("single qualifying group is implied", func(t *testing.T) {
		env := environment(t, []*AccessEntry{groupEntry(t, 1, 3)}, nil, 1)
		group, err := e.ValidateDeploymentApproval(7, membership.Guest, []uint{3}, env, "head", "head", 0)
		if err != nil {
			t.Fatalf("ValidateDeploymentApproval() error = %v", err)
		}
		if group != 3 {
			t.Errorf("ValidateDeploymentApproval() group = %d, want 3", group)
		}
	})

	t.Run("multiple qualifying groups require represented_as", func(t *testing.T) {
		env := environment(t, []*AccessEntry{groupEntry(t, 1, 3), groupEntry(t, 2, 4)}, nil, 1)
		_, err := e.ValidateDeploymentApproval(7, membership.Guest, []uint{3, 4}, env, "head", "head", 0)
		if !errors.Is(err, ErrAmbiguousRepresentation) {
			t.Errorf("ValidateDeploymentApproval() error = %v, want ErrAmbiguousRepresentation", err)
		}
	})

	t.Run("represented_as picks one of the qualifying groups", func(t *testing.T) {
		env := environment(t, []*AccessEntry{groupEntry(t, 1, 3), groupEntry(t, 2, 4)}, nil, 1)
		group, err := e.ValidateDeploymentApproval(7, membership.Guest, []uint{3, 4}, env, "head", "head", 4)
		if err != nil {
			t.Fatalf("ValidateDeploymentApproval() error = %v", err)
		}
		if group != 4 {
			t.Errorf("ValidateDeploymentApproval() group = %d, want 4", group)
		}
	})

	t.Run("represented_as outside the qualifying set is rejected", func(t *testing.T) {
		env := environment(t, []*AccessEntry{groupEntry(t, 1, 3)}, nil, 1)
		_, err := e.ValidateDeploymentApproval(7, membership.Guest, []uint{3}, env, "head", "head", 9)
		if !errors.Is(err, ErrNotEligibleApprover) {
			t.Errorf("ValidateDeploymentApproval() error = %v, want ErrNotEligibleApprover", err)
		}
	})
}
