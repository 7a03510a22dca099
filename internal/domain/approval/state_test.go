package approval

import (
	"errors"
	"testing"
	"time"
)

func rule(t *testing.T, id uint, kind RuleKind, required int, approverIDs, groupIDs []uint) *Rule {
	t.Helper()
	r, err := ReconstructRule(id, "rule", kind, required, approverIDs, groupIDs, "", time.Now())
	if err != nil {
		t.Fatalf("ReconstructRule() error = %v", err)
	}
	return r
}

func state(t *testing.T, headSHA string, rules []*Rule) *State {
	t.Helper()
	s, err := NewState(1, headSHA, rules, nil)
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	return s
}

func TestState_Approve(t *testing.T) {
	t.Run("matching sha records the approval", func(t *testing.T) {
		s := state(t, "head", nil)
		if err := s.Approve(7, "head"); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if len(s.Approvals()) != 1 {
			t.Errorf("Approvals() length = %d, want 1", len(s.Approvals()))
		}
	})

	t.Run("stale sha is a state conflict", func(t *testing.T) {
		s := state(t, "head", nil)
		if err := s.Approve(7, "stale"); !errors.Is(err, ErrSHAMismatch) {
			t.Errorf("Approve() error = %v, want ErrSHAMismatch", err)
		}
		if len(s.Approvals()) != 0 {
			t.Error("Approve() with stale sha changed the approval set")
		}
	})

	t.Run("duplicate approval is rejected", func(t *testing.T) {
		s := state(t, "head", nil)
		if err := s.Approve(7, "head"); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if err := s.Approve(7, "head"); !errors.Is(err, ErrAlreadyApproved) {
			t.Errorf("second Approve() error = %v, want ErrAlreadyApproved", err)
		}
		if len(s.Approvals()) != 1 {
			t.Errorf("Approvals() length = %d, want 1", len(s.Approvals()))
		}
	})
}

func TestState_Unapprove(t *testing.T) {
	s := state(t, "head", nil)
	if err := s.Approve(7, "head"); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	if err := s.Unapprove(7); err != nil {
		t.Fatalf("Unapprove() error = %v", err)
	}
	if len(s.Approvals()) != 0 {
		t.Errorf("Approvals() length = %d, want 0", len(s.Approvals()))
	}

	if err := s.Unapprove(7); !errors.Is(err, ErrNotApproved) {
		t.Errorf("Unapprove() of absent approval error = %v, want ErrNotApproved", err)
	}
}

func TestState_ApprovalsLeft(t *testing.T) {
	t.Run("no rules means nothing outstanding", func(t *testing.T) {
		s := state(t, "head", nil)
		if got := s.ApprovalsLeft(nil); got != 0 {
			t.Errorf("ApprovalsLeft() = %d, want 0", got)
		}
	})

	t.Run("counts sum across rules", func(t *testing.T) {
		rules := []*Rule{
			rule(t, 1, RuleKindAnyApprover, 1, nil, nil),
			rule(t, 2, RuleKindRegular, 2, []uint{10, 11, 12}, nil),
		}
		s := state(t, "head", rules)
		if got := s.ApprovalsLeft(nil); got != 3 {
			t.Errorf("ApprovalsLeft() = %d, want 3", got)
		}
	})

	t.Run("eligible approvals reduce the count", func(t *testing.T) {
		rules := []*Rule{rule(t, 1, RuleKindRegular, 2, []uint{10, 11}, nil)}
		s := state(t, "head", rules)
		if err := s.Approve(10, "head"); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if got := s.ApprovalsLeft(nil); got != 1 {
			t.Errorf("ApprovalsLeft() = %d, want 1", got)
		}
	})

	t.Run("ineligible approvals do not count", func(t *testing.T) {
		rules := []*Rule{rule(t, 1, RuleKindRegular, 1, []uint{10}, nil)}
		s := state(t, "head", rules)
		if err := s.Approve(99, "head"); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if got := s.ApprovalsLeft(nil); got != 1 {
			t.Errorf("ApprovalsLeft() = %d, want 1", got)
		}
	})

	t.Run("group membership makes an approver eligible", func(t *testing.T) {
		rules := []*Rule{rule(t, 1, RuleKindRegular, 1, nil, []uint{5})}
		s := state(t, "head", rules)
		if err := s.Approve(7, "head"); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		actorGroups := map[uint][]uint{7: {5}}
		if got := s.ApprovalsLeft(actorGroups); got != 0 {
			t.Errorf("ApprovalsLeft() = %d, want 0", got)
		}
	})

	t.Run("approvals from a previous head do not count", func(t *testing.T) {
		rules := []*Rule{rule(t, 1, RuleKindAnyApprover, 1, nil, nil)}
		s, err := NewState(1, "new-head", rules, []GrantedApproval{
			{ActorID: 7, SHA: "old-head", CreatedAt: time.Now()},
		})
		if err != nil {
			t.Fatalf("NewState() error = %v", err)
		}
		if got := s.ApprovalsLeft(nil); got != 1 {
			t.Errorf("ApprovalsLeft() = %d, want 1", got)
		}
	})
}

func TestState_Approved(t *testing.T) {
	t.Run("no configured approvers means approved", func(t *testing.T) {
		rules := []*Rule{rule(t, 1, RuleKindRegular, 2, nil, nil)}
		s := state(t, "head", rules)
		if !s.Approved(nil) {
			t.Error("Approved() = false, want true when no rule names approvers")
		}
	})

	t.Run("zero required count means approved", func(t *testing.T) {
		rules := []*Rule{rule(t, 1, RuleKindRegular, 0, []uint{10}, nil)}
		s := state(t, "head", rules)
		if !s.Approved(nil) {
			t.Error("Approved() = false, want true when no approvals are required")
		}
	})

	t.Run("outstanding approvals mean not approved", func(t *testing.T) {
		rules := []*Rule{rule(t, 1, RuleKindAnyApprover, 1, nil, nil)}
		s := state(t, "head", rules)
		if s.Approved(nil) {
			t.Error("Approved() = true, want false while approvals are outstanding")
		}
	})
}

func TestFinalizeFromProject(t *testing.T) {
	projectRules := []*Rule{
		rule(t, 1, RuleKindRegular, 2, []uint{10, 11}, nil),
		rule(t, 2, RuleKindAnyApprover, 1, nil, nil),
	}

	s, err := FinalizeFromProject(5, "head", projectRules)
	if err != nil {
		t.Fatalf("FinalizeFromProject() error = %v", err)
	}
	if len(s.Rules()) != 2 {
		t.Fatalf("Rules() length = %d, want 2", len(s.Rules()))
	}

	// The snapshots are unsaved copies, not the project templates themselves.
	for i, snapped := range s.Rules() {
		if snapped == projectRules[i] {
			t.Errorf("rule %d was attached by reference, want a snapshot", i)
		}
		if snapped.ID() != 0 {
			t.Errorf("rule %d snapshot ID = %d, want 0 (unsaved)", i, snapped.ID())
		}
		if snapped.ApprovalsRequired() != projectRules[i].ApprovalsRequired() {
			t.Errorf("rule %d required = %d, want %d", i, snapped.ApprovalsRequired(), projectRules[i].ApprovalsRequired())
		}
	}
}

func TestNewRule_Validation(t *testing.T) {
	tests := []struct {
		name     string
		ruleName string
		kind     RuleKind
		required int
		section  string
		wantErr  bool
	}{
		{"regular rule", "security", RuleKindRegular, 1, "", false},
		{"any approver needs no name", "", RuleKindAnyApprover, 1, "", false},
		{"regular rule needs a name", "", RuleKindRegular, 1, "", true},
		{"negative required count", "security", RuleKindRegular, -1, "", true},
		{"section on code owner rule", "owners", RuleKindCodeOwner, 1, "backend", false},
		{"section on regular rule", "security", RuleKindRegular, 1, "backend", true},
		{"unknown kind", "x", RuleKind("custom"), 1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRule(tt.ruleName, tt.kind, tt.required, nil, nil, tt.section)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRule() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
