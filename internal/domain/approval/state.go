package approval

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSHAMismatch is returned when an approval references a commit that is
	// no longer the merge request head
	ErrSHAMismatch = errors.New("sha does not match the merge request head")

	// ErrAlreadyApproved is returned when the actor has already approved
	ErrAlreadyApproved = errors.New("merge request already approved by this user")

	// ErrNotApproved is returned when revoking an approval that does not exist
	ErrNotApproved = errors.New("approval not found for this user")
)

// GrantedApproval records one actor's approval of a merge request head.
type GrantedApproval struct {
	ActorID   uint
	SHA       string
	CreatedAt time.Time
}

// State aggregates the approval rules attached to one merge request together
// with the approvals collected so far.
type State struct {
	mergeRequestID uint
	headSHA        string
	rules          []*Rule
	approvals      []GrantedApproval
}

// NewState creates the approval state for a merge request.
func NewState(mergeRequestID uint, headSHA string, rules []*Rule, approvals []GrantedApproval) (*State, error) {
	if mergeRequestID == 0 {
		return nil, fmt.Errorf("merge request ID is required")
	}
	return &State{
		mergeRequestID: mergeRequestID,
		headSHA:        headSHA,
		rules:          rules,
		approvals:      approvals,
	}, nil
}

// FinalizeFromProject snapshots the project's rule templates onto a newly
// created merge request. Each project rule yields exactly one merge request
// rule with the same required count; later edits to project rules leave the
// snapshot untouched.
func FinalizeFromProject(mergeRequestID uint, headSHA string, projectRules []*Rule) (*State, error) {
	rules := make([]*Rule, 0, len(projectRules))
	for _, r := range projectRules {
		rules = append(rules, r.Snapshot())
	}
	return NewState(mergeRequestID, headSHA, rules, nil)
}

// MergeRequestID returns the merge request this state belongs to
func (s *State) MergeRequestID() uint {
	return s.mergeRequestID
}

// HeadSHA returns the current head commit
func (s *State) HeadSHA() string {
	return s.headSHA
}

// Rules returns the attached approval rules
func (s *State) Rules() []*Rule {
	return s.rules
}

// Approvals returns the approvals granted so far
func (s *State) Approvals() []GrantedApproval {
	return s.approvals
}

// Approve records an approval. The referenced sha must equal the current
// head; a mismatch is a state conflict and leaves the approval set unchanged.
// Duplicate approvals by the same actor are rejected so concurrent duplicate
// submissions can never double count.
func (s *State) Approve(actorID uint, sha string) error {
	if actorID == 0 {
		return fmt.Errorf("actor ID is required")
	}
	if sha != s.headSHA {
		return ErrSHAMismatch
	}
	for _, a := range s.approvals {
		if a.ActorID == actorID {
			return ErrAlreadyApproved
		}
	}
	s.approvals = append(s.approvals, GrantedApproval{
		ActorID:   actorID,
		SHA:       sha,
		CreatedAt: time.Now(),
	})
	return nil
}

// Unapprove removes the actor's approval.
func (s *State) Unapprove(actorID uint) error {
	for i, a := range s.approvals {
		if a.ActorID == actorID {
			s.approvals = append(s.approvals[:i], s.approvals[i+1:]...)
			return nil
		}
	}
	return ErrNotApproved
}

// satisfiedCount returns how many distinct current-head approvals count
// toward the rule.
func (s *State) satisfiedCount(rule *Rule, actorGroups map[uint][]uint) int {
	seen := make(map[uint]struct{})
	for _, a := range s.approvals {
		if a.SHA != s.headSHA {
			continue
		}
		if _, dup := seen[a.ActorID]; dup {
			continue
		}
		if rule.Eligible(a.ActorID, actorGroups[a.ActorID]) {
			seen[a.ActorID] = struct{}{}
		}
	}
	return len(seen)
}

// ApprovalsLeft returns the outstanding approval count:
// max(0, Σ required−satisfied over unsatisfied rules). actorGroups maps each
// approver to the groups they are an active member of, resolved by the
// caller in one query.
func (s *State) ApprovalsLeft(actorGroups map[uint][]uint) int {
	left := 0
	for _, rule := range s.rules {
		satisfied := s.satisfiedCount(rule, actorGroups)
		if missing := rule.ApprovalsRequired() - satisfied; missing > 0 {
			left += missing
		}
	}
	return left
}

// Approved reports whether the merge request has collected every required
// approval. A merge request with no configured approvers is approved by
// definition.
func (s *State) Approved(actorGroups map[uint][]uint) bool {
	anyApprovers := false
	for _, rule := range s.rules {
		if rule.ApprovalsRequired() > 0 && rule.HasApprovers() {
			anyApprovers = true
			break
		}
	}
	if !anyApprovers {
		return true
	}
	return s.ApprovalsLeft(actorGroups) == 0
}
