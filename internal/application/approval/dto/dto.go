// Package dto defines the transport representations of merge request
// approval state.
package dto

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/approval"
)

// RuleDTO is one approval requirement attached to a project or merge request.
type RuleDTO struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Kind              string    `json:"rule_type"`
	Section           string    `json:"section,omitempty"`
	ApprovalsRequired int       `json:"approvals_required"`
	ApproverIDs       []uint    `json:"user_ids"`
	GroupIDs          []uint    `json:"group_ids"`
	CreatedAt         time.Time `json:"created_at"`
}

// GrantedApprovalDTO is one recorded approval.
type GrantedApprovalDTO struct {
	UserID    uint      `json:"user_id"`
	SHA       string    `json:"sha"`
	CreatedAt time.Time `json:"created_at"`
}

// ApprovalStateDTO is the aggregated approval state of one merge request.
type ApprovalStateDTO struct {
	MergeRequestID uint                 `json:"merge_request_id"`
	HeadSHA        string               `json:"head_sha"`
	Rules          []RuleDTO            `json:"rules"`
	Approvals      []GrantedApprovalDTO `json:"approved_by"`
	ApprovalsLeft  int                  `json:"approvals_left"`
	Approved       bool                 `json:"approved"`
}

// MergeResultDTO reports the outcome of merging a merge request.
type MergeResultDTO struct {
	MergeRequestID uint   `json:"merge_request_id"`
	State          string `json:"state"`
	SHA            string `json:"sha"`
}

// ToRuleDTO maps an approval rule.
func ToRuleDTO(r *approval.Rule) RuleDTO {
	return RuleDTO{
		ID:                r.ID(),
		Name:              r.Name(),
		Kind:              r.Kind().String(),
		Section:           r.Section(),
		ApprovalsRequired: r.ApprovalsRequired(),
		ApproverIDs:       r.ApproverIDs(),
		GroupIDs:          r.GroupIDs(),
		CreatedAt:         r.CreatedAt(),
	}
}

// ToApprovalStateDTO maps the approval state. actorGroups maps each approver
// to their active group memberships, resolved by the caller.
func ToApprovalStateDTO(state *approval.State, actorGroups map[uint][]uint) *ApprovalStateDTO {
	if state == nil {
		return nil
	}
	rules := make([]RuleDTO, len(state.Rules()))
	for i, r := range state.Rules() {
		rules[i] = ToRuleDTO(r)
	}
	approvals := make([]GrantedApprovalDTO, len(state.Approvals()))
	for i, a := range state.Approvals() {
		approvals[i] = GrantedApprovalDTO{
			UserID:    a.ActorID,
			SHA:       a.SHA,
			CreatedAt: a.CreatedAt,
		}
	}
	return &ApprovalStateDTO{
		MergeRequestID: state.MergeRequestID(),
		HeadSHA:        state.HeadSHA(),
		Rules:          rules,
		Approvals:      approvals,
		ApprovalsLeft:  state.ApprovalsLeft(actorGroups),
		Approved:       state.Approved(actorGroups),
	}
}
