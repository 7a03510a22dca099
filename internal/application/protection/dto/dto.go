// Package dto defines the transport representations of protection rules.
package dto

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/protection"
)

// AccessEntryDTO is one push/merge/deploy grant on a protection rule.
type AccessEntryDTO struct {
	ID               uint   `json:"id"`
	Kind             string `json:"kind"`
	AccessLevel      int    `json:"access_level,omitempty"`
	UserID           uint   `json:"user_id,omitempty"`
	GroupID          uint   `json:"group_id,omitempty"`
	GroupInheritance int    `json:"group_inheritance_type"`
}

// ProtectedBranchDTO is the transport representation of a protected branch
// rule. Inherited is a pointer: group-scoped endpoints suppress the field
// entirely while project-scoped listings always carry it.
type ProtectedBranchDTO struct {
	ID           uint             `json:"id"`
	Name         string           `json:"name"`
	PushEntries  []AccessEntryDTO `json:"allowed_to_push"`
	MergeEntries []AccessEntryDTO `json:"allowed_to_merge"`
	Inherited    *bool            `json:"inherited,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// EnvApprovalRuleDTO is one approval rule on a protected environment.
type EnvApprovalRuleDTO struct {
	ID                uint   `json:"id"`
	Kind              string `json:"kind"`
	AccessLevel       int    `json:"access_level,omitempty"`
	UserID            uint   `json:"user_id,omitempty"`
	GroupID           uint   `json:"group_id,omitempty"`
	GroupInheritance  int    `json:"group_inheritance_type"`
	RequiredApprovals int    `json:"required_approvals"`
}

// ProtectedEnvironmentDTO is the transport representation of a protected
// environment.
type ProtectedEnvironmentDTO struct {
	ID                    uint                 `json:"id"`
	Name                  string               `json:"name"`
	DeployAccessLevels    []AccessEntryDTO     `json:"deploy_access_levels"`
	ApprovalRules         []EnvApprovalRuleDTO `json:"approval_rules"`
	RequiredApprovalCount int                  `json:"required_approval_count"`
	CreatedAt             time.Time            `json:"created_at"`
	UpdatedAt             time.Time            `json:"updated_at"`
}

// DeploymentApprovalDTO is the transport representation of a recorded
// deployment approval.
type DeploymentApprovalDTO struct {
	ID                   uint      `json:"id"`
	DeploymentID         uint      `json:"deployment_id"`
	ApproverID           uint      `json:"approver_id"`
	SHA                  string    `json:"sha"`
	Status               string    `json:"status"`
	Comment              string    `json:"comment,omitempty"`
	RepresentedAsGroupID uint      `json:"represented_as,omitempty"`
	ApprovalsLeft        int       `json:"approvals_left"`
	CreatedAt            time.Time `json:"created_at"`
}

// StatusCheckDTO is the transport representation of an external status check.
type StatusCheckDTO struct {
	ID        uint      `json:"id"`
	ProjectID uint      `json:"project_id"`
	Name      string    `json:"name"`
	URL       string    `json:"external_url"`
	LastState string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toEntryDTO(e *protection.AccessEntry) AccessEntryDTO {
	return AccessEntryDTO{
		ID:               e.ID(),
		Kind:             string(e.Kind()),
		AccessLevel:      int(e.AccessLevel()),
		UserID:           e.UserID(),
		GroupID:          e.GroupID(),
		GroupInheritance: int(e.GroupInheritance()),
	}
}

func toEntryDTOs(entries []*protection.AccessEntry) []AccessEntryDTO {
	dtos := make([]AccessEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toEntryDTO(e))
	}
	return dtos
}

// ToProtectedBranchDTO maps a protected branch rule. withInherited controls
// whether the inherited flag is present at all; the group's own endpoint
// suppresses it.
func ToProtectedBranchDTO(b *protection.ProtectedBranch, withInherited, inherited bool) *ProtectedBranchDTO {
	if b == nil {
		return nil
	}
	d := &ProtectedBranchDTO{
		ID:           b.ID(),
		Name:         b.Name(),
		PushEntries:  toEntryDTOs(b.PushEntries()),
		MergeEntries: toEntryDTOs(b.MergeEntries()),
		CreatedAt:    b.CreatedAt(),
		UpdatedAt:    b.UpdatedAt(),
	}
	if withInherited {
		d.Inherited = &inherited
	}
	return d
}

// ToProtectedEnvironmentDTO maps a protected environment.
func ToProtectedEnvironmentDTO(env *protection.ProtectedEnvironment) *ProtectedEnvironmentDTO {
	if env == nil {
		return nil
	}
	rules := make([]EnvApprovalRuleDTO, 0, len(env.ApprovalRules()))
	for _, r := range env.ApprovalRules() {
		e := r.Entry()
		rules = append(rules, EnvApprovalRuleDTO{
			ID:                r.ID(),
			Kind:              string(e.Kind()),
			AccessLevel:       int(e.AccessLevel()),
			UserID:            e.UserID(),
			GroupID:           e.GroupID(),
			GroupInheritance:  int(e.GroupInheritance()),
			RequiredApprovals: r.RequiredApprovals(),
		})
	}
	return &ProtectedEnvironmentDTO{
		ID:                    env.ID(),
		Name:                  env.Name(),
		DeployAccessLevels:    toEntryDTOs(env.DeployEntries()),
		ApprovalRules:         rules,
		RequiredApprovalCount: env.RequiredApprovalCount(),
		CreatedAt:             env.CreatedAt(),
		UpdatedAt:             env.UpdatedAt(),
	}
}

// ToDeploymentApprovalDTO maps a recorded approval together with the
// outstanding count after it was applied.
func ToDeploymentApprovalDTO(a *protection.DeploymentApproval, approvalsLeft int) *DeploymentApprovalDTO {
	if a == nil {
		return nil
	}
	return &DeploymentApprovalDTO{
		ID:                   a.ID(),
		DeploymentID:         a.DeploymentID(),
		ApproverID:           a.ApproverID(),
		SHA:                  a.SHA(),
		Status:               a.Status().String(),
		Comment:              a.Comment(),
		RepresentedAsGroupID: a.RepresentedAsGroupID(),
		ApprovalsLeft:        approvalsLeft,
		CreatedAt:            a.CreatedAt(),
	}
}

// ToStatusCheckDTO maps an external status check.
func ToStatusCheckDTO(c *protection.ExternalStatusCheck) *StatusCheckDTO {
	if c == nil {
		return nil
	}
	return &StatusCheckDTO{
		ID:        c.ID(),
		ProjectID: c.ProjectID(),
		Name:      c.Name(),
		URL:       c.URL(),
		LastState: c.LastState().String(),
		UpdatedAt: c.UpdatedAt(),
	}
}
