package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/approval/dto"
	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/domain/approval"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/constants"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// CreateProjectRuleCommand defines a project-level approval rule template.
// Merge requests created afterwards snapshot it; existing ones are untouched.
type CreateProjectRuleCommand struct {
	Actor             *membership.Actor
	ProjectID         uint
	Name              string
	Kind              string
	Section           string
	ApprovalsRequired int
	ApproverIDs       []uint
	GroupIDs          []uint
}

type CreateProjectRuleExecutor interface {
	Execute(ctx context.Context, cmd CreateProjectRuleCommand) (*dto.RuleDTO, error)
}

type CreateProjectRuleUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	approvalRepo approval.Repository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewCreateProjectRuleUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	approvalRepo approval.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *CreateProjectRuleUseCase {
	return &CreateProjectRuleUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		approvalRepo: approvalRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *CreateProjectRuleUseCase) Execute(ctx context.Context, cmd CreateProjectRuleCommand) (*dto.RuleDTO, error) {
	uc.logger.Infow("executing create project rule use case",
		"project_id", cmd.ProjectID, "name", cmd.Name)

	if len(cmd.ApproverIDs)+len(cmd.GroupIDs) > constants.MaxAssigneesOrReviewers {
		return nil, errors.NewValidationError(
			fmt.Sprintf("a rule cannot name more than %d approvers", constants.MaxAssigneesOrReviewers))
	}

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, cmd.ProjectID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionManageApprovalRules, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	kind := approval.RuleKind(cmd.Kind)
	if cmd.Kind == "" {
		kind = approval.RuleKindRegular
	}

	rule, err := approval.NewRule(cmd.Name, kind, cmd.ApprovalsRequired, cmd.ApproverIDs, cmd.GroupIDs, cmd.Section)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.approvalRepo.CreateProjectRule(ctx, cmd.ProjectID, rule); err != nil {
		uc.logger.Errorw("failed to create project rule",
			"project_id", cmd.ProjectID, "name", cmd.Name, "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "create_approval_rule",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"rule_name": cmd.Name, "approvals_required": cmd.ApprovalsRequired},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("project approval rule created", "id", rule.ID(), "name", rule.Name())
	result := dto.ToRuleDTO(rule)
	return &result, nil
}
