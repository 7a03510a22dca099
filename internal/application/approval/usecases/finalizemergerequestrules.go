package usecases

import (
	"context"

	"github.com/forgegate-inc/forgegate/internal/application/approval/dto"
	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/domain/approval"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// FinalizeMergeRequestRulesCommand snapshots the project's rule templates
// onto a newly created merge request. Later edits to the project rules leave
// the snapshot untouched.
type FinalizeMergeRequestRulesCommand struct {
	Actor          *membership.Actor
	MergeRequestID uint
}

type FinalizeMergeRequestRulesExecutor interface {
	Execute(ctx context.Context, cmd FinalizeMergeRequestRulesCommand) (*dto.ApprovalStateDTO, error)
}

type FinalizeMergeRequestRulesUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	mrRepo       approval.MergeRequestRepository
	approvalRepo approval.Repository
	logger       logger.Interface
}

func NewFinalizeMergeRequestRulesUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	mrRepo approval.MergeRequestRepository,
	approvalRepo approval.Repository,
	logger logger.Interface,
) *FinalizeMergeRequestRulesUseCase {
	return &FinalizeMergeRequestRulesUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		mrRepo:       mrRepo,
		approvalRepo: approvalRepo,
		logger:       logger,
	}
}

func (uc *FinalizeMergeRequestRulesUseCase) Execute(ctx context.Context, cmd FinalizeMergeRequestRulesCommand) (*dto.ApprovalStateDTO, error) {
	uc.logger.Infow("executing finalize merge request rules use case",
		"merge_request_id", cmd.MergeRequestID)

	mr, err := uc.mrRepo.GetByID(ctx, cmd.MergeRequestID)
	if err != nil {
		return nil, err
	}

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, mr.ProjectID)
	if err != nil {
		return nil, err
	}

	// Finalization runs on behalf of the merge request author; it only needs
	// the project to be visible to them.
	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionReadProject, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	projectRules, err := uc.approvalRepo.ListProjectRules(ctx, mr.ProjectID)
	if err != nil {
		return nil, err
	}

	state, err := approval.FinalizeFromProject(cmd.MergeRequestID, mr.HeadSHA, projectRules)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.approvalRepo.SaveState(ctx, state); err != nil {
		uc.logger.Errorw("failed to save approval state",
			"merge_request_id", cmd.MergeRequestID, "error", err)
		return nil, err
	}

	uc.logger.Infow("merge request rules finalized",
		"merge_request_id", cmd.MergeRequestID, "rule_count", len(state.Rules()))
	return dto.ToApprovalStateDTO(state, nil), nil
}
