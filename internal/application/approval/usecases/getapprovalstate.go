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

type GetApprovalStateQuery struct {
	Actor          *membership.Actor
	MergeRequestID uint
}

type GetApprovalStateExecutor interface {
	Execute(ctx context.Context, query GetApprovalStateQuery) (*dto.ApprovalStateDTO, error)
}

type GetApprovalStateUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	mrRepo       approval.MergeRequestRepository
	approvalRepo approval.Repository
	memberRepo   membership.Repository
	logger       logger.Interface
}

func NewGetApprovalStateUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	mrRepo approval.MergeRequestRepository,
	approvalRepo approval.Repository,
	memberRepo membership.Repository,
	logger logger.Interface,
) *GetApprovalStateUseCase {
	return &GetApprovalStateUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		mrRepo:       mrRepo,
		approvalRepo: approvalRepo,
		memberRepo:   memberRepo,
		logger:       logger,
	}
}

func (uc *GetApprovalStateUseCase) Execute(ctx context.Context, query GetApprovalStateQuery) (*dto.ApprovalStateDTO, error) {
	mr, err := uc.mrRepo.GetByID(ctx, query.MergeRequestID)
	if err != nil {
		return nil, err
	}

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, mr.ProjectID)
	if err != nil {
		return nil, err
	}

	// Reading the approval state only needs the project to be readable; the
	// approvers feature gate applies to granting, not viewing.
	decision, err := uc.gate.Authorize(ctx, query.Actor, authz.ActionReadProject, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	state, err := uc.approvalRepo.GetState(ctx, query.MergeRequestID)
	if err != nil {
		return nil, err
	}

	groups, err := approverGroups(ctx, uc.memberRepo, state)
	if err != nil {
		uc.logger.Errorw("failed to load approver groups", "error", err)
		return nil, errors.NewInternalError("failed to load approver groups")
	}

	return dto.ToApprovalStateDTO(state, groups), nil
}
