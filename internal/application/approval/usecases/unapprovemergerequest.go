package usecases

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/approval/dto"
	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/domain/approval"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type UnapproveMergeRequestCommand struct {
	Actor          *membership.Actor
	MergeRequestID uint
}

type UnapproveMergeRequestExecutor interface {
	Execute(ctx context.Context, cmd UnapproveMergeRequestCommand) (*dto.ApprovalStateDTO, error)
}

type UnapproveMergeRequestUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	mrRepo       approval.MergeRequestRepository
	approvalRepo approval.Repository
	memberRepo   membership.Repository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewUnapproveMergeRequestUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	mrRepo approval.MergeRequestRepository,
	approvalRepo approval.Repository,
	memberRepo membership.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UnapproveMergeRequestUseCase {
	return &UnapproveMergeRequestUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		mrRepo:       mrRepo,
		approvalRepo: approvalRepo,
		memberRepo:   memberRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *UnapproveMergeRequestUseCase) Execute(ctx context.Context, cmd UnapproveMergeRequestCommand) (*dto.ApprovalStateDTO, error) {
	uc.logger.Infow("executing unapprove merge request use case",
		"merge_request_id", cmd.MergeRequestID)

	mr, err := uc.mrRepo.GetByID(ctx, cmd.MergeRequestID)
	if err != nil {
		return nil, err
	}

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, mr.ProjectID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionApproveMergeRequest, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	state, err := uc.approvalRepo.GetState(ctx, cmd.MergeRequestID)
	if err != nil {
		return nil, err
	}

	if err := state.Unapprove(cmd.Actor.ID()); err != nil {
		if goerrors.Is(err, approval.ErrNotApproved) {
			return nil, errors.NewNotFoundError(err.Error())
		}
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.approvalRepo.SaveState(ctx, state); err != nil {
		uc.logger.Errorw("failed to save approval state",
			"merge_request_id", cmd.MergeRequestID, "error", err)
		return nil, err
	}

	groups, err := approverGroups(ctx, uc.memberRepo, state)
	if err != nil {
		uc.logger.Errorw("failed to load approver groups", "error", err)
		return nil, errors.NewInternalError("failed to load approver groups")
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "unapprove_merge_request",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"merge_request_id": cmd.MergeRequestID},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("merge request approval revoked", "merge_request_id", cmd.MergeRequestID)
	return dto.ToApprovalStateDTO(state, groups), nil
}
