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
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// MergeMergeRequestCommand merges the merge request. SHA pins the head the
// caller intends to merge; a mismatch with the current head is a conflict.
type MergeMergeRequestCommand struct {
	Actor          *membership.Actor
	MergeRequestID uint
	SHA            string
}

type MergeMergeRequestExecutor interface {
	Execute(ctx context.Context, cmd MergeMergeRequestCommand) (*dto.MergeResultDTO, error)
}

type MergeMergeRequestUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	mrRepo       approval.MergeRequestRepository
	approvalRepo approval.Repository
	memberRepo   membership.Repository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewMergeMergeRequestUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	mrRepo approval.MergeRequestRepository,
	approvalRepo approval.Repository,
	memberRepo membership.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *MergeMergeRequestUseCase {
	return &MergeMergeRequestUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		mrRepo:       mrRepo,
		approvalRepo: approvalRepo,
		memberRepo:   memberRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *MergeMergeRequestUseCase) Execute(ctx context.Context, cmd MergeMergeRequestCommand) (*dto.MergeResultDTO, error) {
	uc.logger.Infow("executing merge merge request use case",
		"merge_request_id", cmd.MergeRequestID)

	mr, err := uc.mrRepo.GetByID(ctx, cmd.MergeRequestID)
	if err != nil {
		return nil, err
	}

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, mr.ProjectID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionMergeMergeRequest, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	// Workflow state is only revealed once the caller may see the resource.
	if !mr.Open() {
		return nil, errors.NewUnprocessableError(
			fmt.Sprintf("merge request is %s and cannot be merged", mr.State))
	}

	if cmd.SHA != "" && cmd.SHA != mr.HeadSHA {
		// The head moved since the caller looked at the diff.
		return nil, errors.NewConflictError("merge request head has changed")
	}

	state, err := uc.approvalRepo.GetState(ctx, cmd.MergeRequestID)
	if err != nil {
		return nil, err
	}

	groups, err := approverGroups(ctx, uc.memberRepo, state)
	if err != nil {
		uc.logger.Errorw("failed to load approver groups", "error", err)
		return nil, errors.NewInternalError("failed to load approver groups")
	}

	if !state.Approved(groups) {
		left := state.ApprovalsLeft(groups)
		uc.logger.Warnw("merge blocked by outstanding approvals",
			"merge_request_id", cmd.MergeRequestID, "approvals_left", left)
		return nil, errors.NewWorkflowBlockedError(
			fmt.Sprintf("merge blocked: %d approvals still required", left))
	}

	if err := uc.mrRepo.UpdateState(ctx, cmd.MergeRequestID, approval.MergeRequestStateMerged); err != nil {
		uc.logger.Errorw("failed to merge merge request",
			"merge_request_id", cmd.MergeRequestID, "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "merge_merge_request",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"merge_request_id": cmd.MergeRequestID, "sha": mr.HeadSHA},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("merge request merged",
		"merge_request_id", cmd.MergeRequestID, "sha", mr.HeadSHA)
	return &dto.MergeResultDTO{
		MergeRequestID: cmd.MergeRequestID,
		State:          approval.MergeRequestStateMerged,
		SHA:            mr.HeadSHA,
	}, nil
}
