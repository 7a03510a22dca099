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

// ApproveMergeRequestCommand records an approval against the merge request
// head. SHA pins the commit the reviewer looked at; a mismatch with the
// current head is a state conflict.
type ApproveMergeRequestCommand struct {
	Actor          *membership.Actor
	MergeRequestID uint
	SHA            string
}

type ApproveMergeRequestExecutor interface {
	Execute(ctx context.Context, cmd ApproveMergeRequestCommand) (*dto.ApprovalStateDTO, error)
}

type ApproveMergeRequestUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	mrRepo       approval.MergeRequestRepository
	approvalRepo approval.Repository
	memberRepo   membership.Repository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewApproveMergeRequestUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	mrRepo approval.MergeRequestRepository,
	approvalRepo approval.Repository,
	memberRepo membership.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *ApproveMergeRequestUseCase {
	return &ApproveMergeRequestUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		mrRepo:       mrRepo,
		approvalRepo: approvalRepo,
		memberRepo:   memberRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// approverGroups resolves the group memberships of every approver in the
// state, the input rule eligibility counting needs.
func approverGroups(ctx context.Context, memberRepo membership.Repository, state *approval.State) (map[uint][]uint, error) {
	groups := make(map[uint][]uint)
	for _, a := range state.Approvals() {
		if _, done := groups[a.ActorID]; done {
			continue
		}
		ids, err := memberRepo.GroupIDsForActor(ctx, a.ActorID)
		if err != nil {
			return nil, err
		}
		groups[a.ActorID] = ids
	}
	return groups, nil
}

func (uc *ApproveMergeRequestUseCase) Execute(ctx context.Context, cmd ApproveMergeRequestCommand) (*dto.ApprovalStateDTO, error) {
	uc.logger.Infow("executing approve merge request use case",
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

	sha := cmd.SHA
	if sha == "" {
		sha = state.HeadSHA()
	}

	if err := state.Approve(cmd.Actor.ID(), sha); err != nil {
		switch {
		case goerrors.Is(err, approval.ErrSHAMismatch):
			// The head moved since the reviewer looked: the approval is stale.
			return nil, errors.NewConflictError(err.Error())
		case goerrors.Is(err, approval.ErrAlreadyApproved):
			return nil, errors.NewConflictError(err.Error())
		default:
			return nil, errors.NewValidationError(err.Error())
		}
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
		Action:       "approve_merge_request",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"merge_request_id": cmd.MergeRequestID, "sha": sha},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	result := dto.ToApprovalStateDTO(state, groups)
	uc.logger.Infow("merge request approved",
		"merge_request_id", cmd.MergeRequestID, "approvals_left", result.ApprovalsLeft)
	return result, nil
}
