package usecases

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/membership/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type ApproveMemberCommand struct {
	Actor      *membership.Actor
	ResourceID uint
	MemberID   uint
}

type ApproveMemberExecutor interface {
	Execute(ctx context.Context, cmd ApproveMemberCommand) (*dto.MemberDTO, error)
}

type ApproveMemberUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	memberRepo   membership.Repository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewApproveMemberUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	memberRepo membership.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *ApproveMemberUseCase {
	return &ApproveMemberUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		memberRepo:   memberRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *ApproveMemberUseCase) Execute(ctx context.Context, cmd ApproveMemberCommand) (*dto.MemberDTO, error) {
	uc.logger.Infow("executing approve member use case",
		"resource_id", cmd.ResourceID, "member_id", cmd.MemberID)

	res, err := uc.resourceRepo.GetByID(ctx, cmd.ResourceID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionApproveMember, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	member, err := uc.memberRepo.GetByID(ctx, cmd.MemberID)
	if err != nil {
		return nil, err
	}
	// A member id from another resource answers not found, never forbidden.
	if member.ResourceID() != cmd.ResourceID {
		return nil, errors.NewNotFoundError("member not found")
	}

	if err := member.Approve(); err != nil {
		if goerrors.Is(err, membership.ErrMemberNotAwaiting) {
			// Approving an active or invited member is a state error, not an
			// idempotent success.
			return nil, errors.NewUnprocessableError(err.Error())
		}
		return nil, errors.NewInternalError("failed to approve member")
	}

	if err := uc.memberRepo.Update(ctx, member); err != nil {
		uc.logger.Errorw("failed to update member", "id", member.ID(), "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "approve_member",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"member_id": member.ID(), "user_id": member.ActorID()},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("member approved", "id", member.ID(), "user_id", member.ActorID())
	return dto.ToMemberDTO(member), nil
}
