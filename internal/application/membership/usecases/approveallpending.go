package usecases

import (
	"context"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// approveAllBatchSize bounds each page of pending members activated per
// round trip.
const approveAllBatchSize = 100

type ApproveAllPendingCommand struct {
	Actor      *membership.Actor
	ResourceID uint
}

type ApproveAllPendingExecutor interface {
	Execute(ctx context.Context, cmd ApproveAllPendingCommand) (int, error)
}

type ApproveAllPendingUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	memberRepo   membership.Repository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewApproveAllPendingUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	memberRepo membership.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *ApproveAllPendingUseCase {
	return &ApproveAllPendingUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		memberRepo:   memberRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// Execute activates every awaiting member of the resource and returns how
// many were approved. Members that left the awaiting state mid-run are
// skipped rather than failing the batch.
func (uc *ApproveAllPendingUseCase) Execute(ctx context.Context, cmd ApproveAllPendingCommand) (int, error) {
	uc.logger.Infow("executing approve all pending use case", "resource_id", cmd.ResourceID)

	res, err := uc.resourceRepo.GetByID(ctx, cmd.ResourceID)
	if err != nil {
		return 0, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionApproveMember, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return 0, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return 0, common.DecisionError(decision)
	}

	approved := 0
	for {
		// Approved members drop out of the pending set, so each round reads
		// from offset zero.
		pending, _, err := uc.memberRepo.ListPending(ctx, cmd.ResourceID, 0, approveAllBatchSize)
		if err != nil {
			uc.logger.Errorw("failed to list pending members", "error", err)
			return approved, errors.NewInternalError("failed to list pending members")
		}
		if len(pending) == 0 {
			break
		}

		progressed := false
		for _, member := range pending {
			if err := member.Approve(); err != nil {
				continue
			}
			if err := uc.memberRepo.Update(ctx, member); err != nil {
				uc.logger.Errorw("failed to update member", "id", member.ID(), "error", err)
				return approved, err
			}
			approved++
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "approve_all_pending_members",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"approved_count": approved},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("pending members approved", "resource_id", cmd.ResourceID, "count", approved)
	return approved, nil
}
