package usecases

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/protection/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type RetryStatusCheckCommand struct {
	Actor     *membership.Actor
	ProjectID uint
	CheckID   uint
}

type RetryStatusCheckExecutor interface {
	Execute(ctx context.Context, cmd RetryStatusCheckCommand) (*dto.StatusCheckDTO, error)
}

type RetryStatusCheckUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	checkRepo    protection.StatusCheckRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewRetryStatusCheckUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	checkRepo protection.StatusCheckRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *RetryStatusCheckUseCase {
	return &RetryStatusCheckUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		checkRepo:    checkRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *RetryStatusCheckUseCase) Execute(ctx context.Context, cmd RetryStatusCheckCommand) (*dto.StatusCheckDTO, error) {
	uc.logger.Infow("executing retry status check use case",
		"project_id", cmd.ProjectID, "check_id", cmd.CheckID)

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, cmd.ProjectID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionRetryStatusCheck, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	check, err := uc.checkRepo.GetByID(ctx, cmd.CheckID)
	if err != nil {
		return nil, err
	}
	// A check id from another project answers not found, never forbidden.
	if check.ProjectID() != cmd.ProjectID {
		return nil, errors.NewNotFoundError("status check not found")
	}

	if err := check.Retry(); err != nil {
		if goerrors.Is(err, protection.ErrCheckNotFailed) {
			return nil, errors.NewUnprocessableError(err.Error())
		}
		return nil, errors.NewInternalError("failed to retry status check")
	}

	if err := uc.checkRepo.Update(ctx, check); err != nil {
		uc.logger.Errorw("failed to update status check", "id", check.ID(), "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "retry_status_check",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"check_id": check.ID(), "check_name": check.Name()},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("status check retried", "id", check.ID(), "name", check.Name())
	return dto.ToStatusCheckDTO(check), nil
}
