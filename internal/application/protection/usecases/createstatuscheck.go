package usecases

import (
	"context"
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

type CreateStatusCheckCommand struct {
	Actor     *membership.Actor
	ProjectID uint
	Name      string
	URL       string
}

type CreateStatusCheckExecutor interface {
	Execute(ctx context.Context, cmd CreateStatusCheckCommand) (*dto.StatusCheckDTO, error)
}

type CreateStatusCheckUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	checkRepo    protection.StatusCheckRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewCreateStatusCheckUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	checkRepo protection.StatusCheckRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *CreateStatusCheckUseCase {
	return &CreateStatusCheckUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		checkRepo:    checkRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *CreateStatusCheckUseCase) Execute(ctx context.Context, cmd CreateStatusCheckCommand) (*dto.StatusCheckDTO, error) {
	uc.logger.Infow("executing create status check use case",
		"project_id", cmd.ProjectID, "name", cmd.Name)

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, cmd.ProjectID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionManageStatusChecks, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	check, err := protection.NewExternalStatusCheck(cmd.ProjectID, cmd.Name, cmd.URL)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.checkRepo.Create(ctx, check); err != nil {
		uc.logger.Errorw("failed to create status check", "name", cmd.Name, "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "create_status_check",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"check_name": cmd.Name},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("status check created", "id", check.ID(), "name", check.Name())
	return dto.ToStatusCheckDTO(check), nil
}
