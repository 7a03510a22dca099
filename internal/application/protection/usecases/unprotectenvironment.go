package usecases

import (
	"context"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type UnprotectEnvironmentCommand struct {
	Actor   *membership.Actor
	Scope   protection.ScopeKind
	ScopeID uint
	Name    string
}

type UnprotectEnvironmentExecutor interface {
	Execute(ctx context.Context, cmd UnprotectEnvironmentCommand) error
}

type UnprotectEnvironmentUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	envRepo      protection.EnvironmentRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewUnprotectEnvironmentUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	envRepo protection.EnvironmentRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UnprotectEnvironmentUseCase {
	return &UnprotectEnvironmentUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		envRepo:      envRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *UnprotectEnvironmentUseCase) Execute(ctx context.Context, cmd UnprotectEnvironmentCommand) error {
	uc.logger.Infow("executing unprotect environment use case",
		"scope", cmd.Scope, "scope_id", cmd.ScopeID, "name", cmd.Name)

	if cmd.Name == "" {
		return errors.NewValidationError("environment name is required")
	}

	res, err := scopeResource(ctx, uc.resourceRepo, cmd.Scope, cmd.ScopeID)
	if err != nil {
		return err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionProtectEnvironment, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return common.DecisionError(decision)
	}

	env, err := uc.envRepo.GetByName(ctx, cmd.Scope, cmd.ScopeID, cmd.Name)
	if err != nil {
		return err
	}

	if err := uc.envRepo.Delete(ctx, env.ID()); err != nil {
		uc.logger.Errorw("failed to delete protected environment", "id", env.ID(), "error", err)
		return err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "unprotect_environment",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"environment_name": cmd.Name},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("environment unprotected", "id", env.ID(), "name", cmd.Name)
	return nil
}
