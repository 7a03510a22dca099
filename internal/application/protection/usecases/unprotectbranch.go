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

type UnprotectBranchCommand struct {
	Actor   *membership.Actor
	Scope   protection.ScopeKind
	ScopeID uint
	Name    string
}

type UnprotectBranchExecutor interface {
	Execute(ctx context.Context, cmd UnprotectBranchCommand) error
}

type UnprotectBranchUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	branchRepo   protection.BranchRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewUnprotectBranchUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	branchRepo protection.BranchRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UnprotectBranchUseCase {
	return &UnprotectBranchUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		branchRepo:   branchRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *UnprotectBranchUseCase) Execute(ctx context.Context, cmd UnprotectBranchCommand) error {
	uc.logger.Infow("executing unprotect branch use case",
		"scope", cmd.Scope, "scope_id", cmd.ScopeID, "name", cmd.Name)

	if cmd.Name == "" {
		return errors.NewValidationError("branch name is required")
	}

	res, err := scopeResource(ctx, uc.resourceRepo, cmd.Scope, cmd.ScopeID)
	if err != nil {
		return err
	}

	action := branchAction(cmd.Scope, authz.ActionProtectBranch, authz.ActionProtectGroupBranch)
	decision, err := uc.gate.Authorize(ctx, cmd.Actor, action, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return common.DecisionError(decision)
	}

	// Unprotecting an unprotected branch is not idempotent: the rule must
	// exist or the call answers not found.
	branch, err := uc.branchRepo.GetByName(ctx, cmd.Scope, cmd.ScopeID, cmd.Name)
	if err != nil {
		return err
	}

	if err := uc.branchRepo.Delete(ctx, branch.ID()); err != nil {
		uc.logger.Errorw("failed to delete protected branch", "id", branch.ID(), "error", err)
		return err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "unprotect_branch",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"branch_name": cmd.Name},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("branch unprotected", "id", branch.ID(), "name", cmd.Name)
	return nil
}
