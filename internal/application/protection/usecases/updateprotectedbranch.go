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

// UpdateProtectedBranchCommand carries nested entry changes: inputs with an
// ID update or destroy the addressed entry, inputs without append.
type UpdateProtectedBranchCommand struct {
	Actor        *membership.Actor
	Scope        protection.ScopeKind
	ScopeID      uint
	Name         string
	PushEntries  []AccessEntryInput
	MergeEntries []AccessEntryInput
}

type UpdateProtectedBranchExecutor interface {
	Execute(ctx context.Context, cmd UpdateProtectedBranchCommand) (*dto.ProtectedBranchDTO, error)
}

type UpdateProtectedBranchUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	branchRepo   protection.BranchRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewUpdateProtectedBranchUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	branchRepo protection.BranchRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UpdateProtectedBranchUseCase {
	return &UpdateProtectedBranchUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		branchRepo:   branchRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *UpdateProtectedBranchUseCase) Execute(ctx context.Context, cmd UpdateProtectedBranchCommand) (*dto.ProtectedBranchDTO, error) {
	uc.logger.Infow("executing update protected branch use case",
		"scope", cmd.Scope, "scope_id", cmd.ScopeID, "name", cmd.Name)

	res, err := scopeResource(ctx, uc.resourceRepo, cmd.Scope, cmd.ScopeID)
	if err != nil {
		return nil, err
	}

	action := branchAction(cmd.Scope, authz.ActionProtectBranch, authz.ActionProtectGroupBranch)
	decision, err := uc.gate.Authorize(ctx, cmd.Actor, action, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	branch, err := uc.branchRepo.GetByName(ctx, cmd.Scope, cmd.ScopeID, cmd.Name)
	if err != nil {
		return nil, err
	}

	if len(cmd.PushEntries) > 0 {
		next, err := applyEntryChanges(branch.PushEntries(), cmd.PushEntries)
		if err != nil {
			return nil, err
		}
		if err := branch.ReplacePushEntries(next); err != nil {
			// Destroying the last push entry leaves the rule unenforceable.
			return nil, errors.NewValidationError(err.Error()).
				WithField("push_access_levels", "is too short (minimum is 1 character)")
		}
	}
	if len(cmd.MergeEntries) > 0 {
		next, err := applyEntryChanges(branch.MergeEntries(), cmd.MergeEntries)
		if err != nil {
			return nil, err
		}
		branch.ReplaceMergeEntries(next)
	}

	if err := uc.branchRepo.Update(ctx, branch); err != nil {
		uc.logger.Errorw("failed to update protected branch", "id", branch.ID(), "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "update_protected_branch",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"branch_name": cmd.Name},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("protected branch updated", "id", branch.ID(), "name", cmd.Name)
	return dto.ToProtectedBranchDTO(branch, cmd.Scope == protection.ScopeProject, false), nil
}
