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

type ProtectBranchCommand struct {
	Actor        *membership.Actor
	Scope        protection.ScopeKind
	ScopeID      uint
	Name         string
	PushEntries  []AccessEntryInput
	MergeEntries []AccessEntryInput
}

type ProtectBranchExecutor interface {
	Execute(ctx context.Context, cmd ProtectBranchCommand) (*dto.ProtectedBranchDTO, error)
}

type ProtectBranchUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	branchRepo   protection.BranchRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewProtectBranchUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	branchRepo protection.BranchRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *ProtectBranchUseCase {
	return &ProtectBranchUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		branchRepo:   branchRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// scopeResource resolves the project or group a scope addresses. A missing
// resource surfaces as not found, indistinguishable from a hidden one.
func scopeResource(ctx context.Context, repo resource.Repository, scope protection.ScopeKind, scopeID uint) (*resource.Resource, error) {
	kind := resource.KindProject
	if scope == protection.ScopeGroup {
		kind = resource.KindGroup
	}
	return repo.GetByKindAndID(ctx, kind, scopeID)
}

// branchAction picks the governing action: group-level rules are themselves a
// licensed feature, project-level ones are not.
func branchAction(scope protection.ScopeKind, mutating authz.Action, groupMutating authz.Action) authz.Action {
	if scope == protection.ScopeGroup {
		return groupMutating
	}
	return mutating
}

func (uc *ProtectBranchUseCase) Execute(ctx context.Context, cmd ProtectBranchCommand) (*dto.ProtectedBranchDTO, error) {
	uc.logger.Infow("executing protect branch use case",
		"scope", cmd.Scope, "scope_id", cmd.ScopeID, "name", cmd.Name)

	if cmd.Name == "" {
		return nil, errors.NewValidationError("branch name is required").
			WithField("name", "can't be blank")
	}
	if !cmd.Scope.IsValid() || cmd.ScopeID == 0 {
		return nil, errors.NewValidationError("a project or group scope is required")
	}

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

	pushEntries, err := buildEntries(cmd.PushEntries)
	if err != nil {
		return nil, err
	}
	mergeEntries, err := buildEntries(cmd.MergeEntries)
	if err != nil {
		return nil, err
	}

	// An empty grant list defaults to the maintainer role, matching the
	// minimum level required to protect the branch in the first place.
	if len(pushEntries) == 0 {
		entry, err := protection.NewRoleEntry(membership.Maintainer)
		if err != nil {
			return nil, errors.NewInternalError("failed to build default entry")
		}
		pushEntries = append(pushEntries, entry)
	}
	if len(mergeEntries) == 0 {
		entry, err := protection.NewRoleEntry(membership.Maintainer)
		if err != nil {
			return nil, errors.NewInternalError("failed to build default entry")
		}
		mergeEntries = append(mergeEntries, entry)
	}

	branch, err := protection.NewProtectedBranch(cmd.Name, cmd.Scope, cmd.ScopeID, pushEntries, mergeEntries)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.branchRepo.Create(ctx, branch); err != nil {
		uc.logger.Errorw("failed to create protected branch", "name", cmd.Name, "error", err)
		return nil, err
	}

	uc.record(ctx, cmd, res, action)
	uc.logger.Infow("branch protected", "id", branch.ID(), "name", branch.Name())

	return dto.ToProtectedBranchDTO(branch, cmd.Scope == protection.ScopeProject, false), nil
}

func (uc *ProtectBranchUseCase) record(ctx context.Context, cmd ProtectBranchCommand, res *resource.Resource, action authz.Action) {
	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       action.Name,
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"branch_name": cmd.Name},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}
}
