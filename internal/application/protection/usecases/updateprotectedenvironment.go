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

// UpdateProtectedEnvironmentCommand carries nested changes to deploy access
// levels and approval rules. RequiredApprovalCount updates only when non-nil.
type UpdateProtectedEnvironmentCommand struct {
	Actor                 *membership.Actor
	Scope                 protection.ScopeKind
	ScopeID               uint
	Name                  string
	DeployEntries         []AccessEntryInput
	ApprovalRules         []AccessEntryInput
	RequiredApprovalCount *int
}

type UpdateProtectedEnvironmentExecutor interface {
	Execute(ctx context.Context, cmd UpdateProtectedEnvironmentCommand) (*dto.ProtectedEnvironmentDTO, error)
}

type UpdateProtectedEnvironmentUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	envRepo      protection.EnvironmentRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewUpdateProtectedEnvironmentUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	envRepo protection.EnvironmentRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UpdateProtectedEnvironmentUseCase {
	return &UpdateProtectedEnvironmentUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		envRepo:      envRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// applyRuleChanges folds nested approval rule inputs into the current list,
// mirroring applyEntryChanges but carrying per-rule approval counts.
func applyRuleChanges(current []*protection.EnvApprovalRule, inputs []AccessEntryInput) ([]*protection.EnvApprovalRule, error) {
	byID := make(map[uint]*protection.EnvApprovalRule, len(current))
	order := make([]uint, 0, len(current))
	for _, r := range current {
		byID[r.ID()] = r
		order = append(order, r.ID())
	}

	var appended []*protection.EnvApprovalRule
	for _, in := range inputs {
		required := in.RequiredApprovals
		if required == 0 {
			required = 1
		}
		if in.ID != 0 {
			if _, ok := byID[in.ID]; !ok {
				return nil, errors.NewNotFoundError("approval rule not found")
			}
			if in.Destroy {
				delete(byID, in.ID)
				continue
			}
			entry, err := in.toEntry()
			if err != nil {
				return nil, err
			}
			rule, err := protection.ReconstructEnvApprovalRule(in.ID, entry, required)
			if err != nil {
				return nil, errors.NewValidationError(err.Error())
			}
			byID[in.ID] = rule
			continue
		}
		entry, err := in.toEntry()
		if err != nil {
			return nil, err
		}
		rule, err := protection.NewEnvApprovalRule(entry, required)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		appended = append(appended, rule)
	}

	result := make([]*protection.EnvApprovalRule, 0, len(byID)+len(appended))
	for _, id := range order {
		if r, ok := byID[id]; ok {
			result = append(result, r)
		}
	}
	result = append(result, appended...)
	return result, nil
}

func (uc *UpdateProtectedEnvironmentUseCase) Execute(ctx context.Context, cmd UpdateProtectedEnvironmentCommand) (*dto.ProtectedEnvironmentDTO, error) {
	uc.logger.Infow("executing update protected environment use case",
		"scope", cmd.Scope, "scope_id", cmd.ScopeID, "name", cmd.Name)

	res, err := scopeResource(ctx, uc.resourceRepo, cmd.Scope, cmd.ScopeID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionProtectEnvironment, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	env, err := uc.envRepo.GetByName(ctx, cmd.Scope, cmd.ScopeID, cmd.Name)
	if err != nil {
		return nil, err
	}

	if len(cmd.DeployEntries) > 0 {
		next, err := applyEntryChanges(env.DeployEntries(), cmd.DeployEntries)
		if err != nil {
			return nil, err
		}
		if err := env.ReplaceDeployEntries(next); err != nil {
			// Destroying the last deploy access level leaves nobody able to
			// deploy, which the rule refuses to represent.
			return nil, errors.NewValidationError(err.Error()).
				WithField("deploy_access_levels", "is too short (minimum is 1 character)")
		}
	}
	if len(cmd.ApprovalRules) > 0 {
		next, err := applyRuleChanges(env.ApprovalRules(), cmd.ApprovalRules)
		if err != nil {
			return nil, err
		}
		env.ReplaceApprovalRules(next)
	}
	if cmd.RequiredApprovalCount != nil {
		if err := env.SetRequiredApprovalCount(*cmd.RequiredApprovalCount); err != nil {
			return nil, errors.NewValidationError(err.Error()).
				WithField("required_approval_count", "must be greater than or equal to 0")
		}
	}

	if err := uc.envRepo.Update(ctx, env); err != nil {
		uc.logger.Errorw("failed to update protected environment", "id", env.ID(), "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "update_protected_environment",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"environment_name": cmd.Name},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("protected environment updated", "id", env.ID(), "name", cmd.Name)
	return dto.ToProtectedEnvironmentDTO(env), nil
}
