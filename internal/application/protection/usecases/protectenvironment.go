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

type ProtectEnvironmentCommand struct {
	Actor                 *membership.Actor
	Scope                 protection.ScopeKind
	ScopeID               uint
	Name                  string
	DeployEntries         []AccessEntryInput
	ApprovalRules         []AccessEntryInput
	RequiredApprovalCount int
}

type ProtectEnvironmentExecutor interface {
	Execute(ctx context.Context, cmd ProtectEnvironmentCommand) (*dto.ProtectedEnvironmentDTO, error)
}

type ProtectEnvironmentUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	envRepo      protection.EnvironmentRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewProtectEnvironmentUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	envRepo protection.EnvironmentRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *ProtectEnvironmentUseCase {
	return &ProtectEnvironmentUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		envRepo:      envRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// buildApprovalRules converts approval rule inputs. Each carries one approver
// entry plus how many approvals that rule demands; a zero count means one.
func buildApprovalRules(inputs []AccessEntryInput) ([]*protection.EnvApprovalRule, error) {
	rules := make([]*protection.EnvApprovalRule, 0, len(inputs))
	for _, in := range inputs {
		if in.Destroy || in.ID != 0 {
			return nil, errors.NewValidationError("cannot address existing approval rules on create")
		}
		entry, err := in.toEntry()
		if err != nil {
			return nil, err
		}
		required := in.RequiredApprovals
		if required == 0 {
			required = 1
		}
		rule, err := protection.NewEnvApprovalRule(entry, required)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func (uc *ProtectEnvironmentUseCase) Execute(ctx context.Context, cmd ProtectEnvironmentCommand) (*dto.ProtectedEnvironmentDTO, error) {
	uc.logger.Infow("executing protect environment use case",
		"scope", cmd.Scope, "scope_id", cmd.ScopeID, "name", cmd.Name)

	if cmd.Name == "" {
		return nil, errors.NewValidationError("environment name is required").
			WithField("name", "can't be blank")
	}
	if !cmd.Scope.IsValid() || cmd.ScopeID == 0 {
		return nil, errors.NewValidationError("a project or group scope is required")
	}
	if len(cmd.DeployEntries) == 0 {
		return nil, errors.NewValidationError("at least one deploy access level is required").
			WithField("deploy_access_levels", "is too short (minimum is 1 character)")
	}

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

	deployEntries, err := buildEntries(cmd.DeployEntries)
	if err != nil {
		return nil, err
	}
	approvalRules, err := buildApprovalRules(cmd.ApprovalRules)
	if err != nil {
		return nil, err
	}

	env, err := protection.NewProtectedEnvironment(cmd.Name, cmd.Scope, cmd.ScopeID, deployEntries, approvalRules, cmd.RequiredApprovalCount)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.envRepo.Create(ctx, env); err != nil {
		uc.logger.Errorw("failed to create protected environment", "name", cmd.Name, "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "protect_environment",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"environment_name": cmd.Name},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("environment protected", "id", env.ID(), "name", env.Name())
	return dto.ToProtectedEnvironmentDTO(env), nil
}
