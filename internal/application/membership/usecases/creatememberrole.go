package usecases

import (
	"context"
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

// CreateMemberRoleCommand defines a custom role on a top-level group. Each
// ability is a (resource kind, action) pair granted on top of the base level.
type CreateMemberRoleCommand struct {
	Actor       *membership.Actor
	NamespaceID uint
	Name        string
	BaseLevel   int
	Abilities   [][2]string
}

type CreateMemberRoleExecutor interface {
	Execute(ctx context.Context, cmd CreateMemberRoleCommand) (*dto.MemberRoleDTO, error)
}

type CreateMemberRoleUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	roleRepo     membership.MemberRoleRepository
	enforcer     membership.AbilityEnforcer
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewCreateMemberRoleUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	roleRepo membership.MemberRoleRepository,
	enforcer membership.AbilityEnforcer,
	recorder audit.Recorder,
	logger logger.Interface,
) *CreateMemberRoleUseCase {
	return &CreateMemberRoleUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		roleRepo:     roleRepo,
		enforcer:     enforcer,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *CreateMemberRoleUseCase) Execute(ctx context.Context, cmd CreateMemberRoleCommand) (*dto.MemberRoleDTO, error) {
	uc.logger.Infow("executing create member role use case",
		"namespace_id", cmd.NamespaceID, "name", cmd.Name)

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindGroup, cmd.NamespaceID)
	if err != nil {
		return nil, err
	}
	if !res.IsTopLevelGroup() {
		return nil, errors.NewValidationError("custom roles are only available on top-level groups")
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionManageMemberRoles, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	level, ok := membership.ParseAccessLevel(cmd.BaseLevel)
	if !ok {
		return nil, errors.NewValidationError("invalid base access level").
			WithField("base_access_level", "is not a valid access level")
	}

	role, err := membership.NewMemberRole(cmd.NamespaceID, cmd.Name, level)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.roleRepo.Create(ctx, role); err != nil {
		uc.logger.Errorw("failed to create member role", "name", cmd.Name, "error", err)
		return nil, err
	}

	if len(cmd.Abilities) > 0 {
		if err := uc.enforcer.SyncAbilities(role.ID(), cmd.Abilities); err != nil {
			uc.logger.Errorw("failed to sync role abilities", "role_id", role.ID(), "error", err)
			return nil, errors.NewInternalError("failed to sync role abilities")
		}
	}

	abilities, err := uc.enforcer.AbilitiesFor(role.ID())
	if err != nil {
		uc.logger.Warnw("failed to load role abilities", "role_id", role.ID(), "error", err)
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "create_member_role",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"role_name": cmd.Name, "base_access_level": cmd.BaseLevel},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("member role created", "id", role.ID(), "name", role.Name())
	return dto.ToMemberRoleDTO(role, abilities), nil
}
