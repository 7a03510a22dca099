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

type DeleteMemberRoleCommand struct {
	Actor       *membership.Actor
	NamespaceID uint
	RoleID      uint
}

type DeleteMemberRoleExecutor interface {
	Execute(ctx context.Context, cmd DeleteMemberRoleCommand) error
}

type DeleteMemberRoleUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	roleRepo     membership.MemberRoleRepository
	enforcer     membership.AbilityEnforcer
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewDeleteMemberRoleUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	roleRepo membership.MemberRoleRepository,
	enforcer membership.AbilityEnforcer,
	recorder audit.Recorder,
	logger logger.Interface,
) *DeleteMemberRoleUseCase {
	return &DeleteMemberRoleUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		roleRepo:     roleRepo,
		enforcer:     enforcer,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *DeleteMemberRoleUseCase) Execute(ctx context.Context, cmd DeleteMemberRoleCommand) error {
	uc.logger.Infow("executing delete member role use case",
		"namespace_id", cmd.NamespaceID, "role_id", cmd.RoleID)

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindGroup, cmd.NamespaceID)
	if err != nil {
		return err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionManageMemberRoles, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return common.DecisionError(decision)
	}

	role, err := uc.roleRepo.GetByID(ctx, cmd.RoleID)
	if err != nil {
		return err
	}
	if role.NamespaceID() != cmd.NamespaceID {
		return errors.NewNotFoundError("member role not found")
	}

	if err := uc.roleRepo.Delete(ctx, role.ID()); err != nil {
		uc.logger.Errorw("failed to delete member role", "id", role.ID(), "error", err)
		return err
	}

	// Drop the role's ability grants so the subject cannot be resurrected by
	// a later role with the same id.
	if err := uc.enforcer.SyncAbilities(role.ID(), nil); err != nil {
		uc.logger.Warnw("failed to clear role abilities", "role_id", role.ID(), "error", err)
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "delete_member_role",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"role_id": role.ID(), "role_name": role.Name()},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("member role deleted", "id", role.ID(), "name", role.Name())
	return nil
}
