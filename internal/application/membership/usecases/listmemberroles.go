package usecases

import (
	"context"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/membership/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type ListMemberRolesQuery struct {
	Actor       *membership.Actor
	NamespaceID uint
}

type ListMemberRolesExecutor interface {
	Execute(ctx context.Context, query ListMemberRolesQuery) ([]*dto.MemberRoleDTO, error)
}

type ListMemberRolesUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	roleRepo     membership.MemberRoleRepository
	enforcer     membership.AbilityEnforcer
	logger       logger.Interface
}

func NewListMemberRolesUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	roleRepo membership.MemberRoleRepository,
	enforcer membership.AbilityEnforcer,
	logger logger.Interface,
) *ListMemberRolesUseCase {
	return &ListMemberRolesUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		roleRepo:     roleRepo,
		enforcer:     enforcer,
		logger:       logger,
	}
}

func (uc *ListMemberRolesUseCase) Execute(ctx context.Context, query ListMemberRolesQuery) ([]*dto.MemberRoleDTO, error) {
	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindGroup, query.NamespaceID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, query.Actor, authz.ActionManageMemberRoles, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	roles, err := uc.roleRepo.ListForNamespace(ctx, query.NamespaceID)
	if err != nil {
		uc.logger.Errorw("failed to list member roles", "error", err)
		return nil, errors.NewInternalError("failed to list member roles")
	}

	dtos := make([]*dto.MemberRoleDTO, len(roles))
	for i, role := range roles {
		abilities, err := uc.enforcer.AbilitiesFor(role.ID())
		if err != nil {
			uc.logger.Warnw("failed to load role abilities", "role_id", role.ID(), "error", err)
		}
		dtos[i] = dto.ToMemberRoleDTO(role, abilities)
	}
	return dtos, nil
}
