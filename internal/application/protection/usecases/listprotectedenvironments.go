package usecases

import (
	"context"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/protection/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

type ListProtectedEnvironmentsQuery struct {
	Actor      *membership.Actor
	Scope      protection.ScopeKind
	ScopeID    uint
	Pagination utils.Pagination
}

type ListProtectedEnvironmentsResult struct {
	Environments []*dto.ProtectedEnvironmentDTO
	Total        int64
}

type ListProtectedEnvironmentsExecutor interface {
	Execute(ctx context.Context, query ListProtectedEnvironmentsQuery) (*ListProtectedEnvironmentsResult, error)
}

type ListProtectedEnvironmentsUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	envRepo      protection.EnvironmentRepository
	logger       logger.Interface
}

func NewListProtectedEnvironmentsUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	envRepo protection.EnvironmentRepository,
	logger logger.Interface,
) *ListProtectedEnvironmentsUseCase {
	return &ListProtectedEnvironmentsUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		envRepo:      envRepo,
		logger:       logger,
	}
}

func (uc *ListProtectedEnvironmentsUseCase) Execute(ctx context.Context, query ListProtectedEnvironmentsQuery) (*ListProtectedEnvironmentsResult, error) {
	res, err := scopeResource(ctx, uc.resourceRepo, query.Scope, query.ScopeID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, query.Actor, authz.ActionReadProtectedEnvironments, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	offset := (query.Pagination.Page - 1) * query.Pagination.PageSize
	envs, total, err := uc.envRepo.ListForScope(ctx, query.Scope, query.ScopeID, offset, query.Pagination.PageSize, query.Pagination.SortAsc)
	if err != nil {
		uc.logger.Errorw("failed to list protected environments", "error", err)
		return nil, errors.NewInternalError("failed to list protected environments")
	}

	dtos := make([]*dto.ProtectedEnvironmentDTO, len(envs))
	for i, env := range envs {
		dtos[i] = dto.ToProtectedEnvironmentDTO(env)
	}
	return &ListProtectedEnvironmentsResult{Environments: dtos, Total: total}, nil
}
