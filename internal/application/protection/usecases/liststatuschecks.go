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
)

type ListStatusChecksQuery struct {
	Actor     *membership.Actor
	ProjectID uint
}

type ListStatusChecksExecutor interface {
	Execute(ctx context.Context, query ListStatusChecksQuery) ([]*dto.StatusCheckDTO, error)
}

type ListStatusChecksUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	checkRepo    protection.StatusCheckRepository
	logger       logger.Interface
}

func NewListStatusChecksUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	checkRepo protection.StatusCheckRepository,
	logger logger.Interface,
) *ListStatusChecksUseCase {
	return &ListStatusChecksUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		checkRepo:    checkRepo,
		logger:       logger,
	}
}

func (uc *ListStatusChecksUseCase) Execute(ctx context.Context, query ListStatusChecksQuery) ([]*dto.StatusCheckDTO, error) {
	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, query.ProjectID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, query.Actor, authz.ActionReadStatusChecks, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	checks, err := uc.checkRepo.ListForProject(ctx, query.ProjectID)
	if err != nil {
		uc.logger.Errorw("failed to list status checks", "error", err)
		return nil, errors.NewInternalError("failed to list status checks")
	}

	dtos := make([]*dto.StatusCheckDTO, len(checks))
	for i, c := range checks {
		dtos[i] = dto.ToStatusCheckDTO(c)
	}
	return dtos, nil
}
