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
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

type ListPendingMembersQuery struct {
	Actor      *membership.Actor
	ResourceID uint
	Pagination utils.Pagination
}

type ListPendingMembersResult struct {
	Members []*dto.MemberDTO
	Total   int64
}

type ListPendingMembersExecutor interface {
	Execute(ctx context.Context, query ListPendingMembersQuery) (*ListPendingMembersResult, error)
}

type ListPendingMembersUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	memberRepo   membership.Repository
	logger       logger.Interface
}

func NewListPendingMembersUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	memberRepo membership.Repository,
	logger logger.Interface,
) *ListPendingMembersUseCase {
	return &ListPendingMembersUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		memberRepo:   memberRepo,
		logger:       logger,
	}
}

func (uc *ListPendingMembersUseCase) Execute(ctx context.Context, query ListPendingMembersQuery) (*ListPendingMembersResult, error) {
	res, err := uc.resourceRepo.GetByID(ctx, query.ResourceID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, query.Actor, authz.ActionReadPendingMembers, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	offset := (query.Pagination.Page - 1) * query.Pagination.PageSize
	members, total, err := uc.memberRepo.ListPending(ctx, query.ResourceID, offset, query.Pagination.PageSize)
	if err != nil {
		uc.logger.Errorw("failed to list pending members", "error", err)
		return nil, errors.NewInternalError("failed to list pending members")
	}

	return &ListPendingMembersResult{
		Members: dto.ToMemberDTOs(members),
		Total:   total,
	}, nil
}
