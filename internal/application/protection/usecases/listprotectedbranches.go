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

type ListProtectedBranchesQuery struct {
	Actor      *membership.Actor
	Scope      protection.ScopeKind
	ScopeID    uint
	Pagination utils.Pagination
}

type ListProtectedBranchesResult struct {
	Branches []*dto.ProtectedBranchDTO
	Total    int64
}

type ListProtectedBranchesExecutor interface {
	Execute(ctx context.Context, query ListProtectedBranchesQuery) (*ListProtectedBranchesResult, error)
}

type ListProtectedBranchesUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	branchRepo   protection.BranchRepository
	logger       logger.Interface
}

func NewListProtectedBranchesUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	branchRepo protection.BranchRepository,
	logger logger.Interface,
) *ListProtectedBranchesUseCase {
	return &ListProtectedBranchesUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		branchRepo:   branchRepo,
		logger:       logger,
	}
}

func (uc *ListProtectedBranchesUseCase) Execute(ctx context.Context, query ListProtectedBranchesQuery) (*ListProtectedBranchesResult, error) {
	res, err := scopeResource(ctx, uc.resourceRepo, query.Scope, query.ScopeID)
	if err != nil {
		return nil, err
	}

	action := branchAction(query.Scope, authz.ActionReadProtectedBranches, authz.ActionReadGroupProtectedBranches)
	decision, err := uc.gate.Authorize(ctx, query.Actor, action, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	offset := (query.Pagination.Page - 1) * query.Pagination.PageSize
	limit := query.Pagination.PageSize

	var branches []*protection.ProtectedBranch
	var total int64
	if query.Scope == protection.ScopeProject {
		branches, total, err = uc.branchRepo.ListForProject(ctx, query.ScopeID, groupAncestors(res), offset, limit, query.Pagination.SortAsc)
	} else {
		branches, total, err = uc.branchRepo.ListForGroup(ctx, query.ScopeID, offset, limit, query.Pagination.SortAsc)
	}
	if err != nil {
		uc.logger.Errorw("failed to list protected branches", "error", err)
		return nil, errors.NewInternalError("failed to list protected branches")
	}

	// Project listings mark rules inherited from ancestor groups; the group's
	// own endpoint suppresses the flag entirely.
	withInherited := query.Scope == protection.ScopeProject
	dtos := make([]*dto.ProtectedBranchDTO, len(branches))
	for i, b := range branches {
		inherited := withInherited && b.Scope() == protection.ScopeGroup
		dtos[i] = dto.ToProtectedBranchDTO(b, withInherited, inherited)
	}

	return &ListProtectedBranchesResult{Branches: dtos, Total: total}, nil
}

// groupAncestors returns the ancestor chain for group-rule inheritance.
// Every ancestor of a project is a group, so the chain passes through as is.
func groupAncestors(res *resource.Resource) []uint {
	return res.AncestorIDs()
}
