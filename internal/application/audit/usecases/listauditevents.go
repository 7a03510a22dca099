package usecases

import (
	"context"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

type ListAuditEventsQuery struct {
	Actor      *membership.Actor
	ResourceID uint
	Author     utils.IDFilter
	Pagination utils.Pagination
}

// authorFilter maps the parsed query literal onto the domain filter.
func authorFilter(f utils.IDFilter) audit.AuthorFilter {
	switch f.Kind {
	case utils.IDFilterNone:
		return audit.AuthorFilter{Kind: audit.AuthorFilterNone}
	case utils.IDFilterAny:
		return audit.AuthorFilter{Kind: audit.AuthorFilterAny}
	case utils.IDFilterID:
		return audit.AuthorFilter{Kind: audit.AuthorFilterID, ID: f.ID}
	default:
		return audit.AuthorFilter{}
	}
}

type ListAuditEventsResult struct {
	Events []audit.Event
	Total  int64
}

type ListAuditEventsExecutor interface {
	Execute(ctx context.Context, query ListAuditEventsQuery) (*ListAuditEventsResult, error)
}

type ListAuditEventsUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	reader       audit.Reader
	logger       logger.Interface
}

func NewListAuditEventsUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	reader audit.Reader,
	logger logger.Interface,
) *ListAuditEventsUseCase {
	return &ListAuditEventsUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		reader:       reader,
		logger:       logger,
	}
}

func (uc *ListAuditEventsUseCase) Execute(ctx context.Context, query ListAuditEventsQuery) (*ListAuditEventsResult, error) {
	res, err := uc.resourceRepo.GetByID(ctx, query.ResourceID)
	if err != nil {
		return nil, err
	}

	// Audit events are owner-only and the feature forbids rather than hides:
	// an unlicensed caller learns the endpoint exists but not its contents.
	decision, err := uc.gate.Authorize(ctx, query.Actor, authz.ActionReadAuditEvents, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	offset := (query.Pagination.Page - 1) * query.Pagination.PageSize
	events, total, err := uc.reader.ListForResource(ctx,
		res.Kind().String(), res.ID(), authorFilter(query.Author), query.Pagination.IDAfter,
		offset, query.Pagination.PageSize, query.Pagination.SortAsc)
	if err != nil {
		uc.logger.Errorw("failed to list audit events", "error", err)
		return nil, errors.NewInternalError("failed to list audit events")
	}

	return &ListAuditEventsResult{Events: events, Total: total}, nil
}
