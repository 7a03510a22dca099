package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/utils"
)

func TestListAuditEventsUseCase_Execute_Success(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	reader := new(mockReader)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "owner", false)
	events := []audit.Event{
		{ActorID: 10, Action: "add_member", ResourceKind: "group", ResourceID: 2, CreatedAt: time.Now()},
	}

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(testGroup(license.PlanUltimate), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return(grant(10, membership.Owner), nil)
	reader.On("ListForResource", mock.Anything, "group", uint(2), audit.AuthorFilter{}, uint(0), 0, 20, false).
		Return(events, int64(1), nil)

	uc := NewListAuditEventsUseCase(newGate(memberRepo), resourceRepo, reader, logger)

	result, err := uc.Execute(context.Background(), ListAuditEventsQuery{
		Actor:      actor,
		ResourceID: 2,
		Pagination: utils.Pagination{Page: 1, PageSize: 20},
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int64(1), result.Total)
	assert.Len(t, result.Events, 1)
	assert.Equal(t, "add_member", result.Events[0].Action)
	reader.AssertExpectations(t)
}

func TestListAuditEventsUseCase_Execute_AuthorFilterLiterals(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	reader := new(mockReader)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "owner", false)

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(testGroup(license.PlanUltimate), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return(grant(10, membership.Owner), nil)

	tests := []struct {
		name   string
		filter utils.IDFilter
		want   audit.AuthorFilter
	}{
		{"none literal keeps system events", utils.IDFilter{Kind: utils.IDFilterNone}, audit.AuthorFilter{Kind: audit.AuthorFilterNone}},
		{"any literal keeps user events", utils.IDFilter{Kind: utils.IDFilterAny}, audit.AuthorFilter{Kind: audit.AuthorFilterAny}},
		{"id narrows to one user", utils.IDFilter{Kind: utils.IDFilterID, ID: 42}, audit.AuthorFilter{Kind: audit.AuthorFilterID, ID: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader.On("ListForResource", mock.Anything, "group", uint(2), tt.want, uint(0), 0, 20, false).
				Return([]audit.Event{}, int64(0), nil).Once()

			uc := NewListAuditEventsUseCase(newGate(memberRepo), resourceRepo, reader, logger)

			result, err := uc.Execute(context.Background(), ListAuditEventsQuery{
				Actor:      actor,
				ResourceID: 2,
				Author:     tt.filter,
				Pagination: utils.Pagination{Page: 1, PageSize: 20},
			})

			assert.NoError(t, err)
			assert.NotNil(t, result)
		})
	}
	reader.AssertExpectations(t)
}

func TestListAuditEventsUseCase_Execute_KeysetCursor(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	reader := new(mockReader)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "owner", false)

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(testGroup(license.PlanUltimate), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return(grant(10, membership.Owner), nil)
	reader.On("ListForResource", mock.Anything, "group", uint(2), audit.AuthorFilter{}, uint(500), 0, 20, false).
		Return([]audit.Event{}, int64(0), nil)

	uc := NewListAuditEventsUseCase(newGate(memberRepo), resourceRepo, reader, logger)

	_, err := uc.Execute(context.Background(), ListAuditEventsQuery{
		Actor:      actor,
		ResourceID: 2,
		Pagination: utils.Pagination{Page: 1, PageSize: 20, IDAfter: 500},
	})

	assert.NoError(t, err)
	reader.AssertExpectations(t)
}

func TestListAuditEventsUseCase_Execute_FeatureForbidsNotHides(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	reader := new(mockReader)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "owner", false)

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(testGroup(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return(grant(10, membership.Owner), nil)

	uc := NewListAuditEventsUseCase(newGate(memberRepo), resourceRepo, reader, logger)

	result, err := uc.Execute(context.Background(), ListAuditEventsQuery{
		Actor:      actor,
		ResourceID: 2,
		Pagination: utils.Pagination{Page: 1, PageSize: 20},
	})

	// Below ultimate, members learn the endpoint exists but not its
	// contents.
	assert.Error(t, err)
	assert.Nil(t, result)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)
	reader.AssertNotCalled(t, "ListForResource")
}

func TestListAuditEventsUseCase_Execute_RequiresOwner(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	reader := new(mockReader)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "dev", false)

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(testGroup(license.PlanUltimate), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return(grant(10, membership.Maintainer), nil)

	uc := NewListAuditEventsUseCase(newGate(memberRepo), resourceRepo, reader, logger)

	result, err := uc.Execute(context.Background(), ListAuditEventsQuery{
		Actor:      actor,
		ResourceID: 2,
		Pagination: utils.Pagination{Page: 1, PageSize: 20},
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)
}
