package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

func TestAddMemberUseCase_Execute_Success(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	roleRepo := new(mockMemberRoleRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	group := testResource(2, resource.KindGroup, resource.VisibilityPrivate, 0, nil, license.PlanPremium)

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(group, nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return([]*membership.Member{reconstructGrant(7, 10, 2, membership.Owner, membership.StateActive)}, nil)
	memberRepo.On("Create", mock.Anything, mock.AnythingOfType("*membership.Member")).Return(nil)
	recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(nil)
	logger.On("Infow", "executing add member use case", mock.Anything).Return()
	logger.On("Infow", "member added", mock.Anything).Return()

	gate, resolver := newGateAndResolver(memberRepo)
	uc := NewAddMemberUseCase(gate, resolver, resourceRepo, memberRepo, roleRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), AddMemberCommand{
		Actor:       testActor(10),
		ResourceID:  2,
		UserID:      42,
		AccessLevel: int(membership.Developer),
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, uint(42), result.UserID)
	assert.Equal(t, int(membership.Developer), result.AccessLevel)
	assert.Equal(t, string(membership.StateActive), result.State)
	memberRepo.AssertExpectations(t)
	logger.AssertExpectations(t)
}

func TestAddMemberUseCase_Execute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  AddMemberCommand
	}{
		{
			name: "missing user id",
			cmd: AddMemberCommand{
				Actor:       testActor(10),
				ResourceID:  2,
				AccessLevel: int(membership.Developer),
			},
		},
		{
			name: "invalid access level",
			cmd: AddMemberCommand{
				Actor:       testActor(10),
				ResourceID:  2,
				UserID:      42,
				AccessLevel: 33,
			},
		},
		{
			name: "no access level",
			cmd: AddMemberCommand{
				Actor:      testActor(10),
				ResourceID: 2,
				UserID:     42,
			},
		},
		{
			name: "invalid source",
			cmd: AddMemberCommand{
				Actor:       testActor(10),
				ResourceID:  2,
				UserID:      42,
				AccessLevel: int(membership.Developer),
				Source:      "import",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resourceRepo := new(mockResourceRepository)
			memberRepo := new(mockMemberRepository)
			roleRepo := new(mockMemberRoleRepository)
			recorder := new(mockRecorder)
			logger := new(mockLogger)
			logger.On("Infow", "executing add member use case", mock.Anything).Return()

			gate, resolver := newGateAndResolver(memberRepo)
			uc := NewAddMemberUseCase(gate, resolver, resourceRepo, memberRepo, roleRepo, recorder, logger)

			result, err := uc.Execute(context.Background(), tt.cmd)

			assert.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.IsValidationError(err))
			resourceRepo.AssertNotCalled(t, "GetByID")
		})
	}
}

func TestAddMemberUseCase_Execute_SeatLimitOnFreeTier(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	roleRepo := new(mockMemberRoleRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	group := testResource(2, resource.KindGroup, resource.VisibilityPrivate, 0, nil, license.PlanFree)

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(group, nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return([]*membership.Member{reconstructGrant(7, 10, 2, membership.Owner, membership.StateActive)}, nil)
	memberRepo.On("CountBillable", mock.Anything, uint(2)).Return(int64(5), nil)
	logger.On("Infow", "executing add member use case", mock.Anything).Return()

	gate, resolver := newGateAndResolver(memberRepo)
	uc := NewAddMemberUseCase(gate, resolver, resourceRepo, memberRepo, roleRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), AddMemberCommand{
		Actor:       testActor(10),
		ResourceID:  2,
		UserID:      42,
		AccessLevel: int(membership.Developer),
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsValidationError(err))
	memberRepo.AssertNotCalled(t, "Create")
}

func TestAddMemberUseCase_Execute_MinimalAccessOnProject(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	roleRepo := new(mockMemberRoleRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	project := testResource(1, resource.KindProject, resource.VisibilityPrivate, 2, []uint{2}, license.PlanPremium)

	resourceRepo.On("GetByID", mock.Anything, uint(1)).Return(project, nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).
		Return([]*membership.Member{reconstructGrant(7, 10, 2, membership.Owner, membership.StateActive)}, nil)
	logger.On("Infow", "executing add member use case", mock.Anything).Return()

	gate, resolver := newGateAndResolver(memberRepo)
	uc := NewAddMemberUseCase(gate, resolver, resourceRepo, memberRepo, roleRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), AddMemberCommand{
		Actor:       testActor(10),
		ResourceID:  1,
		UserID:      42,
		AccessLevel: int(membership.MinimalAccess),
	})

	// Minimal access only exists on top-level groups.
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsValidationError(err))
	memberRepo.AssertNotCalled(t, "Create")
}

func TestAddMemberUseCase_Execute_MinimalAccessNotLicensed(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	roleRepo := new(mockMemberRoleRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	group := testResource(2, resource.KindGroup, resource.VisibilityPrivate, 0, nil, license.PlanFree)

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(group, nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return([]*membership.Member{reconstructGrant(7, 10, 2, membership.Owner, membership.StateActive)}, nil)
	logger.On("Infow", "executing add member use case", mock.Anything).Return()

	gate, resolver := newGateAndResolver(memberRepo)
	uc := NewAddMemberUseCase(gate, resolver, resourceRepo, memberRepo, roleRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), AddMemberCommand{
		Actor:       testActor(10),
		ResourceID:  2,
		UserID:      42,
		AccessLevel: int(membership.MinimalAccess),
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)
}

func TestAddMemberUseCase_Execute_CrossNamespaceRole(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	roleRepo := new(mockMemberRoleRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	group := testResource(2, resource.KindGroup, resource.VisibilityPrivate, 0, nil, license.PlanPremium)
	foreignRole, _ := membership.ReconstructMemberRole(9, 77, "incident-manager", membership.Developer, time.Now())

	resourceRepo.On("GetByID", mock.Anything, uint(2)).Return(group, nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).
		Return([]*membership.Member{reconstructGrant(7, 10, 2, membership.Owner, membership.StateActive)}, nil)
	roleRepo.On("GetByID", mock.Anything, uint(9)).Return(foreignRole, nil)
	logger.On("Infow", "executing add member use case", mock.Anything).Return()

	gate, resolver := newGateAndResolver(memberRepo)
	uc := NewAddMemberUseCase(gate, resolver, resourceRepo, memberRepo, roleRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), AddMemberCommand{
		Actor:        testActor(10),
		ResourceID:   2,
		UserID:       42,
		AccessLevel:  int(membership.Developer),
		MemberRoleID: 9,
	})

	// A custom role from another namespace never attaches.
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsValidationError(err))
	memberRepo.AssertNotCalled(t, "Create")
}
