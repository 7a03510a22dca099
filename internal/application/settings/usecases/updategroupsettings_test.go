package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/settings"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

func existingSetting(groupID uint, level settings.BranchProtectionLevel) *settings.GroupSetting {
	s, _ := settings.ReconstructGroupSetting(1, groupID, level, time.Now())
	return s
}

func TestUpdateGroupSettingsUseCase_Execute_AppliesRequestedLevelWhenLicensed(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	settingRepo := new(mockSettingRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "owner", false)

	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(2)).Return(testGroup(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).Return(ownerGrant(10), nil)
	settingRepo.On("GetByGroup", mock.Anything, uint(2)).Return(existingSetting(2, settings.ProtectionFull), nil)
	settingRepo.On("Save", mock.Anything, mock.AnythingOfType("*settings.GroupSetting")).Return(nil)
	recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(nil)
	logger.On("Infow", "executing update group settings use case", mock.Anything).Return()
	logger.On("Infow", "group settings updated", mock.Anything).Return()

	uc := NewUpdateGroupSettingsUseCase(newGate(memberRepo), resourceRepo, settingRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), UpdateGroupSettingsCommand{
		Actor:                   actor,
		GroupID:                 2,
		DefaultBranchProtection: int(settings.ProtectionPartial),
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int(settings.ProtectionPartial), result.DefaultBranchProtection)
	settingRepo.AssertExpectations(t)
	logger.AssertExpectations(t)
}

func TestUpdateGroupSettingsUseCase_Execute_CoercesToFullWithoutLicense(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	settingRepo := new(mockSettingRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "owner", false)

	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(2)).Return(testGroup(license.PlanFree), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{2}).Return(ownerGrant(10), nil)
	settingRepo.On("GetByGroup", mock.Anything, uint(2)).Return(existingSetting(2, settings.ProtectionFull), nil)
	settingRepo.On("Save", mock.Anything, mock.AnythingOfType("*settings.GroupSetting")).Return(nil)
	recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(nil)
	logger.On("Infow", "executing update group settings use case", mock.Anything).Return()
	logger.On("Infow", "branch protection level coerced to full", mock.Anything).Return()
	logger.On("Infow", "group settings updated", mock.Anything).Return()

	uc := NewUpdateGroupSettingsUseCase(newGate(memberRepo), resourceRepo, settingRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), UpdateGroupSettingsCommand{
		Actor:                   actor,
		GroupID:                 2,
		DefaultBranchProtection: int(settings.ProtectionNone),
	})

	// The unlicensed restriction feature drops the requested level silently
	// instead of rejecting the request.
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int(settings.ProtectionFull), result.DefaultBranchProtection)
	logger.AssertExpectations(t)
}

func TestUpdateGroupSettingsUseCase_Execute_AdminBypassesCoercion(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	settingRepo := new(mockSettingRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	admin, _ := membership.NewActor(1, "root", true)

	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(2)).Return(testGroup(license.PlanFree), nil)
	settingRepo.On("GetByGroup", mock.Anything, uint(2)).Return(nil, errors.NewNotFoundError("group settings not found"))
	settingRepo.On("Save", mock.Anything, mock.AnythingOfType("*settings.GroupSetting")).Return(nil)
	recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(nil)
	logger.On("Infow", "executing update group settings use case", mock.Anything).Return()
	logger.On("Infow", "group settings updated", mock.Anything).Return()

	uc := NewUpdateGroupSettingsUseCase(newGate(memberRepo), resourceRepo, settingRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), UpdateGroupSettingsCommand{
		Actor:                   admin,
		GroupID:                 2,
		DefaultBranchProtection: int(settings.ProtectionNone),
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int(settings.ProtectionNone), result.DefaultBranchProtection)
	logger.AssertExpectations(t)
}

func TestUpdateGroupSettingsUseCase_Execute_InvalidLevel(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	settingRepo := new(mockSettingRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	actor, _ := membership.NewActor(10, "owner", false)
	logger.On("Infow", "executing update group settings use case", mock.Anything).Return()

	uc := NewUpdateGroupSettingsUseCase(newGate(memberRepo), resourceRepo, settingRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), UpdateGroupSettingsCommand{
		Actor:                   actor,
		GroupID:                 2,
		DefaultBranchProtection: 7,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsValidationError(err))
	settingRepo.AssertNotCalled(t, "Save")
}
