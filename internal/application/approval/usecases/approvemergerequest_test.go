package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/approval"
	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

func approvalState(mrID uint, headSHA string, required int, approvals []approval.GrantedApproval) *approval.State {
	rule, _ := approval.NewRule("all members", approval.RuleKindAnyApprover, required, nil, nil, "")
	state, _ := approval.NewState(mrID, headSHA, []*approval.Rule{rule}, approvals)
	return state
}

func TestApproveMergeRequestUseCase_Execute_Success(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	mrRepo := new(mockMergeRequestRepository)
	approvalRepo := new(mockApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	mr := &approval.MergeRequest{ID: 6, ProjectID: 1, HeadSHA: "abc123", State: "opened"}

	mrRepo.On("GetByID", mock.Anything, uint(6)).Return(mr, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(1)).Return(testProject(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).Return(developerGrant(10), nil)
	approvalRepo.On("GetState", mock.Anything, uint(6)).Return(approvalState(6, "abc123", 2, nil), nil)
	approvalRepo.On("SaveState", mock.Anything, mock.AnythingOfType("*approval.State")).Return(nil)
	memberRepo.On("GroupIDsForActor", mock.Anything, uint(10)).Return([]uint{}, nil)
	recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(nil)
	logger.On("Infow", "executing approve merge request use case", mock.Anything).Return()
	logger.On("Infow", "merge request approved", mock.Anything).Return()

	uc := NewApproveMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), ApproveMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Len(t, result.Approvals, 1)
	assert.Equal(t, 1, result.ApprovalsLeft)
	assert.False(t, result.Approved)
	approvalRepo.AssertExpectations(t)
	logger.AssertExpectations(t)
}

func TestApproveMergeRequestUseCase_Execute_StaleSHAConflicts(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	mrRepo := new(mockMergeRequestRepository)
	approvalRepo := new(mockApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	mr := &approval.MergeRequest{ID: 6, ProjectID: 1, HeadSHA: "def456", State: "opened"}

	mrRepo.On("GetByID", mock.Anything, uint(6)).Return(mr, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(1)).Return(testProject(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).Return(developerGrant(10), nil)
	approvalRepo.On("GetState", mock.Anything, uint(6)).Return(approvalState(6, "def456", 2, nil), nil)
	logger.On("Infow", "executing approve merge request use case", mock.Anything).Return()

	uc := NewApproveMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), ApproveMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
		SHA:            "abc123",
	})

	// The head moved since the reviewer looked at the diff.
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsConflictError(err))
	approvalRepo.AssertNotCalled(t, "SaveState")
}

func TestApproveMergeRequestUseCase_Execute_DuplicateApproval(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	mrRepo := new(mockMergeRequestRepository)
	approvalRepo := new(mockApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	mr := &approval.MergeRequest{ID: 6, ProjectID: 1, HeadSHA: "abc123", State: "opened"}
	existing := []approval.GrantedApproval{{ActorID: 10, SHA: "abc123"}}

	mrRepo.On("GetByID", mock.Anything, uint(6)).Return(mr, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(1)).Return(testProject(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).Return(developerGrant(10), nil)
	approvalRepo.On("GetState", mock.Anything, uint(6)).Return(approvalState(6, "abc123", 2, existing), nil)
	logger.On("Infow", "executing approve merge request use case", mock.Anything).Return()

	uc := NewApproveMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), ApproveMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsConflictError(err))
	approvalRepo.AssertNotCalled(t, "SaveState")
}

func TestApproveMergeRequestUseCase_Execute_FeatureNotLicensed(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	mrRepo := new(mockMergeRequestRepository)
	approvalRepo := new(mockApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	mr := &approval.MergeRequest{ID: 6, ProjectID: 1, HeadSHA: "abc123", State: "opened"}

	mrRepo.On("GetByID", mock.Anything, uint(6)).Return(mr, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(1)).Return(testProject(license.PlanFree), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).Return(developerGrant(10), nil)
	logger.On("Infow", "executing approve merge request use case", mock.Anything).Return()

	uc := NewApproveMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), ApproveMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
	})

	// Approval rules are premium: on free the whole surface hides.
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsNotFoundError(err))
	approvalRepo.AssertNotCalled(t, "GetState")
}
