package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/approval"
	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

func TestMergeMergeRequestUseCase_Execute_Success(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	mrRepo := new(mockMergeRequestRepository)
	approvalRepo := new(mockApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	mr := &approval.MergeRequest{ID: 6, ProjectID: 1, HeadSHA: "abc123", State: "opened"}
	satisfied := []approval.GrantedApproval{{ActorID: 20, SHA: "abc123"}}

	mrRepo.On("GetByID", mock.Anything, uint(6)).Return(mr, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(1)).Return(testProject(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).Return(developerGrant(10), nil)
	approvalRepo.On("GetState", mock.Anything, uint(6)).Return(approvalState(6, "abc123", 1, satisfied), nil)
	memberRepo.On("GroupIDsForActor", mock.Anything, uint(20)).Return([]uint{}, nil)
	mrRepo.On("UpdateState", mock.Anything, uint(6), "merged").Return(nil)
	recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(nil)
	logger.On("Infow", "executing merge merge request use case", mock.Anything).Return()
	logger.On("Infow", "merge request merged", mock.Anything).Return()

	uc := NewMergeMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), MergeMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "merged", result.State)
	assert.Equal(t, "abc123", result.SHA)
	mrRepo.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestMergeMergeRequestUseCase_Execute_BlockedByOutstandingApprovals(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	mrRepo := new(mockMergeRequestRepository)
	approvalRepo := new(mockApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	mr := &approval.MergeRequest{ID: 6, ProjectID: 1, HeadSHA: "abc123", State: "opened"}
	partial := []approval.GrantedApproval{{ActorID: 20, SHA: "abc123"}}

	mrRepo.On("GetByID", mock.Anything, uint(6)).Return(mr, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(1)).Return(testProject(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).Return(developerGrant(10), nil)
	approvalRepo.On("GetState", mock.Anything, uint(6)).Return(approvalState(6, "abc123", 2, partial), nil)
	memberRepo.On("GroupIDsForActor", mock.Anything, uint(20)).Return([]uint{}, nil)
	logger.On("Infow", "executing merge merge request use case", mock.Anything).Return()
	logger.On("Warnw", "merge blocked by outstanding approvals", mock.Anything).Return()

	uc := NewMergeMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), MergeMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeWorkflowBlocked, appErr.Type)
	mrRepo.AssertNotCalled(t, "UpdateState")
}

func TestMergeMergeRequestUseCase_Execute_StaleSHAConflicts(t *testing.T) {
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
	logger.On("Infow", "executing merge merge request use case", mock.Anything).Return()

	uc := NewMergeMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), MergeMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
		SHA:            "abc123",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsConflictError(err))
	approvalRepo.AssertNotCalled(t, "GetState")
}

func TestMergeMergeRequestUseCase_Execute_AlreadyMerged(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	mrRepo := new(mockMergeRequestRepository)
	approvalRepo := new(mockApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	mr := &approval.MergeRequest{ID: 6, ProjectID: 1, HeadSHA: "abc123", State: "merged"}

	mrRepo.On("GetByID", mock.Anything, uint(6)).Return(mr, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(1)).Return(testProject(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).Return(developerGrant(10), nil)
	logger.On("Infow", "executing merge merge request use case", mock.Anything).Return()

	uc := NewMergeMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), MergeMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeUnprocessable, appErr.Type)
	approvalRepo.AssertNotCalled(t, "GetState")
	mrRepo.AssertNotCalled(t, "UpdateState")
}

func TestMergeMergeRequestUseCase_Execute_HiddenFromNonMembers(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	mrRepo := new(mockMergeRequestRepository)
	approvalRepo := new(mockApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	// Already merged: the state must not leak to someone who cannot see the
	// project at all.
	mr := &approval.MergeRequest{ID: 6, ProjectID: 1, HeadSHA: "abc123", State: "merged"}

	mrRepo.On("GetByID", mock.Anything, uint(6)).Return(mr, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, mock.Anything, uint(1)).Return(testProject(license.PlanPremium), nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).Return([]*membership.Member{}, nil)
	logger.On("Infow", "executing merge merge request use case", mock.Anything).Return()

	uc := NewMergeMergeRequestUseCase(
		newGate(memberRepo), resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), MergeMergeRequestCommand{
		Actor:          testActor(10),
		MergeRequestID: 6,
	})

	// A non-member of a private project gets 404, never a state-revealing
	// 422 or 403.
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsNotFoundError(err))
	approvalRepo.AssertNotCalled(t, "GetState")
	mrRepo.AssertNotCalled(t, "UpdateState")
}
