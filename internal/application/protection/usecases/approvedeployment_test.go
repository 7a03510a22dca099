package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
)

func productionEnvironment(approverLevel membership.AccessLevel, requiredApprovals int) *protection.ProtectedEnvironment {
	deployEntry, _ := protection.NewRoleEntry(membership.Maintainer)
	approverEntry, _ := protection.NewRoleEntry(approverLevel)
	rule, _ := protection.NewEnvApprovalRule(approverEntry, requiredApprovals)
	now := time.Now()
	env, _ := protection.ReconstructProtectedEnvironment(
		4, "production", protection.ScopeProject, 1,
		[]*protection.AccessEntry{deployEntry},
		[]*protection.EnvApprovalRule{rule},
		0, now, now)
	return env
}

func TestApproveDeploymentUseCase_Execute_Success(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	deploymentRepo := new(mockDeploymentRepository)
	envRepo := new(mockEnvironmentRepository)
	approvalRepo := new(mockDeploymentApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	project := testResource(1, resource.KindProject, resource.VisibilityPrivate, 2, []uint{2}, license.PlanUltimate)
	deployment := &protection.Deployment{ID: 3, ProjectID: 1, EnvironmentName: "production", SHA: "abc123", Status: "blocked"}

	deploymentRepo.On("GetByID", mock.Anything, uint(3)).Return(deployment, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, resource.KindProject, uint(1)).Return(project, nil)
	envRepo.On("GetByName", mock.Anything, protection.ScopeProject, uint(1), "production").
		Return(productionEnvironment(membership.Developer, 2), nil)
	memberRepo.On("GroupIDsForActor", mock.Anything, uint(10)).Return([]uint{}, nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).
		Return([]*membership.Member{activeGrant(7, 10, 1, membership.Developer)}, nil)
	approvalRepo.On("Create", mock.Anything, mock.AnythingOfType("*protection.DeploymentApproval")).Return(nil)
	approvalRepo.On("ListForDeployment", mock.Anything, uint(3)).
		Return([]*protection.DeploymentApproval{
			mustApproval(1, 3, 10, "abc123", protection.ApprovalStatusApproved),
		}, nil)
	recorder.On("Record", mock.Anything, mock.AnythingOfType("audit.Event")).Return(nil)
	logger.On("Infow", "executing approve deployment use case", mock.Anything).Return()
	logger.On("Infow", "deployment approval recorded", mock.Anything).Return()

	uc := NewApproveDeploymentUseCase(
		newGate(memberRepo), protection.NewEvaluator(),
		resourceRepo, deploymentRepo, envRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), ApproveDeploymentCommand{
		Actor:        testActor(10),
		DeploymentID: 3,
		Status:       "approved",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "approved", result.Status)
	// An omitted SHA pins the approval to the deployment head.
	assert.Equal(t, "abc123", result.SHA)
	assert.Equal(t, 1, result.ApprovalsLeft)
	approvalRepo.AssertExpectations(t)
	logger.AssertExpectations(t)
}

func mustApproval(id, deploymentID, approverID uint, sha string, status protection.ApprovalStatus) *protection.DeploymentApproval {
	a, _ := protection.ReconstructDeploymentApproval(id, deploymentID, approverID, sha, status, "", 0, time.Now())
	return a
}

func TestApproveDeploymentUseCase_Execute_StaleSHAConflicts(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	deploymentRepo := new(mockDeploymentRepository)
	envRepo := new(mockEnvironmentRepository)
	approvalRepo := new(mockDeploymentApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	project := testResource(1, resource.KindProject, resource.VisibilityPrivate, 2, []uint{2}, license.PlanUltimate)
	deployment := &protection.Deployment{ID: 3, ProjectID: 1, EnvironmentName: "production", SHA: "abc123", Status: "blocked"}

	deploymentRepo.On("GetByID", mock.Anything, uint(3)).Return(deployment, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, resource.KindProject, uint(1)).Return(project, nil)
	envRepo.On("GetByName", mock.Anything, protection.ScopeProject, uint(1), "production").
		Return(productionEnvironment(membership.Developer, 2), nil)
	memberRepo.On("GroupIDsForActor", mock.Anything, uint(10)).Return([]uint{}, nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).
		Return([]*membership.Member{activeGrant(7, 10, 1, membership.Developer)}, nil)
	logger.On("Infow", "executing approve deployment use case", mock.Anything).Return()

	uc := NewApproveDeploymentUseCase(
		newGate(memberRepo), protection.NewEvaluator(),
		resourceRepo, deploymentRepo, envRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), ApproveDeploymentCommand{
		Actor:        testActor(10),
		DeploymentID: 3,
		Status:       "approved",
		SHA:          "stale999",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsConflictError(err))
	approvalRepo.AssertNotCalled(t, "Create")
}

func TestApproveDeploymentUseCase_Execute_IneligibleApprover(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	deploymentRepo := new(mockDeploymentRepository)
	envRepo := new(mockEnvironmentRepository)
	approvalRepo := new(mockDeploymentApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	project := testResource(1, resource.KindProject, resource.VisibilityPrivate, 2, []uint{2}, license.PlanUltimate)
	deployment := &protection.Deployment{ID: 3, ProjectID: 1, EnvironmentName: "production", SHA: "abc123", Status: "blocked"}

	deploymentRepo.On("GetByID", mock.Anything, uint(3)).Return(deployment, nil)
	resourceRepo.On("GetByKindAndID", mock.Anything, resource.KindProject, uint(1)).Return(project, nil)
	// Only maintainers qualify as approvers here.
	envRepo.On("GetByName", mock.Anything, protection.ScopeProject, uint(1), "production").
		Return(productionEnvironment(membership.Maintainer, 1), nil)
	memberRepo.On("GroupIDsForActor", mock.Anything, uint(10)).Return([]uint{}, nil)
	memberRepo.On("GetByActorAndResources", mock.Anything, uint(10), []uint{1, 2}).
		Return([]*membership.Member{activeGrant(7, 10, 1, membership.Developer)}, nil)
	logger.On("Infow", "executing approve deployment use case", mock.Anything).Return()

	uc := NewApproveDeploymentUseCase(
		newGate(memberRepo), protection.NewEvaluator(),
		resourceRepo, deploymentRepo, envRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), ApproveDeploymentCommand{
		Actor:        testActor(10),
		DeploymentID: 3,
		Status:       "approved",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	appErr, ok := err.(*errors.AppError)
	assert.True(t, ok)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)
}

func TestApproveDeploymentUseCase_Execute_InvalidStatus(t *testing.T) {
	resourceRepo := new(mockResourceRepository)
	memberRepo := new(mockMemberRepository)
	deploymentRepo := new(mockDeploymentRepository)
	envRepo := new(mockEnvironmentRepository)
	approvalRepo := new(mockDeploymentApprovalRepository)
	recorder := new(mockRecorder)
	logger := new(mockLogger)

	logger.On("Infow", "executing approve deployment use case", mock.Anything).Return()

	uc := NewApproveDeploymentUseCase(
		newGate(memberRepo), protection.NewEvaluator(),
		resourceRepo, deploymentRepo, envRepo, approvalRepo, memberRepo, recorder, logger)

	result, err := uc.Execute(context.Background(), ApproveDeploymentCommand{
		Actor:        testActor(10),
		DeploymentID: 3,
		Status:       "maybe",
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.IsValidationError(err))
	deploymentRepo.AssertNotCalled(t, "GetByID")
}
