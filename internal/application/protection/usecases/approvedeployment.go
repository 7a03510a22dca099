package usecases

import (
	"context"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/protection/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// ApproveDeploymentCommand records one actor's verdict on a deployment. SHA
// defaults to the deployment head when blank; a stale SHA is a state
// conflict. RepresentedAsGroupID disambiguates which qualifying group the
// approver acts for.
type ApproveDeploymentCommand struct {
	Actor                *membership.Actor
	DeploymentID         uint
	Status               string
	SHA                  string
	Comment              string
	RepresentedAsGroupID uint
}

type ApproveDeploymentExecutor interface {
	Execute(ctx context.Context, cmd ApproveDeploymentCommand) (*dto.DeploymentApprovalDTO, error)
}

type ApproveDeploymentUseCase struct {
	gate           *authz.Gate
	evaluator      *protection.Evaluator
	resourceRepo   resource.Repository
	deploymentRepo protection.DeploymentRepository
	envRepo        protection.EnvironmentRepository
	approvalRepo   protection.DeploymentApprovalRepository
	memberRepo     membership.Repository
	recorder       audit.Recorder
	logger         logger.Interface
}

func NewApproveDeploymentUseCase(
	gate *authz.Gate,
	evaluator *protection.Evaluator,
	resourceRepo resource.Repository,
	deploymentRepo protection.DeploymentRepository,
	envRepo protection.EnvironmentRepository,
	approvalRepo protection.DeploymentApprovalRepository,
	memberRepo membership.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *ApproveDeploymentUseCase {
	return &ApproveDeploymentUseCase{
		gate:           gate,
		evaluator:      evaluator,
		resourceRepo:   resourceRepo,
		deploymentRepo: deploymentRepo,
		envRepo:        envRepo,
		approvalRepo:   approvalRepo,
		memberRepo:     memberRepo,
		recorder:       recorder,
		logger:         logger,
	}
}

func (uc *ApproveDeploymentUseCase) Execute(ctx context.Context, cmd ApproveDeploymentCommand) (*dto.DeploymentApprovalDTO, error) {
	uc.logger.Infow("executing approve deployment use case",
		"deployment_id", cmd.DeploymentID, "status", cmd.Status)

	status := protection.ApprovalStatus(cmd.Status)
	if !status.IsValid() {
		return nil, errors.NewValidationError("invalid approval status").
			WithField("status", "must be approved or rejected")
	}

	deployment, err := uc.deploymentRepo.GetByID(ctx, cmd.DeploymentID)
	if err != nil {
		return nil, err
	}

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindProject, deployment.ProjectID)
	if err != nil {
		return nil, err
	}

	// An unprotected environment has nothing to approve against.
	env, err := uc.envRepo.GetByName(ctx, protection.ScopeProject, deployment.ProjectID, deployment.EnvironmentName)
	if err != nil {
		return nil, err
	}

	var actorGroups []uint
	if cmd.Actor != nil {
		actorGroups, err = uc.memberRepo.GroupIDsForActor(ctx, cmd.Actor.ID())
		if err != nil {
			uc.logger.Errorw("failed to load actor groups", "error", err)
			return nil, errors.NewInternalError("failed to load actor groups")
		}
	}

	sha := cmd.SHA
	if sha == "" {
		sha = deployment.SHA
	}

	// The eligibility check runs inside the gate so it sees the resolved
	// access level and keeps the deny ordering intact.
	var representedAs uint
	check := func(level membership.AccessLevel) protection.Verdict {
		group, err := uc.evaluator.ValidateDeploymentApproval(
			cmd.Actor.ID(), level, actorGroups, env, sha, deployment.SHA, cmd.RepresentedAsGroupID)
		if err != nil {
			return protection.Verdict{Reason: err}
		}
		representedAs = group
		return protection.Verdict{Allowed: true}
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionApproveDeployment, res, check)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	approval, err := protection.NewDeploymentApproval(
		deployment.ID, cmd.Actor.ID(), sha, status, cmd.Comment, representedAs)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	// Duplicate verdicts surface as a conflict from the unique index.
	if err := uc.approvalRepo.Create(ctx, approval); err != nil {
		uc.logger.Errorw("failed to create deployment approval",
			"deployment_id", deployment.ID, "error", err)
		return nil, err
	}

	approvals, err := uc.approvalRepo.ListForDeployment(ctx, deployment.ID)
	if err != nil {
		uc.logger.Errorw("failed to list deployment approvals",
			"deployment_id", deployment.ID, "error", err)
		return nil, errors.NewInternalError("failed to list deployment approvals")
	}
	approvalsLeft := uc.evaluator.ApprovalsLeft(env, approvals, deployment.SHA)

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "approve_deployment",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details: map[string]any{
			"deployment_id": deployment.ID,
			"status":        status.String(),
		},
		CreatedAt: time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("deployment approval recorded",
		"deployment_id", deployment.ID, "status", status, "approvals_left", approvalsLeft)
	return dto.ToDeploymentApprovalDTO(approval, approvalsLeft), nil
}
