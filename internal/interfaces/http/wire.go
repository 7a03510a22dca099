package http

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	apprusecases "github.com/forgegate-inc/forgegate/internal/application/approval/usecases"
	auditusecases "github.com/forgegate-inc/forgegate/internal/application/audit/usecases"
	memusecases "github.com/forgegate-inc/forgegate/internal/application/membership/usecases"
	protusecases "github.com/forgegate-inc/forgegate/internal/application/protection/usecases"
	setusecases "github.com/forgegate-inc/forgegate/internal/application/settings/usecases"
	tokusecases "github.com/forgegate-inc/forgegate/internal/application/token/usecases"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/domain/token"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/auth"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/config"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/jobs"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/licensing"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/permission"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/repository"
	"github.com/forgegate-inc/forgegate/internal/interfaces/http/handlers"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// handlerSet is every handler the router registers.
type handlerSet struct {
	branches     *handlers.ProtectedBranchHandler
	environments *handlers.ProtectedEnvironmentHandler
	deployments  *handlers.DeploymentApprovalHandler
	checks       *handlers.StatusCheckHandler
	members      *handlers.MemberHandler
	roles        *handlers.MemberRoleHandler
	approvals    *handlers.ApprovalHandler
	settings     *handlers.GroupSettingHandler
	tokens       *handlers.TokenHandler
	audits       *handlers.AuditEventHandler
}

// buildHandlers wires repositories, the gate, and use cases into handlers.
func buildHandlers(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*handlerSet, error) {
	resourceRepo := repository.NewResourceRepository(db, log)
	memberRepo := repository.NewMemberRepository(db, log)
	roleRepo := repository.NewMemberRoleRepository(db, log)
	branchRepo := repository.NewProtectedBranchRepository(db, log)
	envRepo := repository.NewProtectedEnvironmentRepository(db, log)
	deploymentRepo := repository.NewDeploymentRepository(db, log)
	depApprovalRepo := repository.NewDeploymentApprovalRepository(db, log)
	checkRepo := repository.NewStatusCheckRepository(db, log)
	approvalRepo := repository.NewApprovalRepository(db, log)
	mrRepo := repository.NewMergeRequestRepository(db, log)
	tokenRepo := repository.NewAccessTokenRepository(db, log)
	settingRepo := repository.NewGroupSettingRepository(db, log)
	auditRepo := repository.NewAuditEventRepository(db, log)

	registry := license.NewRegistry()
	// An operator-supplied plan table replaces the built-in one wholesale.
	if cfg.License.PlanTablePath != "" {
		table, err := licensing.LoadPlanTable(cfg.License.PlanTablePath)
		if err != nil {
			return nil, err
		}
		registry = license.NewRegistryWithTable(table)
	}
	resolver := membership.NewResolver(memberRepo, registry)
	gate := authz.NewGate(resolver, registry)
	evaluator := protection.NewEvaluator()

	enforcer, err := permission.NewEnforcer(db, cfg.Permission.ModelPath, log)
	if err != nil {
		return nil, err
	}

	// Audit events leave the request path through the Redis queue; the worker
	// binary persists them.
	queue := jobs.NewQueue(redisClient, "forgegate", 24*time.Hour, log)
	recorder := jobs.NewQueueRecorder(queue, log)

	hasher := auth.NewBcryptTokenHasher(cfg.Auth.BcryptCost)
	secrets := token.SecretSource(auth.NewAccessTokenSecret)

	branches := handlers.NewProtectedBranchHandler(
		protusecases.NewProtectBranchUseCase(gate, resourceRepo, branchRepo, recorder, log),
		protusecases.NewUpdateProtectedBranchUseCase(gate, resourceRepo, branchRepo, recorder, log),
		protusecases.NewUnprotectBranchUseCase(gate, resourceRepo, branchRepo, recorder, log),
		protusecases.NewListProtectedBranchesUseCase(gate, resourceRepo, branchRepo, log),
	)

	environments := handlers.NewProtectedEnvironmentHandler(
		protusecases.NewProtectEnvironmentUseCase(gate, resourceRepo, envRepo, recorder, log),
		protusecases.NewUpdateProtectedEnvironmentUseCase(gate, resourceRepo, envRepo, recorder, log),
		protusecases.NewUnprotectEnvironmentUseCase(gate, resourceRepo, envRepo, recorder, log),
		protusecases.NewListProtectedEnvironmentsUseCase(gate, resourceRepo, envRepo, log),
	)

	deployments := handlers.NewDeploymentApprovalHandler(
		protusecases.NewApproveDeploymentUseCase(
			gate, evaluator, resourceRepo, deploymentRepo, envRepo, depApprovalRepo, memberRepo, recorder, log),
	)

	checks := handlers.NewStatusCheckHandler(
		protusecases.NewCreateStatusCheckUseCase(gate, resourceRepo, checkRepo, recorder, log),
		protusecases.NewListStatusChecksUseCase(gate, resourceRepo, checkRepo, log),
		protusecases.NewRetryStatusCheckUseCase(gate, resourceRepo, checkRepo, recorder, log),
	)

	members := handlers.NewMemberHandler(
		memusecases.NewAddMemberUseCase(gate, resolver, resourceRepo, memberRepo, roleRepo, recorder, log),
		memusecases.NewUpdateMemberLevelUseCase(gate, resourceRepo, memberRepo, recorder, log),
		memusecases.NewApproveMemberUseCase(gate, resourceRepo, memberRepo, recorder, log),
		memusecases.NewApproveAllPendingUseCase(gate, resourceRepo, memberRepo, recorder, log),
		memusecases.NewListPendingMembersUseCase(gate, resourceRepo, memberRepo, log),
	)

	roles := handlers.NewMemberRoleHandler(
		memusecases.NewCreateMemberRoleUseCase(gate, resourceRepo, roleRepo, enforcer, recorder, log),
		memusecases.NewDeleteMemberRoleUseCase(gate, resourceRepo, roleRepo, enforcer, recorder, log),
		memusecases.NewListMemberRolesUseCase(gate, resourceRepo, roleRepo, enforcer, log),
	)

	approvals := handlers.NewApprovalHandler(
		apprusecases.NewApproveMergeRequestUseCase(gate, resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, log),
		apprusecases.NewUnapproveMergeRequestUseCase(gate, resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, log),
		apprusecases.NewGetApprovalStateUseCase(gate, resourceRepo, mrRepo, approvalRepo, memberRepo, log),
		apprusecases.NewFinalizeMergeRequestRulesUseCase(gate, resourceRepo, mrRepo, approvalRepo, log),
		apprusecases.NewCreateProjectRuleUseCase(gate, resourceRepo, approvalRepo, recorder, log),
		apprusecases.NewMergeMergeRequestUseCase(gate, resourceRepo, mrRepo, approvalRepo, memberRepo, recorder, log),
	)

	settings := handlers.NewGroupSettingHandler(
		setusecases.NewGetGroupSettingsUseCase(gate, resourceRepo, settingRepo, log),
		setusecases.NewUpdateGroupSettingsUseCase(gate, resourceRepo, settingRepo, recorder, log),
	)

	tokens := handlers.NewTokenHandler(
		tokusecases.NewCreateTokenUseCase(tokenRepo, hasher, secrets, recorder, log),
		tokusecases.NewRotateTokenUseCase(tokenRepo, hasher, secrets, recorder, log),
	)

	audits := handlers.NewAuditEventHandler(
		auditusecases.NewListAuditEventsUseCase(gate, resourceRepo, auditRepo, log),
	)

	return &handlerSet{
		branches:     branches,
		environments: environments,
		deployments:  deployments,
		checks:       checks,
		members:      members,
		roles:        roles,
		approvals:    approvals,
		settings:     settings,
		tokens:       tokens,
		audits:       audits,
	}, nil
}
