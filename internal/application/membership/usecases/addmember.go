package usecases

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/membership/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/constants"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// AddMemberCommand grants a user an access level on a group or project.
type AddMemberCommand struct {
	Actor        *membership.Actor
	ResourceID   uint
	UserID       uint
	AccessLevel  int
	MemberRoleID uint
	Source       string
}

type AddMemberExecutor interface {
	Execute(ctx context.Context, cmd AddMemberCommand) (*dto.MemberDTO, error)
}

type AddMemberUseCase struct {
	gate           *authz.Gate
	resolver       *membership.Resolver
	resourceRepo   resource.Repository
	memberRepo     membership.Repository
	memberRoleRepo membership.MemberRoleRepository
	recorder       audit.Recorder
	logger         logger.Interface
}

func NewAddMemberUseCase(
	gate *authz.Gate,
	resolver *membership.Resolver,
	resourceRepo resource.Repository,
	memberRepo membership.Repository,
	memberRoleRepo membership.MemberRoleRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *AddMemberUseCase {
	return &AddMemberUseCase{
		gate:           gate,
		resolver:       resolver,
		resourceRepo:   resourceRepo,
		memberRepo:     memberRepo,
		memberRoleRepo: memberRoleRepo,
		recorder:       recorder,
		logger:         logger,
	}
}

// rootNamespaceID returns the top of the resource's ancestor chain, the
// namespace seat counting runs against.
func rootNamespaceID(res *resource.Resource) uint {
	chain := res.SelfAndAncestorIDs()
	return chain[len(chain)-1]
}

func (uc *AddMemberUseCase) Execute(ctx context.Context, cmd AddMemberCommand) (*dto.MemberDTO, error) {
	uc.logger.Infow("executing add member use case",
		"resource_id", cmd.ResourceID, "user_id", cmd.UserID, "access_level", cmd.AccessLevel)

	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required").
			WithField("user_id", "can't be blank")
	}
	level, ok := membership.ParseAccessLevel(cmd.AccessLevel)
	if !ok || level == membership.NoAccess {
		return nil, errors.NewValidationError("invalid access level").
			WithField("access_level", "is not a valid access level")
	}
	source := membership.SourceDirect
	if cmd.Source != "" {
		source = membership.Source(cmd.Source)
		if !source.IsValid() {
			return nil, errors.NewValidationError("invalid member source").
				WithField("source", "is not a valid source")
		}
	}

	res, err := uc.resourceRepo.GetByID(ctx, cmd.ResourceID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionAddMember, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	// Minimal access is only assignable on licensed top-level groups.
	if level == membership.MinimalAccess {
		if err := uc.resolver.ValidateMinimalAccessGrant(res); err != nil {
			if goerrors.Is(err, membership.ErrMinimalAccessScope) {
				return nil, errors.NewValidationError(err.Error())
			}
			return nil, errors.NewForbiddenError(err.Error())
		}
	}

	// Free-tier namespaces stop taking billable members at the seat cap.
	if res.Licensing() != nil && res.Licensing().Plan() == license.PlanFree {
		namespaceID := rootNamespaceID(res)
		count, err := uc.memberRepo.CountBillable(ctx, namespaceID)
		if err != nil {
			uc.logger.Errorw("failed to count billable members", "namespace_id", namespaceID, "error", err)
			return nil, errors.NewInternalError("failed to count billable members")
		}
		if count >= int64(constants.FreeTierSeatLimit) {
			return nil, errors.NewValidationError(
				membership.ErrSeatLimitReached(namespaceID, constants.FreeTierSeatLimit).Error())
		}
	}

	member, err := membership.NewMember(cmd.UserID, cmd.ResourceID, level, membership.StateActive, source)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if cmd.MemberRoleID != 0 {
		role, err := uc.memberRoleRepo.GetByID(ctx, cmd.MemberRoleID)
		if err != nil {
			return nil, err
		}
		if role.NamespaceID() != rootNamespaceID(res) {
			return nil, errors.NewValidationError("member role belongs to another namespace")
		}
		if err := member.AssignMemberRole(role.ID()); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	if err := uc.memberRepo.Create(ctx, member); err != nil {
		uc.logger.Errorw("failed to create member",
			"resource_id", cmd.ResourceID, "user_id", cmd.UserID, "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "add_member",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"user_id": cmd.UserID, "access_level": cmd.AccessLevel},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("member added", "id", member.ID(), "resource_id", cmd.ResourceID, "user_id", cmd.UserID)
	return dto.ToMemberDTO(member), nil
}
