package usecases

import (
	"context"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/membership/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type UpdateMemberLevelCommand struct {
	Actor       *membership.Actor
	ResourceID  uint
	MemberID    uint
	AccessLevel int
}

type UpdateMemberLevelExecutor interface {
	Execute(ctx context.Context, cmd UpdateMemberLevelCommand) (*dto.MemberDTO, error)
}

type UpdateMemberLevelUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	memberRepo   membership.Repository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewUpdateMemberLevelUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	memberRepo membership.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UpdateMemberLevelUseCase {
	return &UpdateMemberLevelUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		memberRepo:   memberRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *UpdateMemberLevelUseCase) Execute(ctx context.Context, cmd UpdateMemberLevelCommand) (*dto.MemberDTO, error) {
	uc.logger.Infow("executing update member level use case",
		"resource_id", cmd.ResourceID, "member_id", cmd.MemberID, "access_level", cmd.AccessLevel)

	level, ok := membership.ParseAccessLevel(cmd.AccessLevel)
	if !ok || level == membership.NoAccess {
		return nil, errors.NewValidationError("invalid access level").
			WithField("access_level", "is not a valid access level")
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

	member, err := uc.memberRepo.GetByID(ctx, cmd.MemberID)
	if err != nil {
		return nil, err
	}
	if member.ResourceID() != cmd.ResourceID {
		return nil, errors.NewNotFoundError("member not found")
	}

	// Manually changing an LDAP-synced member's level marks the grant as
	// overridden so the next sync does not silently revert it.
	if member.Source() == membership.SourceLDAP && !member.LDAPOverride() {
		if err := member.SetLDAPOverride(); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	if err := member.UpdateAccessLevel(level); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.memberRepo.Update(ctx, member); err != nil {
		uc.logger.Errorw("failed to update member", "id", member.ID(), "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "update_member_level",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details:      map[string]any{"member_id": member.ID(), "access_level": cmd.AccessLevel},
		CreatedAt:    time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("member level updated", "id", member.ID(), "access_level", cmd.AccessLevel)
	return dto.ToMemberDTO(member), nil
}
