package usecases

import (
	"context"
	"time"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/settings/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/audit"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/domain/settings"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// UpdateGroupSettingsCommand sets a group's default branch protection. The
// level is applied literally only when the restriction feature is licensed or
// the actor is an admin; otherwise it silently coerces to full protection
// instead of rejecting the request.
type UpdateGroupSettingsCommand struct {
	Actor                   *membership.Actor
	GroupID                 uint
	DefaultBranchProtection int
}

type UpdateGroupSettingsExecutor interface {
	Execute(ctx context.Context, cmd UpdateGroupSettingsCommand) (*dto.GroupSettingDTO, error)
}

type UpdateGroupSettingsUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	settingRepo  settings.Repository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewUpdateGroupSettingsUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	settingRepo settings.Repository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UpdateGroupSettingsUseCase {
	return &UpdateGroupSettingsUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		settingRepo:  settingRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *UpdateGroupSettingsUseCase) Execute(ctx context.Context, cmd UpdateGroupSettingsCommand) (*dto.GroupSettingDTO, error) {
	uc.logger.Infow("executing update group settings use case",
		"group_id", cmd.GroupID, "default_branch_protection", cmd.DefaultBranchProtection)

	level := settings.BranchProtectionLevel(cmd.DefaultBranchProtection)
	if !level.IsValid() {
		return nil, errors.NewValidationError("invalid branch protection level").
			WithField("default_branch_protection", "is not a valid protection level")
	}

	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindGroup, cmd.GroupID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, cmd.Actor, authz.ActionRestrictDefaultBranchProtection, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	// Without the restriction feature the requested level is dropped, not
	// rejected: everyone silently gets full protection. Admins are exempt.
	if decision.FallbackApplied && !cmd.Actor.IsAdmin() {
		uc.logger.Infow("branch protection level coerced to full",
			"group_id", cmd.GroupID, "requested", cmd.DefaultBranchProtection)
		level = settings.ProtectionFull
	}

	setting, err := uc.settingRepo.GetByGroup(ctx, cmd.GroupID)
	switch {
	case errors.IsNotFoundError(err):
		setting, err = settings.NewGroupSetting(cmd.GroupID, level)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	case err != nil:
		return nil, err
	default:
		if err := setting.SetDefaultBranchProtection(level); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	if err := uc.settingRepo.Save(ctx, setting); err != nil {
		uc.logger.Errorw("failed to save group settings", "group_id", cmd.GroupID, "error", err)
		return nil, err
	}

	if err := uc.recorder.Record(ctx, audit.Event{
		ActorID:      cmd.Actor.ID(),
		Action:       "update_group_settings",
		ResourceKind: res.Kind().String(),
		ResourceID:   res.ID(),
		Reason:       string(authz.ReasonOK),
		Details: map[string]any{
			"requested_level": cmd.DefaultBranchProtection,
			"applied_level":   int(level),
		},
		CreatedAt: time.Now(),
	}); err != nil {
		uc.logger.Warnw("failed to record audit event", "error", err)
	}

	uc.logger.Infow("group settings updated", "group_id", cmd.GroupID, "applied_level", int(level))
	return dto.ToGroupSettingDTO(setting), nil
}
