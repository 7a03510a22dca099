package usecases

import (
	"context"

	"github.com/forgegate-inc/forgegate/internal/application/common"
	"github.com/forgegate-inc/forgegate/internal/application/settings/dto"
	"github.com/forgegate-inc/forgegate/internal/domain/authz"
	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/domain/settings"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

type GetGroupSettingsQuery struct {
	Actor   *membership.Actor
	GroupID uint
}

type GetGroupSettingsExecutor interface {
	Execute(ctx context.Context, query GetGroupSettingsQuery) (*dto.GroupSettingDTO, error)
}

type GetGroupSettingsUseCase struct {
	gate         *authz.Gate
	resourceRepo resource.Repository
	settingRepo  settings.Repository
	logger       logger.Interface
}

func NewGetGroupSettingsUseCase(
	gate *authz.Gate,
	resourceRepo resource.Repository,
	settingRepo settings.Repository,
	logger logger.Interface,
) *GetGroupSettingsUseCase {
	return &GetGroupSettingsUseCase{
		gate:         gate,
		resourceRepo: resourceRepo,
		settingRepo:  settingRepo,
		logger:       logger,
	}
}

func (uc *GetGroupSettingsUseCase) Execute(ctx context.Context, query GetGroupSettingsQuery) (*dto.GroupSettingDTO, error) {
	res, err := uc.resourceRepo.GetByKindAndID(ctx, resource.KindGroup, query.GroupID)
	if err != nil {
		return nil, err
	}

	decision, err := uc.gate.Authorize(ctx, query.Actor, authz.ActionUpdateGroupSettings, res, nil)
	if err != nil {
		uc.logger.Errorw("authorization failed", "error", err)
		return nil, errors.NewInternalError("authorization failed")
	}
	if !decision.Allowed {
		return nil, common.DecisionError(decision)
	}

	setting, err := uc.settingRepo.GetByGroup(ctx, query.GroupID)
	if errors.IsNotFoundError(err) {
		// Unconfigured groups answer the default rather than 404.
		fallback, err := settings.NewGroupSetting(query.GroupID, settings.ProtectionFull)
		if err != nil {
			return nil, errors.NewInternalError("failed to build default settings")
		}
		return dto.ToGroupSettingDTO(fallback), nil
	}
	if err != nil {
		return nil, err
	}
	return dto.ToGroupSettingDTO(setting), nil
}
