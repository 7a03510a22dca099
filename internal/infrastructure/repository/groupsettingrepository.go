package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/settings"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// GroupSettingRepositoryImpl implements the settings.Repository interface
type GroupSettingRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewGroupSettingRepository creates a new group setting repository instance
func NewGroupSettingRepository(db *gorm.DB, logger logger.Interface) settings.Repository {
	return &GroupSettingRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// GetByGroup retrieves a group's settings record
func (r *GroupSettingRepositoryImpl) GetByGroup(ctx context.Context, groupID uint) (*settings.GroupSetting, error) {
	var model models.GroupSettingModel
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("group settings not found")
		}
		r.logger.Errorw("failed to get group settings", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to get group settings: %w", err)
	}

	setting, err := settings.ReconstructGroupSetting(
		model.ID,
		model.GroupID,
		settings.BranchProtectionLevel(model.DefaultBranchProtection),
		model.UpdatedAt,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct group settings", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct group settings: %w", err)
	}
	return setting, nil
}

// Save upserts the settings record
func (r *GroupSettingRepositoryImpl) Save(ctx context.Context, setting *settings.GroupSetting) error {
	if setting.ID() != 0 {
		result := r.db.WithContext(ctx).
			Model(&models.GroupSettingModel{}).
			Where("id = ?", setting.ID()).
			Updates(map[string]interface{}{
				"default_branch_protection": int(setting.DefaultBranchProtection()),
				"updated_at":                setting.UpdatedAt(),
			})
		if result.Error != nil {
			r.logger.Errorw("failed to update group settings", "id", setting.ID(), "error", result.Error)
			return fmt.Errorf("failed to update group settings: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("group settings not found")
		}
		return nil
	}

	model := &models.GroupSettingModel{
		GroupID:                 setting.GroupID(),
		DefaultBranchProtection: int(setting.DefaultBranchProtection()),
		UpdatedAt:               setting.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("group settings already exist")
		}
		r.logger.Errorw("failed to create group settings", "group_id", setting.GroupID(), "error", err)
		return fmt.Errorf("failed to create group settings: %w", err)
	}

	if err := setting.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set group setting ID", "error", err)
		return fmt.Errorf("failed to set group setting ID: %w", err)
	}

	r.logger.Infow("group settings saved", "id", model.ID, "group_id", model.GroupID)
	return nil
}
