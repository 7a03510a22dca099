package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// StatusCheckRepositoryImpl implements the protection.StatusCheckRepository
// interface
type StatusCheckRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewStatusCheckRepository creates a new status check repository instance
func NewStatusCheckRepository(db *gorm.DB, logger logger.Interface) protection.StatusCheckRepository {
	return &StatusCheckRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create persists a new external status check definition
func (r *StatusCheckRepositoryImpl) Create(ctx context.Context, check *protection.ExternalStatusCheck) error {
	model := &models.StatusCheckModel{
		ProjectID: check.ProjectID(),
		Name:      check.Name(),
		URL:       check.URL(),
		LastState: check.LastState().String(),
		UpdatedAt: check.UpdatedAt(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("status check already exists")
		}
		r.logger.Errorw("failed to create status check",
			"project_id", check.ProjectID(),
			"name", check.Name(),
			"error", err)
		return fmt.Errorf("failed to create status check: %w", err)
	}

	if err := check.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set status check ID", "error", err)
		return fmt.Errorf("failed to set status check ID: %w", err)
	}

	r.logger.Infow("status check created",
		"id", model.ID,
		"project_id", model.ProjectID,
		"name", model.Name)
	return nil
}

// Update persists the check's last recorded state
func (r *StatusCheckRepositoryImpl) Update(ctx context.Context, check *protection.ExternalStatusCheck) error {
	result := r.db.WithContext(ctx).
		Model(&models.StatusCheckModel{}).
		Where("id = ?", check.ID()).
		Updates(map[string]interface{}{
			"name":       check.Name(),
			"url":        check.URL(),
			"last_state": check.LastState().String(),
			"updated_at": check.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update status check", "id", check.ID(), "error", result.Error)
		return fmt.Errorf("failed to update status check: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("status check not found")
	}
	return nil
}

// GetByID retrieves a status check by ID
func (r *StatusCheckRepositoryImpl) GetByID(ctx context.Context, id uint) (*protection.ExternalStatusCheck, error) {
	var model models.StatusCheckModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("status check not found")
		}
		r.logger.Errorw("failed to get status check", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get status check: %w", err)
	}
	return r.toAggregate(&model)
}

// ListForProject returns every status check configured on a project
func (r *StatusCheckRepositoryImpl) ListForProject(ctx context.Context, projectID uint) ([]*protection.ExternalStatusCheck, error) {
	var rows []models.StatusCheckModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list status checks", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("failed to list status checks: %w", err)
	}

	checks := make([]*protection.ExternalStatusCheck, len(rows))
	for i := range rows {
		check, err := r.toAggregate(&rows[i])
		if err != nil {
			return nil, err
		}
		checks[i] = check
	}
	return checks, nil
}

func (r *StatusCheckRepositoryImpl) toAggregate(model *models.StatusCheckModel) (*protection.ExternalStatusCheck, error) {
	check, err := protection.ReconstructExternalStatusCheck(
		model.ID,
		model.ProjectID,
		model.Name,
		model.URL,
		protection.CheckState(model.LastState),
		model.UpdatedAt,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct status check", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct status check: %w", err)
	}
	return check, nil
}
