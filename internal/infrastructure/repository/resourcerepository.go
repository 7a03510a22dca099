package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/license"
	"github.com/forgegate-inc/forgegate/internal/domain/resource"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// ResourceRepositoryImpl implements the resource.Repository interface
type ResourceRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewResourceRepository creates a new resource repository instance
func NewResourceRepository(db *gorm.DB, logger logger.Interface) resource.Repository {
	return &ResourceRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create persists a new resource node
func (r *ResourceRepositoryImpl) Create(ctx context.Context, res *resource.Resource) error {
	ancestors, err := json.Marshal(res.AncestorIDs())
	if err != nil {
		return fmt.Errorf("failed to marshal ancestor ids: %w", err)
	}

	model := &models.ResourceModel{
		ID:          res.ID(),
		Kind:        res.Kind().String(),
		Name:        res.Name(),
		Visibility:  res.Visibility().String(),
		ParentID:    res.ParentID(),
		AncestorIDs: datatypes.JSON(ancestors),
	}
	if lic := res.Licensing(); lic != nil {
		model.Plan = lic.Plan().String()
		model.LicenseExpiresAt = lic.ExpiresAt()
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("resource already exists")
		}
		r.logger.Errorw("failed to create resource", "id", res.ID(), "kind", res.Kind(), "error", err)
		return fmt.Errorf("failed to create resource: %w", err)
	}

	r.logger.Infow("resource created", "id", model.ID, "kind", model.Kind, "name", model.Name)
	return nil
}

// Update persists changes to an existing resource node
func (r *ResourceRepositoryImpl) Update(ctx context.Context, res *resource.Resource) error {
	updates := map[string]interface{}{
		"name":       res.Name(),
		"visibility": res.Visibility().String(),
	}
	if lic := res.Licensing(); lic != nil {
		overrides := map[license.Feature]bool{}
		for _, f := range license.AllFeatures() {
			if enabled, ok := lic.Override(f); ok {
				overrides[f] = enabled
			}
		}
		raw, err := json.Marshal(overrides)
		if err != nil {
			return fmt.Errorf("failed to marshal feature overrides: %w", err)
		}
		updates["plan"] = lic.Plan().String()
		updates["license_expires_at"] = lic.ExpiresAt()
		updates["feature_overrides"] = datatypes.JSON(raw)
	}

	result := r.db.WithContext(ctx).
		Model(&models.ResourceModel{}).
		Where("id = ?", res.ID()).
		Updates(updates)
	if result.Error != nil {
		r.logger.Errorw("failed to update resource", "id", res.ID(), "error", result.Error)
		return fmt.Errorf("failed to update resource: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("resource not found")
	}
	return nil
}

// Delete removes a resource node
func (r *ResourceRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ResourceModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete resource", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete resource: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("resource not found")
	}
	r.logger.Infow("resource deleted", "id", id)
	return nil
}

// GetByID returns the resource with its ancestor ids and licensing context
// populated
func (r *ResourceRepositoryImpl) GetByID(ctx context.Context, id uint) (*resource.Resource, error) {
	var model models.ResourceModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("resource not found")
		}
		r.logger.Errorw("failed to get resource", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return r.toAggregate(&model)
}

// GetByKindAndID narrows the lookup to one kind
func (r *ResourceRepositoryImpl) GetByKindAndID(ctx context.Context, kind resource.Kind, id uint) (*resource.Resource, error) {
	var model models.ResourceModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND kind = ?", id, kind.String()).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("resource not found")
		}
		r.logger.Errorw("failed to get resource", "id", id, "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return r.toAggregate(&model)
}

func (r *ResourceRepositoryImpl) toAggregate(model *models.ResourceModel) (*resource.Resource, error) {
	var ancestorIDs []uint
	if len(model.AncestorIDs) > 0 {
		if err := json.Unmarshal(model.AncestorIDs, &ancestorIDs); err != nil {
			r.logger.Errorw("failed to unmarshal ancestor ids", "id", model.ID, "error", err)
			return nil, fmt.Errorf("failed to unmarshal ancestor ids: %w", err)
		}
	}

	overrides := map[license.Feature]bool{}
	if len(model.FeatureOverrides) > 0 {
		if err := json.Unmarshal(model.FeatureOverrides, &overrides); err != nil {
			r.logger.Errorw("failed to unmarshal feature overrides", "id", model.ID, "error", err)
			return nil, fmt.Errorf("failed to unmarshal feature overrides: %w", err)
		}
	}

	licensing, err := license.ReconstructContext(license.Plan(model.Plan), model.LicenseExpiresAt, overrides)
	if err != nil {
		r.logger.Errorw("failed to reconstruct licensing context", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct licensing context: %w", err)
	}

	res, err := resource.New(
		model.ID,
		resource.Kind(model.Kind),
		model.Name,
		resource.Visibility(model.Visibility),
		model.ParentID,
		ancestorIDs,
		licensing,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct resource", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct resource: %w", err)
	}
	return res, nil
}
