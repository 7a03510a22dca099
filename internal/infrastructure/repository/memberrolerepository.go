package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// MemberRoleRepositoryImpl implements the membership.MemberRoleRepository
// interface
type MemberRoleRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewMemberRoleRepository creates a new member role repository instance
func NewMemberRoleRepository(db *gorm.DB, logger logger.Interface) membership.MemberRoleRepository {
	return &MemberRoleRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create persists a new custom role
func (r *MemberRoleRepositoryImpl) Create(ctx context.Context, role *membership.MemberRole) error {
	model := &models.MemberRoleModel{
		NamespaceID: role.NamespaceID(),
		Name:        role.Name(),
		BaseLevel:   int(role.BaseLevel()),
		CreatedAt:   role.CreatedAt(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("member role already exists")
		}
		r.logger.Errorw("failed to create member role",
			"namespace_id", role.NamespaceID(),
			"name", role.Name(),
			"error", err)
		return fmt.Errorf("failed to create member role: %w", err)
	}

	if err := role.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set member role ID", "error", err)
		return fmt.Errorf("failed to set member role ID: %w", err)
	}

	r.logger.Infow("member role created",
		"id", model.ID,
		"namespace_id", model.NamespaceID,
		"name", model.Name)
	return nil
}

// Delete removes a custom role
func (r *MemberRoleRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.MemberRoleModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete member role", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete member role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("member role not found")
	}
	r.logger.Infow("member role deleted", "id", id)
	return nil
}

// GetByID retrieves a custom role by ID
func (r *MemberRoleRepositoryImpl) GetByID(ctx context.Context, id uint) (*membership.MemberRole, error) {
	var model models.MemberRoleModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("member role not found")
		}
		r.logger.Errorw("failed to get member role", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get member role: %w", err)
	}
	return r.toAggregate(&model)
}

// ListForNamespace returns the custom roles defined in a namespace
func (r *MemberRoleRepositoryImpl) ListForNamespace(ctx context.Context, namespaceID uint) ([]*membership.MemberRole, error) {
	var rows []models.MemberRoleModel
	if err := r.db.WithContext(ctx).
		Where("namespace_id = ?", namespaceID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list member roles", "namespace_id", namespaceID, "error", err)
		return nil, fmt.Errorf("failed to list member roles: %w", err)
	}

	roles := make([]*membership.MemberRole, len(rows))
	for i := range rows {
		role, err := r.toAggregate(&rows[i])
		if err != nil {
			return nil, err
		}
		roles[i] = role
	}
	return roles, nil
}

func (r *MemberRoleRepositoryImpl) toAggregate(model *models.MemberRoleModel) (*membership.MemberRole, error) {
	role, err := membership.ReconstructMemberRole(
		model.ID,
		model.NamespaceID,
		model.Name,
		membership.AccessLevel(model.BaseLevel),
		model.CreatedAt,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct member role", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct member role: %w", err)
	}
	return role, nil
}
