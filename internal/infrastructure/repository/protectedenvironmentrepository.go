package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/membership"
	"github.com/forgegate-inc/forgegate/internal/domain/protection"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// ProtectedEnvironmentRepositoryImpl implements the
// protection.EnvironmentRepository interface
type ProtectedEnvironmentRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewProtectedEnvironmentRepository creates a new protected environment
// repository instance
func NewProtectedEnvironmentRepository(db *gorm.DB, logger logger.Interface) protection.EnvironmentRepository {
	return &ProtectedEnvironmentRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create persists a new protected environment with its child entries
func (r *ProtectedEnvironmentRepositoryImpl) Create(ctx context.Context, env *protection.ProtectedEnvironment) error {
	model := &models.ProtectedEnvironmentModel{
		Name:                  env.Name(),
		Scope:                 string(env.Scope()),
		ScopeID:               env.ScopeID(),
		RequiredApprovalCount: env.RequiredApprovalCount(),
		CreatedAt:             env.CreatedAt(),
		UpdatedAt:             env.UpdatedAt(),
		DeployAccessLevels:    deployLevelModels(env.DeployEntries()),
		ApprovalRules:         approvalRuleModels(env.ApprovalRules()),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("protected environment already exists")
		}
		r.logger.Errorw("failed to create protected environment",
			"name", env.Name(),
			"scope", env.Scope(),
			"scope_id", env.ScopeID(),
			"error", err)
		return fmt.Errorf("failed to create protected environment: %w", err)
	}

	if err := env.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set protected environment ID", "error", err)
		return fmt.Errorf("failed to set protected environment ID: %w", err)
	}

	r.logger.Infow("protected environment created",
		"id", model.ID,
		"name", model.Name,
		"scope", model.Scope,
		"scope_id", model.ScopeID)
	return nil
}

// Update replaces the environment's child entries in one transaction
func (r *ProtectedEnvironmentRepositoryImpl) Update(ctx context.Context, env *protection.ProtectedEnvironment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProtectedEnvironmentModel{}).
			Where("id = ?", env.ID()).
			Updates(map[string]interface{}{
				"required_approval_count": env.RequiredApprovalCount(),
				"updated_at":              env.UpdatedAt(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update protected environment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("protected environment not found")
		}

		if err := tx.Where("protected_environment_id = ?", env.ID()).
			Delete(&models.DeployAccessLevelModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear deploy access levels: %w", err)
		}
		if err := tx.Where("protected_environment_id = ?", env.ID()).
			Delete(&models.EnvApprovalRuleModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear approval rules: %w", err)
		}

		levels := deployLevelModels(env.DeployEntries())
		for i := range levels {
			levels[i].ProtectedEnvironmentID = env.ID()
		}
		if len(levels) > 0 {
			if err := tx.Create(&levels).Error; err != nil {
				return fmt.Errorf("failed to write deploy access levels: %w", err)
			}
		}

		rules := approvalRuleModels(env.ApprovalRules())
		for i := range rules {
			rules[i].ProtectedEnvironmentID = env.ID()
		}
		if len(rules) > 0 {
			if err := tx.Create(&rules).Error; err != nil {
				return fmt.Errorf("failed to write approval rules: %w", err)
			}
		}
		return nil
	})
}

// Delete removes a protected environment; child entries cascade
func (r *ProtectedEnvironmentRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ProtectedEnvironmentModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete protected environment", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete protected environment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("protected environment not found")
	}
	r.logger.Infow("protected environment deleted", "id", id)
	return nil
}

// GetByID retrieves a protected environment by ID
func (r *ProtectedEnvironmentRepositoryImpl) GetByID(ctx context.Context, id uint) (*protection.ProtectedEnvironment, error) {
	var model models.ProtectedEnvironmentModel
	if err := r.db.WithContext(ctx).
		Preload("DeployAccessLevels").
		Preload("ApprovalRules").
		First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("protected environment not found")
		}
		r.logger.Errorw("failed to get protected environment", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get protected environment: %w", err)
	}
	return r.toAggregate(&model)
}

// GetByName retrieves a protected environment by scope and name
func (r *ProtectedEnvironmentRepositoryImpl) GetByName(ctx context.Context, scope protection.ScopeKind, scopeID uint, name string) (*protection.ProtectedEnvironment, error) {
	var model models.ProtectedEnvironmentModel
	if err := r.db.WithContext(ctx).
		Preload("DeployAccessLevels").
		Preload("ApprovalRules").
		Where("scope = ? AND scope_id = ? AND name = ?", string(scope), scopeID, name).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("protected environment not found")
		}
		r.logger.Errorw("failed to get protected environment",
			"scope", scope, "scope_id", scopeID, "name", name, "error", err)
		return nil, fmt.Errorf("failed to get protected environment: %w", err)
	}
	return r.toAggregate(&model)
}

// ListForScope returns the environments protected in one scope
func (r *ProtectedEnvironmentRepositoryImpl) ListForScope(ctx context.Context, scope protection.ScopeKind, scopeID uint, offset, limit int, sortAsc bool) ([]*protection.ProtectedEnvironment, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProtectedEnvironmentModel{}).
		Where("scope = ? AND scope_id = ?", string(scope), scopeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count protected environments", "error", err)
		return nil, 0, fmt.Errorf("failed to count protected environments: %w", err)
	}

	order := "id DESC"
	if sortAsc {
		order = "id ASC"
	}

	var rows []models.ProtectedEnvironmentModel
	if err := query.
		Preload("DeployAccessLevels").
		Preload("ApprovalRules").
		Order(order).Offset(offset).Limit(limit).
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list protected environments", "error", err)
		return nil, 0, fmt.Errorf("failed to list protected environments: %w", err)
	}

	envs := make([]*protection.ProtectedEnvironment, len(rows))
	for i := range rows {
		env, err := r.toAggregate(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		envs[i] = env
	}
	return envs, total, nil
}

func (r *ProtectedEnvironmentRepositoryImpl) toAggregate(model *models.ProtectedEnvironmentModel) (*protection.ProtectedEnvironment, error) {
	deployEntries := make([]*protection.AccessEntry, 0, len(model.DeployAccessLevels))
	for i := range model.DeployAccessLevels {
		row := &model.DeployAccessLevels[i]
		entry, err := protection.ReconstructAccessEntry(
			row.ID,
			protection.EntryKind(row.EntryKind),
			membership.AccessLevel(row.AccessLevel),
			row.UserID,
			row.GroupID,
			protection.GroupInheritanceType(row.GroupInheritance),
		)
		if err != nil {
			r.logger.Errorw("failed to reconstruct deploy access level", "id", row.ID, "error", err)
			return nil, fmt.Errorf("failed to reconstruct deploy access level: %w", err)
		}
		deployEntries = append(deployEntries, entry)
	}

	approvalRules := make([]*protection.EnvApprovalRule, 0, len(model.ApprovalRules))
	for i := range model.ApprovalRules {
		row := &model.ApprovalRules[i]
		entry, err := protection.ReconstructAccessEntry(
			row.ID,
			protection.EntryKind(row.EntryKind),
			membership.AccessLevel(row.AccessLevel),
			row.UserID,
			row.GroupID,
			protection.GroupInheritanceType(row.GroupInheritance),
		)
		if err != nil {
			r.logger.Errorw("failed to reconstruct approval rule entry", "id", row.ID, "error", err)
			return nil, fmt.Errorf("failed to reconstruct approval rule entry: %w", err)
		}
		rule, err := protection.ReconstructEnvApprovalRule(row.ID, entry, row.RequiredApprovals)
		if err != nil {
			r.logger.Errorw("failed to reconstruct approval rule", "id", row.ID, "error", err)
			return nil, fmt.Errorf("failed to reconstruct approval rule: %w", err)
		}
		approvalRules = append(approvalRules, rule)
	}

	env, err := protection.ReconstructProtectedEnvironment(
		model.ID,
		model.Name,
		protection.ScopeKind(model.Scope),
		model.ScopeID,
		deployEntries,
		approvalRules,
		model.RequiredApprovalCount,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct protected environment", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct protected environment: %w", err)
	}
	return env, nil
}

func deployLevelModels(entries []*protection.AccessEntry) []models.DeployAccessLevelModel {
	rows := make([]models.DeployAccessLevelModel, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.DeployAccessLevelModel{
			EntryKind:        string(e.Kind()),
			AccessLevel:      int(e.AccessLevel()),
			UserID:           e.UserID(),
			GroupID:          e.GroupID(),
			GroupInheritance: int(e.GroupInheritance()),
		})
	}
	return rows
}

func approvalRuleModels(rules []*protection.EnvApprovalRule) []models.EnvApprovalRuleModel {
	rows := make([]models.EnvApprovalRuleModel, 0, len(rules))
	for _, rule := range rules {
		e := rule.Entry()
		rows = append(rows, models.EnvApprovalRuleModel{
			EntryKind:         string(e.Kind()),
			AccessLevel:       int(e.AccessLevel()),
			UserID:            e.UserID(),
			GroupID:           e.GroupID(),
			GroupInheritance:  int(e.GroupInheritance()),
			RequiredApprovals: rule.RequiredApprovals(),
		})
	}
	return rows
}
