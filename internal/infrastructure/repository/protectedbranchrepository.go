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

const (
	branchActionPush  = "push"
	branchActionMerge = "merge"
)

// ProtectedBranchRepositoryImpl implements the protection.BranchRepository
// interface
type ProtectedBranchRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewProtectedBranchRepository creates a new protected branch repository
// instance
func NewProtectedBranchRepository(db *gorm.DB, logger logger.Interface) protection.BranchRepository {
	return &ProtectedBranchRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create persists a new protected branch rule with its access entries
func (r *ProtectedBranchRepositoryImpl) Create(ctx context.Context, branch *protection.ProtectedBranch) error {
	model := &models.ProtectedBranchModel{
		Name:      branch.Name(),
		Scope:     string(branch.Scope()),
		ScopeID:   branch.ScopeID(),
		CreatedAt: branch.CreatedAt(),
		UpdatedAt: branch.UpdatedAt(),
	}
	model.AccessEntries = append(
		entryModels(branch.PushEntries(), branchActionPush),
		entryModels(branch.MergeEntries(), branchActionMerge)...,
	)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("protected branch already exists")
		}
		r.logger.Errorw("failed to create protected branch",
			"name", branch.Name(),
			"scope", branch.Scope(),
			"scope_id", branch.ScopeID(),
			"error", err)
		return fmt.Errorf("failed to create protected branch: %w", err)
	}

	if err := branch.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set protected branch ID", "error", err)
		return fmt.Errorf("failed to set protected branch ID: %w", err)
	}

	r.logger.Infow("protected branch created",
		"id", model.ID,
		"name", model.Name,
		"scope", model.Scope,
		"scope_id", model.ScopeID)
	return nil
}

// Update replaces the rule's access entries and bumps the timestamp. The
// replace runs in one transaction so a failed entry write never leaves a rule
// half-updated.
func (r *ProtectedBranchRepositoryImpl) Update(ctx context.Context, branch *protection.ProtectedBranch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.ProtectedBranchModel{}).
			Where("id = ?", branch.ID()).
			Update("updated_at", branch.UpdatedAt())
		if result.Error != nil {
			return fmt.Errorf("failed to update protected branch: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("protected branch not found")
		}

		if err := tx.Where("protected_branch_id = ?", branch.ID()).
			Delete(&models.BranchAccessEntryModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear access entries: %w", err)
		}

		entries := append(
			entryModels(branch.PushEntries(), branchActionPush),
			entryModels(branch.MergeEntries(), branchActionMerge)...,
		)
		for i := range entries {
			entries[i].ProtectedBranchID = branch.ID()
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return fmt.Errorf("failed to write access entries: %w", err)
			}
		}
		return nil
	})
}

// Delete removes a protected branch rule; child entries cascade
func (r *ProtectedBranchRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ProtectedBranchModel{}, id)
	if result.Error != nil {
		r.logger.Errorw("failed to delete protected branch", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete protected branch: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("protected branch not found")
	}
	r.logger.Infow("protected branch deleted", "id", id)
	return nil
}

// GetByID retrieves a protected branch rule by ID
func (r *ProtectedBranchRepositoryImpl) GetByID(ctx context.Context, id uint) (*protection.ProtectedBranch, error) {
	var model models.ProtectedBranchModel
	if err := r.db.WithContext(ctx).Preload("AccessEntries").First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("protected branch not found")
		}
		r.logger.Errorw("failed to get protected branch", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get protected branch: %w", err)
	}
	return r.toAggregate(&model)
}

// GetByName retrieves a rule by scope and exact name
func (r *ProtectedBranchRepositoryImpl) GetByName(ctx context.Context, scope protection.ScopeKind, scopeID uint, name string) (*protection.ProtectedBranch, error) {
	var model models.ProtectedBranchModel
	if err := r.db.WithContext(ctx).
		Preload("AccessEntries").
		Where("scope = ? AND scope_id = ? AND name = ?", string(scope), scopeID, name).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("protected branch not found")
		}
		r.logger.Errorw("failed to get protected branch",
			"scope", scope, "scope_id", scopeID, "name", name, "error", err)
		return nil, fmt.Errorf("failed to get protected branch: %w", err)
	}
	return r.toAggregate(&model)
}

// ListForProject returns the project's own rules plus the rules of every
// ancestor group, loaded in one query against the ancestor id set
func (r *ProtectedBranchRepositoryImpl) ListForProject(ctx context.Context, projectID uint, ancestorGroupIDs []uint, offset, limit int, sortAsc bool) ([]*protection.ProtectedBranch, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProtectedBranchModel{})
	if len(ancestorGroupIDs) > 0 {
		query = query.Where(
			"(scope = ? AND scope_id = ?) OR (scope = ? AND scope_id IN ?)",
			string(protection.ScopeProject), projectID,
			string(protection.ScopeGroup), ancestorGroupIDs,
		)
	} else {
		query = query.Where("scope = ? AND scope_id = ?", string(protection.ScopeProject), projectID)
	}
	return r.list(query, offset, limit, sortAsc)
}

// ListForGroup returns the group's own rules only
func (r *ProtectedBranchRepositoryImpl) ListForGroup(ctx context.Context, groupID uint, offset, limit int, sortAsc bool) ([]*protection.ProtectedBranch, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ProtectedBranchModel{}).
		Where("scope = ? AND scope_id = ?", string(protection.ScopeGroup), groupID)
	return r.list(query, offset, limit, sortAsc)
}

func (r *ProtectedBranchRepositoryImpl) list(query *gorm.DB, offset, limit int, sortAsc bool) ([]*protection.ProtectedBranch, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count protected branches", "error", err)
		return nil, 0, fmt.Errorf("failed to count protected branches: %w", err)
	}

	order := "id DESC"
	if sortAsc {
		order = "id ASC"
	}

	var rows []models.ProtectedBranchModel
	if err := query.Preload("AccessEntries").Order(order).Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list protected branches", "error", err)
		return nil, 0, fmt.Errorf("failed to list protected branches: %w", err)
	}

	branches := make([]*protection.ProtectedBranch, len(rows))
	for i := range rows {
		branch, err := r.toAggregate(&rows[i])
		if err != nil {
			return nil, 0, err
		}
		branches[i] = branch
	}
	return branches, total, nil
}

func (r *ProtectedBranchRepositoryImpl) toAggregate(model *models.ProtectedBranchModel) (*protection.ProtectedBranch, error) {
	var push, merge []*protection.AccessEntry
	for i := range model.AccessEntries {
		row := &model.AccessEntries[i]
		entry, err := protection.ReconstructAccessEntry(
			row.ID,
			protection.EntryKind(row.EntryKind),
			membership.AccessLevel(row.AccessLevel),
			row.UserID,
			row.GroupID,
			protection.GroupInheritanceType(row.GroupInheritance),
		)
		if err != nil {
			r.logger.Errorw("failed to reconstruct access entry", "id", row.ID, "error", err)
			return nil, fmt.Errorf("failed to reconstruct access entry: %w", err)
		}
		switch row.BranchAction {
		case branchActionMerge:
			merge = append(merge, entry)
		default:
			push = append(push, entry)
		}
	}

	branch, err := protection.ReconstructProtectedBranch(
		model.ID,
		model.Name,
		protection.ScopeKind(model.Scope),
		model.ScopeID,
		push,
		merge,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct protected branch", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct protected branch: %w", err)
	}
	return branch, nil
}

func entryModels(entries []*protection.AccessEntry, action string) []models.BranchAccessEntryModel {
	rows := make([]models.BranchAccessEntryModel, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, models.BranchAccessEntryModel{
			BranchAction:     action,
			EntryKind:        string(e.Kind()),
			AccessLevel:      int(e.AccessLevel()),
			UserID:           e.UserID(),
			GroupID:          e.GroupID(),
			GroupInheritance: int(e.GroupInheritance()),
		})
	}
	return rows
}
