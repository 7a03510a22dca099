package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/forgegate-inc/forgegate/internal/domain/approval"
	"github.com/forgegate-inc/forgegate/internal/infrastructure/persistence/models"
	"github.com/forgegate-inc/forgegate/internal/shared/errors"
	"github.com/forgegate-inc/forgegate/internal/shared/logger"
)

// ApprovalRepositoryImpl implements the approval.Repository interface
type ApprovalRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewApprovalRepository creates a new approval repository instance
func NewApprovalRepository(db *gorm.DB, logger logger.Interface) approval.Repository {
	return &ApprovalRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// GetState loads the merge request head, its snapshotted rules and the
// approvals collected so far in one read path
func (r *ApprovalRepositoryImpl) GetState(ctx context.Context, mergeRequestID uint) (*approval.State, error) {
	var mr models.MergeRequestModel
	if err := r.db.WithContext(ctx).First(&mr, mergeRequestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("merge request not found")
		}
		r.logger.Errorw("failed to get merge request", "id", mergeRequestID, "error", err)
		return nil, fmt.Errorf("failed to get merge request: %w", err)
	}

	var ruleRows []models.ApprovalRuleModel
	if err := r.db.WithContext(ctx).
		Where("merge_request_id = ?", mergeRequestID).
		Order("id ASC").
		Find(&ruleRows).Error; err != nil {
		r.logger.Errorw("failed to list approval rules", "merge_request_id", mergeRequestID, "error", err)
		return nil, fmt.Errorf("failed to list approval rules: %w", err)
	}

	rules := make([]*approval.Rule, len(ruleRows))
	for i := range ruleRows {
		rule, err := r.toRule(&ruleRows[i])
		if err != nil {
			return nil, err
		}
		rules[i] = rule
	}

	var approvalRows []models.MergeRequestApprovalModel
	if err := r.db.WithContext(ctx).
		Where("merge_request_id = ?", mergeRequestID).
		Order("id ASC").
		Find(&approvalRows).Error; err != nil {
		r.logger.Errorw("failed to list approvals", "merge_request_id", mergeRequestID, "error", err)
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}

	approvals := make([]approval.GrantedApproval, len(approvalRows))
	for i, row := range approvalRows {
		approvals[i] = approval.GrantedApproval{
			ActorID:   row.ActorID,
			SHA:       row.SHA,
			CreatedAt: row.CreatedAt,
		}
	}

	state, err := approval.NewState(mergeRequestID, mr.HeadSHA, rules, approvals)
	if err != nil {
		r.logger.Errorw("failed to reconstruct approval state", "merge_request_id", mergeRequestID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct approval state: %w", err)
	}
	return state, nil
}

// SaveState persists the approval set and any newly snapshotted rules. The
// approval rows are replaced wholesale so revocations delete and grants insert
// through the same path; the unique (merge request, actor) index backs up the
// aggregate's duplicate rejection.
func (r *ApprovalRepositoryImpl) SaveState(ctx context.Context, state *approval.State) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mr models.MergeRequestModel
		if err := tx.First(&mr, state.MergeRequestID()).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.NewNotFoundError("merge request not found")
			}
			return fmt.Errorf("failed to get merge request: %w", err)
		}

		for _, rule := range state.Rules() {
			if rule.ID() != 0 {
				continue
			}
			model, err := ruleModel(mr.ProjectID, state.MergeRequestID(), rule)
			if err != nil {
				return err
			}
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("failed to create approval rule: %w", err)
			}
			if err := rule.SetID(model.ID); err != nil {
				return fmt.Errorf("failed to set approval rule ID: %w", err)
			}
		}

		if err := tx.Where("merge_request_id = ?", state.MergeRequestID()).
			Delete(&models.MergeRequestApprovalModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear approvals: %w", err)
		}

		rows := make([]models.MergeRequestApprovalModel, 0, len(state.Approvals()))
		for _, a := range state.Approvals() {
			rows = append(rows, models.MergeRequestApprovalModel{
				MergeRequestID: state.MergeRequestID(),
				ActorID:        a.ActorID,
				SHA:            a.SHA,
				CreatedAt:      a.CreatedAt,
			})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				if errors.IsDuplicateError(err) {
					return errors.NewConflictError("merge request already approved by this user")
				}
				return fmt.Errorf("failed to write approvals: %w", err)
			}
		}
		return nil
	})
}

// ListProjectRules returns the project's rule templates
func (r *ApprovalRepositoryImpl) ListProjectRules(ctx context.Context, projectID uint) ([]*approval.Rule, error) {
	var rows []models.ApprovalRuleModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND merge_request_id = 0", projectID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list project approval rules", "project_id", projectID, "error", err)
		return nil, fmt.Errorf("failed to list project approval rules: %w", err)
	}

	rules := make([]*approval.Rule, len(rows))
	for i := range rows {
		rule, err := r.toRule(&rows[i])
		if err != nil {
			return nil, err
		}
		rules[i] = rule
	}
	return rules, nil
}

// CreateProjectRule persists a new rule template
func (r *ApprovalRepositoryImpl) CreateProjectRule(ctx context.Context, projectID uint, rule *approval.Rule) error {
	model, err := ruleModel(projectID, 0, rule)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("approval rule already exists")
		}
		r.logger.Errorw("failed to create approval rule",
			"project_id", projectID,
			"name", rule.Name(),
			"error", err)
		return fmt.Errorf("failed to create approval rule: %w", err)
	}

	if err := rule.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set approval rule ID", "error", err)
		return fmt.Errorf("failed to set approval rule ID: %w", err)
	}

	r.logger.Infow("approval rule created",
		"id", model.ID,
		"project_id", projectID,
		"name", model.Name,
		"kind", model.Kind)
	return nil
}

// MergeRequestRepositoryImpl implements the approval.MergeRequestRepository
// interface
type MergeRequestRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewMergeRequestRepository creates a new merge request repository instance
func NewMergeRequestRepository(db *gorm.DB, logger logger.Interface) approval.MergeRequestRepository {
	return &MergeRequestRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// GetByID resolves the merge request read model
func (r *MergeRequestRepositoryImpl) GetByID(ctx context.Context, id uint) (*approval.MergeRequest, error) {
	var model models.MergeRequestModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("merge request not found")
		}
		r.logger.Errorw("failed to get merge request", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get merge request: %w", err)
	}

	return &approval.MergeRequest{
		ID:        model.ID,
		ProjectID: model.ProjectID,
		HeadSHA:   model.HeadSHA,
		State:     model.State,
	}, nil
}

// UpdateState moves the merge request to a new workflow state
func (r *MergeRequestRepositoryImpl) UpdateState(ctx context.Context, id uint, state string) error {
	result := r.db.WithContext(ctx).
		Model(&models.MergeRequestModel{}).
		Where("id = ?", id).
		Update("state", state)
	if result.Error != nil {
		r.logger.Errorw("failed to update merge request state", "id", id, "state", state, "error", result.Error)
		return fmt.Errorf("failed to update merge request state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("merge request not found")
	}

	r.logger.Infow("merge request state updated", "id", id, "state", state)
	return nil
}

func (r *ApprovalRepositoryImpl) toRule(model *models.ApprovalRuleModel) (*approval.Rule, error) {
	var approverIDs, groupIDs []uint
	if len(model.ApproverIDs) > 0 {
		if err := json.Unmarshal(model.ApproverIDs, &approverIDs); err != nil {
			r.logger.Errorw("failed to unmarshal approver ids", "id", model.ID, "error", err)
			return nil, fmt.Errorf("failed to unmarshal approver ids: %w", err)
		}
	}
	if len(model.GroupIDs) > 0 {
		if err := json.Unmarshal(model.GroupIDs, &groupIDs); err != nil {
			r.logger.Errorw("failed to unmarshal group ids", "id", model.ID, "error", err)
			return nil, fmt.Errorf("failed to unmarshal group ids: %w", err)
		}
	}

	rule, err := approval.ReconstructRule(
		model.ID,
		model.Name,
		approval.RuleKind(model.Kind),
		model.ApprovalsRequired,
		approverIDs,
		groupIDs,
		model.Section,
		model.CreatedAt,
	)
	if err != nil {
		r.logger.Errorw("failed to reconstruct approval rule", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to reconstruct approval rule: %w", err)
	}
	return rule, nil
}

func ruleModel(projectID, mergeRequestID uint, rule *approval.Rule) (*models.ApprovalRuleModel, error) {
	approvers, err := json.Marshal(rule.ApproverIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal approver ids: %w", err)
	}
	groups, err := json.Marshal(rule.GroupIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal group ids: %w", err)
	}

	return &models.ApprovalRuleModel{
		ProjectID:         projectID,
		MergeRequestID:    mergeRequestID,
		Name:              rule.Name(),
		Kind:              rule.Kind().String(),
		Section:           rule.Section(),
		ApprovalsRequired: rule.ApprovalsRequired(),
		ApproverIDs:       datatypes.JSON(approvers),
		GroupIDs:          datatypes.JSON(groups),
		CreatedAt:         rule.CreatedAt(),
	}, nil
}
