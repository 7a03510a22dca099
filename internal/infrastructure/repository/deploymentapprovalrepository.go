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

// DeploymentApprovalRepositoryImpl implements the
// protection.DeploymentApprovalRepository interface
type DeploymentApprovalRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewDeploymentApprovalRepository creates a new deployment approval
// repository instance
func NewDeploymentApprovalRepository(db *gorm.DB, logger logger.Interface) protection.DeploymentApprovalRepository {
	return &DeploymentApprovalRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// Create persists an approval. The unique index over (deployment, approver)
// turns concurrent duplicate submissions into a conflict here rather than a
// second row.
func (r *DeploymentApprovalRepositoryImpl) Create(ctx context.Context, approval *protection.DeploymentApproval) error {
	model := &models.DeploymentApprovalModel{
		DeploymentID:         approval.DeploymentID(),
		ApproverID:           approval.ApproverID(),
		SHA:                  approval.SHA(),
		Status:               approval.Status().String(),
		Comment:              approval.Comment(),
		RepresentedAsGroupID: approval.RepresentedAsGroupID(),
		CreatedAt:            approval.CreatedAt(),
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("deployment already approved by this user")
		}
		r.logger.Errorw("failed to create deployment approval",
			"deployment_id", approval.DeploymentID(),
			"approver_id", approval.ApproverID(),
			"error", err)
		return fmt.Errorf("failed to create deployment approval: %w", err)
	}

	if err := approval.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set deployment approval ID", "error", err)
		return fmt.Errorf("failed to set deployment approval ID: %w", err)
	}

	r.logger.Infow("deployment approval created",
		"id", model.ID,
		"deployment_id", model.DeploymentID,
		"approver_id", model.ApproverID,
		"status", model.Status)
	return nil
}

// ListForDeployment returns every approval recorded for a deployment
func (r *DeploymentApprovalRepositoryImpl) ListForDeployment(ctx context.Context, deploymentID uint) ([]*protection.DeploymentApproval, error) {
	var rows []models.DeploymentApprovalModel
	if err := r.db.WithContext(ctx).
		Where("deployment_id = ?", deploymentID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list deployment approvals", "deployment_id", deploymentID, "error", err)
		return nil, fmt.Errorf("failed to list deployment approvals: %w", err)
	}

	approvals := make([]*protection.DeploymentApproval, len(rows))
	for i, row := range rows {
		approval, err := protection.ReconstructDeploymentApproval(
			row.ID,
			row.DeploymentID,
			row.ApproverID,
			row.SHA,
			protection.ApprovalStatus(row.Status),
			row.Comment,
			row.RepresentedAsGroupID,
			row.CreatedAt,
		)
		if err != nil {
			r.logger.Errorw("failed to reconstruct deployment approval", "id", row.ID, "error", err)
			return nil, fmt.Errorf("failed to reconstruct deployment approval: %w", err)
		}
		approvals[i] = approval
	}
	return approvals, nil
}

// DeploymentRepositoryImpl implements the protection.DeploymentRepository
// interface
type DeploymentRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewDeploymentRepository creates a new deployment repository instance
func NewDeploymentRepository(db *gorm.DB, logger logger.Interface) protection.DeploymentRepository {
	return &DeploymentRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// GetByID resolves the deployment head approvals are validated against
func (r *DeploymentRepositoryImpl) GetByID(ctx context.Context, id uint) (*protection.Deployment, error) {
	var model models.DeploymentModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("deployment not found")
		}
		r.logger.Errorw("failed to get deployment", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get deployment: %w", err)
	}

	return &protection.Deployment{
		ID:              model.ID,
		ProjectID:       model.ProjectID,
		EnvironmentName: model.EnvironmentName,
		SHA:             model.SHA,
		Status:          model.Status,
	}, nil
}
