package models

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// DeploymentApprovalModel represents the database persistence model for
// deployment approvals. The unique index over (deployment, approver) is the
// backstop that makes concurrent duplicate submissions a conflict instead of
// a double count.
type DeploymentApprovalModel struct {
	ID                   uint   `gorm:"primarykey"`
	DeploymentID         uint   `gorm:"not null;uniqueIndex:idx_unique_deploy_approval,priority:1;index:idx_approval_deployment"`
	ApproverID           uint   `gorm:"not null;uniqueIndex:idx_unique_deploy_approval,priority:2"`
	SHA                  string `gorm:"not null;size:64"`
	Status               string `gorm:"not null;size:10"`
	Comment              string `gorm:"size:255"`
	RepresentedAsGroupID uint   `gorm:"not null;default:0"`
	CreatedAt            time.Time
}

// TableName specifies the table name for GORM
func (DeploymentApprovalModel) TableName() string {
	return constants.TableDeploymentApprovals
}

// DeploymentModel is the deployment row approvals hang off: it pins the head
// SHA approvals are validated against
type DeploymentModel struct {
	ID              uint   `gorm:"primarykey"`
	ProjectID       uint   `gorm:"not null;index:idx_deployment_project"`
	EnvironmentName string `gorm:"not null;size:255"`
	SHA             string `gorm:"not null;size:64"`
	Status          string `gorm:"not null;size:20;default:blocked"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the table name for GORM
func (DeploymentModel) TableName() string {
	return constants.TableDeployments
}
