package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// ApprovalRuleModel represents the database persistence model for merge
// request approval rules. Project rules (MergeRequestID=0) are templates;
// rows with a merge request id are snapshots taken at MR creation.
type ApprovalRuleModel struct {
	ID                uint   `gorm:"primarykey"`
	ProjectID         uint   `gorm:"not null;index:idx_rule_project"`
	MergeRequestID    uint   `gorm:"not null;default:0;index:idx_rule_mr"`
	Name              string `gorm:"not null;size:255"`
	Kind              string `gorm:"not null;size:20"`
	Section           string `gorm:"size:255"`
	ApprovalsRequired int    `gorm:"not null;default:0"`
	ApproverIDs       datatypes.JSON
	GroupIDs          datatypes.JSON
	CreatedAt         time.Time
}

// TableName specifies the table name for GORM
func (ApprovalRuleModel) TableName() string {
	return constants.TableApprovalRules
}

// MergeRequestApprovalModel is one actor's approval of a merge request head
type MergeRequestApprovalModel struct {
	ID             uint   `gorm:"primarykey"`
	MergeRequestID uint   `gorm:"not null;uniqueIndex:idx_unique_mr_approval,priority:1;index:idx_approval_mr"`
	ActorID        uint   `gorm:"not null;uniqueIndex:idx_unique_mr_approval,priority:2"`
	SHA            string `gorm:"not null;size:64"`
	CreatedAt      time.Time
}

// TableName specifies the table name for GORM
func (MergeRequestApprovalModel) TableName() string {
	return constants.TableMergeRequestApprovals
}

// MergeRequestModel pins the head SHA approvals are validated against
type MergeRequestModel struct {
	ID        uint   `gorm:"primarykey"`
	ProjectID uint   `gorm:"not null;index:idx_mr_project"`
	HeadSHA   string `gorm:"not null;size:64"`
	State     string `gorm:"not null;size:20;default:opened"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (MergeRequestModel) TableName() string {
	return constants.TableMergeRequests
}
