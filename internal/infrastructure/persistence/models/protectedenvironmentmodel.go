package models

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// ProtectedEnvironmentModel represents the database persistence model for
// protected environments
type ProtectedEnvironmentModel struct {
	ID                    uint   `gorm:"primarykey"`
	Name                  string `gorm:"not null;size:255;uniqueIndex:idx_unique_env_rule,priority:3"`
	Scope                 string `gorm:"not null;size:10;uniqueIndex:idx_unique_env_rule,priority:1"`
	ScopeID               uint   `gorm:"not null;uniqueIndex:idx_unique_env_rule,priority:2;index:idx_env_scope"`
	RequiredApprovalCount int    `gorm:"not null;default:0"`
	CreatedAt             time.Time
	UpdatedAt             time.Time

	DeployAccessLevels []DeployAccessLevelModel `gorm:"foreignKey:ProtectedEnvironmentID;constraint:OnDelete:CASCADE"`
	ApprovalRules      []EnvApprovalRuleModel   `gorm:"foreignKey:ProtectedEnvironmentID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (ProtectedEnvironmentModel) TableName() string {
	return constants.TableProtectedEnvironments
}

// DeployAccessLevelModel is one deploy access entry of a protected environment
type DeployAccessLevelModel struct {
	ID                     uint   `gorm:"primarykey"`
	ProtectedEnvironmentID uint   `gorm:"not null;index:idx_deploy_env"`
	EntryKind              string `gorm:"not null;size:10"` // role | user | group
	AccessLevel            int    `gorm:"not null;default:0"`
	UserID                 uint   `gorm:"not null;default:0"`
	GroupID                uint   `gorm:"not null;default:0"`
	GroupInheritance       int    `gorm:"not null;default:0"`
	CreatedAt              time.Time
}

// TableName specifies the table name for GORM
func (DeployAccessLevelModel) TableName() string {
	return constants.TableDeployAccessLevels
}

// EnvApprovalRuleModel is one approval rule of a protected environment
type EnvApprovalRuleModel struct {
	ID                     uint   `gorm:"primarykey"`
	ProtectedEnvironmentID uint   `gorm:"not null;index:idx_approval_env"`
	EntryKind              string `gorm:"not null;size:10"`
	AccessLevel            int    `gorm:"not null;default:0"`
	UserID                 uint   `gorm:"not null;default:0"`
	GroupID                uint   `gorm:"not null;default:0"`
	GroupInheritance       int    `gorm:"not null;default:0"`
	RequiredApprovals      int    `gorm:"not null;default:1"`
	CreatedAt              time.Time
}

// TableName specifies the table name for GORM
func (EnvApprovalRuleModel) TableName() string {
	return constants.TableEnvApprovalRules
}
