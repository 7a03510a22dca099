package models

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// GroupSettingModel represents the database persistence model for per-group
// settings.
type GroupSettingModel struct {
	ID                      uint `gorm:"primarykey"`
	GroupID                 uint `gorm:"not null;uniqueIndex:idx_unique_group_setting"`
	DefaultBranchProtection int  `gorm:"not null;default:2"`
	UpdatedAt               time.Time
}

// TableName specifies the table name for GORM
func (GroupSettingModel) TableName() string {
	return constants.TableGroupSettings
}
