package models

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// StatusCheckModel represents the database persistence model for external
// status checks
type StatusCheckModel struct {
	ID        uint   `gorm:"primarykey"`
	ProjectID uint   `gorm:"not null;index:idx_check_project"`
	Name      string `gorm:"not null;size:255"`
	URL       string `gorm:"not null;size:1024"`
	LastState string `gorm:"not null;size:10;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (StatusCheckModel) TableName() string {
	return constants.TableStatusChecks
}
