package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// AuditEventModel represents the database persistence model for audit trail
// events
type AuditEventModel struct {
	ID           uint   `gorm:"primarykey"`
	ActorID      uint   `gorm:"not null;index:idx_audit_actor"`
	Action       string `gorm:"not null;size:64"`
	ResourceKind string `gorm:"not null;size:20;index:idx_audit_resource,priority:1"`
	ResourceID   uint   `gorm:"not null;index:idx_audit_resource,priority:2"`
	Reason       string `gorm:"not null;size:32"`
	Details      datatypes.JSON
	CreatedAt    time.Time `gorm:"index:idx_audit_created"`
}

// TableName specifies the table name for GORM
func (AuditEventModel) TableName() string {
	return constants.TableAuditEvents
}
