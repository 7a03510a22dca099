package models

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// MemberRoleModel represents the database persistence model for custom roles.
// Ability grants live in the casbin policy store, not here.
type MemberRoleModel struct {
	ID          uint   `gorm:"primarykey"`
	NamespaceID uint   `gorm:"not null;uniqueIndex:idx_unique_role_name,priority:1"`
	Name        string `gorm:"not null;size:255;uniqueIndex:idx_unique_role_name,priority:2"`
	BaseLevel   int    `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName specifies the table name for GORM
func (MemberRoleModel) TableName() string {
	return constants.TableMemberRoles
}
