package models

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// MemberModel represents the database persistence model for membership grants
// This is the anti-corruption layer between domain and database
type MemberModel struct {
	ID           uint   `gorm:"primarykey"`
	ActorID      uint   `gorm:"not null;uniqueIndex:idx_unique_member,priority:1;index:idx_member_actor"`
	ResourceID   uint   `gorm:"not null;uniqueIndex:idx_unique_member,priority:2;index:idx_member_resource"`
	AccessLevel  int    `gorm:"not null"`
	State        string `gorm:"not null;size:20;default:active;index:idx_member_state"`
	Source       string `gorm:"not null;size:20;default:direct"`
	LDAPOverride bool   `gorm:"not null;default:false"`
	MemberRoleID uint   `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (MemberModel) TableName() string {
	return constants.TableMembers
}
