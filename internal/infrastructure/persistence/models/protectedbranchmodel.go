package models

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// ProtectedBranchModel represents the database persistence model for
// protected branch rules
type ProtectedBranchModel struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"not null;size:255;uniqueIndex:idx_unique_branch_rule,priority:3"`
	Scope     string `gorm:"not null;size:10;uniqueIndex:idx_unique_branch_rule,priority:1"`
	ScopeID   uint   `gorm:"not null;uniqueIndex:idx_unique_branch_rule,priority:2;index:idx_branch_scope"`
	CreatedAt time.Time
	UpdatedAt time.Time

	AccessEntries []BranchAccessEntryModel `gorm:"foreignKey:ProtectedBranchID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (ProtectedBranchModel) TableName() string {
	return constants.TableProtectedBranches
}

// BranchAccessEntryModel is one push or merge access entry of a protected
// branch rule
type BranchAccessEntryModel struct {
	ID                uint   `gorm:"primarykey"`
	ProtectedBranchID uint   `gorm:"not null;index:idx_entry_branch"`
	BranchAction      string `gorm:"not null;size:10"` // push | merge
	EntryKind         string `gorm:"not null;size:10"` // role | user | group
	AccessLevel       int    `gorm:"not null;default:0"`
	UserID            uint   `gorm:"not null;default:0"`
	GroupID           uint   `gorm:"not null;default:0"`
	GroupInheritance  int    `gorm:"not null;default:0"`
	CreatedAt         time.Time
}

// TableName specifies the table name for GORM
func (BranchAccessEntryModel) TableName() string {
	return constants.TableBranchAccessEntries
}
