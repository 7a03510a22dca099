package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// ResourceModel represents the database persistence model for resource nodes.
// The ancestor chain is denormalized into a JSON column so role resolution
// loads it in the same row read; licensing columns carry the namespace
// subscription state.
type ResourceModel struct {
	ID               uint   `gorm:"primarykey"`
	Kind             string `gorm:"not null;size:20;index:idx_resource_kind"`
	Name             string `gorm:"not null;size:255"`
	Visibility       string `gorm:"not null;size:20;default:private"`
	ParentID         uint   `gorm:"not null;default:0;index:idx_resource_parent"`
	AncestorIDs      datatypes.JSON
	Plan             string `gorm:"not null;size:20;default:free"`
	LicenseExpiresAt *time.Time
	FeatureOverrides datatypes.JSON
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM
func (ResourceModel) TableName() string {
	return constants.TableResources
}
