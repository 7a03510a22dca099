// Package settings models per-group configuration knobs that feed back into
// authorization, most notably the default branch protection level applied to
// new projects in the group.
package settings

import (
	"fmt"
	"time"
)

// BranchProtectionLevel encodes how strongly a group's default branch is
// protected out of the box.
type BranchProtectionLevel int

const (
	// ProtectionNone leaves the default branch unprotected.
	ProtectionNone BranchProtectionLevel = 0
	// ProtectionPartial lets developers push to the default branch.
	ProtectionPartial BranchProtectionLevel = 1
	// ProtectionFull restricts push and force-push to maintainers. This is
	// the value unlicensed or restricted requests fall back to.
	ProtectionFull BranchProtectionLevel = 2
	// ProtectionMaintainerMerge lets developers merge but not push.
	ProtectionMaintainerMerge BranchProtectionLevel = 3
)

// IsValid checks if the protection level is a known value
func (l BranchProtectionLevel) IsValid() bool {
	switch l {
	case ProtectionNone, ProtectionPartial, ProtectionFull, ProtectionMaintainerMerge:
		return true
	default:
		return false
	}
}

// GroupSetting is the per-group configuration aggregate.
type GroupSetting struct {
	id                      uint
	groupID                 uint
	defaultBranchProtection BranchProtectionLevel
	updatedAt               time.Time
}

// NewGroupSetting creates a group's settings record with the given default
// branch protection.
func NewGroupSetting(groupID uint, level BranchProtectionLevel) (*GroupSetting, error) {
	if groupID == 0 {
		return nil, fmt.Errorf("group ID is required")
	}
	if !level.IsValid() {
		return nil, fmt.Errorf("invalid branch protection level: %d", level)
	}
	return &GroupSetting{
		groupID:                 groupID,
		defaultBranchProtection: level,
		updatedAt:               time.Now(),
	}, nil
}

// ReconstructGroupSetting reconstructs a settings record from persistence.
func ReconstructGroupSetting(id, groupID uint, level BranchProtectionLevel, updatedAt time.Time) (*GroupSetting, error) {
	if id == 0 {
		return nil, fmt.Errorf("group setting ID cannot be zero")
	}
	if !level.IsValid() {
		return nil, fmt.Errorf("invalid branch protection level: %d", level)
	}
	return &GroupSetting{
		id:                      id,
		groupID:                 groupID,
		defaultBranchProtection: level,
		updatedAt:               updatedAt,
	}, nil
}

// ID returns the setting record ID
func (s *GroupSetting) ID() uint {
	return s.id
}

// SetID sets the record ID (only for persistence layer use)
func (s *GroupSetting) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("group setting ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("group setting ID cannot be zero")
	}
	s.id = id
	return nil
}

// GroupID returns the group the settings belong to
func (s *GroupSetting) GroupID() uint {
	return s.groupID
}

// DefaultBranchProtection returns the configured protection level
func (s *GroupSetting) DefaultBranchProtection() BranchProtectionLevel {
	return s.defaultBranchProtection
}

// UpdatedAt returns the last update timestamp
func (s *GroupSetting) UpdatedAt() time.Time {
	return s.updatedAt
}

// SetDefaultBranchProtection updates the protection level.
func (s *GroupSetting) SetDefaultBranchProtection(level BranchProtectionLevel) error {
	if !level.IsValid() {
		return fmt.Errorf("invalid branch protection level: %d", level)
	}
	s.defaultBranchProtection = level
	s.updatedAt = time.Now()
	return nil
}
