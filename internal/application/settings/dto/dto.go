// Package dto defines the transport representations of group settings.
package dto

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/settings"
)

// GroupSettingDTO is the transport representation of a group's settings.
type GroupSettingDTO struct {
	GroupID                 uint      `json:"group_id"`
	DefaultBranchProtection int       `json:"default_branch_protection"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// ToGroupSettingDTO maps a group settings record.
func ToGroupSettingDTO(s *settings.GroupSetting) *GroupSettingDTO {
	if s == nil {
		return nil
	}
	return &GroupSettingDTO{
		GroupID:                 s.GroupID(),
		DefaultBranchProtection: int(s.DefaultBranchProtection()),
		UpdatedAt:               s.UpdatedAt(),
	}
}
