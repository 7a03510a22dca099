package settings

import "context"

// Repository defines persistence operations for group settings.
type Repository interface {
	// GetByGroup loads the group's settings record, or a not found error when
	// the group has never been configured.
	GetByGroup(ctx context.Context, groupID uint) (*GroupSetting, error)

	// Save upserts the settings record.
	Save(ctx context.Context, setting *GroupSetting) error
}
