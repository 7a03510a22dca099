package models

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/shared/constants"
)

// AccessTokenModel represents the database persistence model for personal
// access tokens. Only the bcrypt hash of the token is stored.
type AccessTokenModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"not null;index:idx_token_user"`
	Name      string `gorm:"not null;size:255"`
	TokenHash string `gorm:"not null;size:128"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (AccessTokenModel) TableName() string {
	return constants.TableAccessTokens
}
