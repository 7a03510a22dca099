// Package dto defines the transport representations of personal access
// tokens.
package dto

import (
	"time"

	"github.com/forgegate-inc/forgegate/internal/domain/token"
)

// TokenDTO is the transport representation of a personal access token. Token
// carries the plaintext secret and is only populated in the response that
// created or rotated it.
type TokenDTO struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	Name      string     `json:"name"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToTokenDTO maps a token record. plaintext is empty except on create and
// rotate responses.
func ToTokenDTO(t *token.PersonalAccessToken, plaintext string) *TokenDTO {
	if t == nil {
		return nil
	}
	return &TokenDTO{
		ID:        t.ID(),
		UserID:    t.UserID(),
		Name:      t.Name(),
		Token:     plaintext,
		ExpiresAt: t.ExpiresAt(),
		RevokedAt: t.RevokedAt(),
		Active:    t.Active(),
		CreatedAt: t.CreatedAt(),
	}
}
