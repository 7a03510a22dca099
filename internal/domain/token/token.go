// Package token models personal access tokens. Only the bcrypt hash of a
// token is ever stored; the plaintext exists once, in the response that
// created or rotated it.
package token

import (
	"fmt"
	"time"
)

// PersonalAccessToken is one API credential owned by one user.
type PersonalAccessToken struct {
	id        uint
	userID    uint
	name      string
	hash      string
	expiresAt time.Time
	revokedAt *time.Time
	createdAt time.Time
}

// NewPersonalAccessToken creates a token record around an already-computed
// hash.
func NewPersonalAccessToken(userID uint, name, hash string, expiresAt time.Time) (*PersonalAccessToken, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("token name is required")
	}
	if hash == "" {
		return nil, fmt.Errorf("token hash is required")
	}
	return &PersonalAccessToken{
		userID:    userID,
		name:      name,
		hash:      hash,
		expiresAt: expiresAt,
		createdAt: time.Now(),
	}, nil
}

// ReconstructPersonalAccessToken reconstructs a token from persistence.
func ReconstructPersonalAccessToken(id, userID uint, name, hash string, expiresAt time.Time, revokedAt *time.Time, createdAt time.Time) (*PersonalAccessToken, error) {
	if id == 0 {
		return nil, fmt.Errorf("token ID cannot be zero")
	}
	return &PersonalAccessToken{
		id:        id,
		userID:    userID,
		name:      name,
		hash:      hash,
		expiresAt: expiresAt,
		revokedAt: revokedAt,
		createdAt: createdAt,
	}, nil
}

// ID returns the token ID
func (t *PersonalAccessToken) ID() uint {
	return t.id
}

// SetID sets the token ID (only for persistence layer use)
func (t *PersonalAccessToken) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("token ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("token ID cannot be zero")
	}
	t.id = id
	return nil
}

// UserID returns the owning user
func (t *PersonalAccessToken) UserID() uint {
	return t.userID
}

// Name returns the token name
func (t *PersonalAccessToken) Name() string {
	return t.name
}

// Hash returns the bcrypt hash of the token secret
func (t *PersonalAccessToken) Hash() string {
	return t.hash
}

// ExpiresAt returns the expiry timestamp
func (t *PersonalAccessToken) ExpiresAt() time.Time {
	return t.expiresAt
}

// CreatedAt returns when the token was created
func (t *PersonalAccessToken) CreatedAt() time.Time {
	return t.createdAt
}

// RevokedAt returns when the token was revoked, nil if it never was
func (t *PersonalAccessToken) RevokedAt() *time.Time {
	return t.revokedAt
}

// Revoked reports whether the token has been revoked.
func (t *PersonalAccessToken) Revoked() bool {
	return t.revokedAt != nil
}

// Active reports whether the token is usable right now.
func (t *PersonalAccessToken) Active() bool {
	return !t.Revoked() && time.Now().Before(t.expiresAt)
}

// Revoke marks the token unusable. Revoking twice is a no-op.
func (t *PersonalAccessToken) Revoke() {
	if t.revokedAt != nil {
		return
	}
	now := time.Now()
	t.revokedAt = &now
}

// BelongsTo reports whether the token is owned by the given user. Rotation
// handlers use this to refuse cross-user rotation before doing anything else.
func (t *PersonalAccessToken) BelongsTo(userID uint) bool {
	return t.userID == userID
}
