package token

import (
	"context"
	"errors"
)

// ErrTokenNotFound is returned when no token matches the lookup
var ErrTokenNotFound = errors.New("personal access token not found")

// Hasher hashes token secrets for storage and verifies presented secrets
// against stored hashes.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) error
}

// SecretSource generates fresh token plaintexts.
type SecretSource func() (string, error)

// Repository defines persistence operations for personal access tokens.
type Repository interface {
	Create(ctx context.Context, t *PersonalAccessToken) error
	Update(ctx context.Context, t *PersonalAccessToken) error
	GetByID(ctx context.Context, id uint) (*PersonalAccessToken, error)

	// GetByUserAndID scopes the lookup to one owner: a token owned by someone
	// else is ErrTokenNotFound, so rotation can never leak another user's
	// token ids.
	GetByUserAndID(ctx context.Context, userID, id uint) (*PersonalAccessToken, error)
}
