package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptTokenHasher hashes personal access token secrets. Only the hash is
// ever persisted.
type BcryptTokenHasher struct {
	cost int
}

// NewBcryptTokenHasher creates a hasher, clamping the cost into bcrypt's
// valid range.
func NewBcryptTokenHasher(cost int) *BcryptTokenHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptTokenHasher{cost: cost}
}

// Hash returns the bcrypt hash of the token secret.
func (h *BcryptTokenHasher) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to generate token hash: %w", err)
	}
	return string(hash), nil
}

// Verify compares a plaintext secret against a stored hash. The error is
// generic regardless of cause so callers cannot distinguish a wrong secret
// from a malformed hash.
func (h *BcryptTokenHasher) Verify(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return fmt.Errorf("token verification failed")
	}
	return nil
}
