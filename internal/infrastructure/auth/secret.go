package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenPrefix marks personal access token plaintexts so leaked secrets can be
// recognized by scanners.
const TokenPrefix = "fgpat-"

const secretRandomBytes = 20

// NewAccessTokenSecret generates a fresh personal access token plaintext.
// The plaintext exists only in the response that created it; callers hash it
// before persisting.
func NewAccessTokenSecret() (string, error) {
	raw := make([]byte, secretRandomBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(raw), nil
}
