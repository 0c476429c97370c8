package security

import (
	"crypto/rand"
	"encoding/hex"
)

// NewOpaqueToken returns a cryptographically random 256-bit token string,
// hex-encoded. Used for refresh tokens, whose only meaning is as a ledger
// lookup key; no claims are embedded.
func NewOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
