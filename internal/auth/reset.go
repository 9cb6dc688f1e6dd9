package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// NewResetToken returns a 256-bit random token, hex-encoded. Stored
// tokens are compared by exact string equality.
func NewResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
