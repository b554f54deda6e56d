package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

const (
	ResetTokenTTL   = 5 * time.Minute
	resetTokenBytes = 32
)

// NewResetToken returns a random hex token for the email link and the
// SHA-256 digest of it for storage. Only the digest is ever persisted.
func NewResetToken() (plain, hashed string, err error) {
	raw := make([]byte, resetTokenBytes)
	if _, err = io.ReadFull(rand.Reader, raw); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	plain = hex.EncodeToString(raw)
	return plain, HashResetToken(plain), nil
}

func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// VerifyResetToken reports whether candidateHash equals storedHash and now
// is strictly before the stored expiry. A nil expiry never verifies.
func VerifyResetToken(candidateHash, storedHash string, storedExpiry *time.Time, now time.Time) bool {
	if storedExpiry == nil || storedHash == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(candidateHash), []byte(storedHash)) != 1 {
		return false
	}
	return now.Before(*storedExpiry)
}
