// Package passwd verifies lockout passwords and PINs against stored hashes.
package passwd

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hash returns a bcrypt hash suitable for lockoutPassword.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches stored. Stored values are either
// bcrypt hashes or hex SHA-256 digests written by older installers.
func Verify(stored, password string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	if IsBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	want, err := hex.DecodeString(strings.ToLower(stored))
	if err != nil || len(want) != sha256.Size {
		return false
	}
	got := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(want, got[:]) == 1
}

// IsBcrypt reports whether s looks like a bcrypt hash.
func IsBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// VerifyPIN accepts either a hashed PIN (see Verify) or a plain one.
func VerifyPIN(stored, pin string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	if IsBcrypt(stored) || (len(stored) == 2*sha256.Size && isHex(stored)) {
		return Verify(stored, pin)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) == 1
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}
