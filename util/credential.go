// api/util/credential.go
package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateSecret produces a random static secret for an AgentCredential or
// AdminUser row. The raw value is returned to the caller exactly once; only
// its bcrypt hash and an 8-character prefix (for diagnostics and lookup) are
// persisted.
func GenerateSecret() (raw, hash, prefix string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", fmt.Errorf("generate secret: %w", err)
	}
	raw = hex.EncodeToString(buf)

	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hash secret: %w", err)
	}

	return raw, string(hashed), raw[:8], nil
}

// VerifySecret reports whether raw hashes to hash.
func VerifySecret(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
