// Package token issues the single-use secrets mailed to users for email
// verification and password reset.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Size is the number of random bytes in a token (64 hex characters).
const Size = 32

// Issue returns a new random token, hex encoded so it can be used directly
// as a URL path segment. It panics if the system entropy source fails.
func Issue() string {
	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("token: failed to read random bytes: %v", err))
	}
	return hex.EncodeToString(buf)
}

// Hash returns the SHA-256 digest of a raw token, hex encoded. Only digests
// are persisted; the raw value exists in the outgoing email alone.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
