package accounts

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// newRawToken returns a 64-char hex bearer token. Only its hash is persisted.
func newRawToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken derives the storage form of a raw bearer token.
func HashToken(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}
