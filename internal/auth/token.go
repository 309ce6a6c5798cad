package auth

import (
	"crypto/rand"
	"encoding/hex"
)

const tokenBytes = 32

// NewSessionToken returns 64 hex characters of crypto/rand material.
func NewSessionToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
