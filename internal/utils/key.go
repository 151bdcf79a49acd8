package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// KeyLength is the length of a generated token key in hex characters
const KeyLength = 40

// GenerateKey returns a random opaque token key
func GenerateKey() (string, error) {
	b := make([]byte, KeyLength/2)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
