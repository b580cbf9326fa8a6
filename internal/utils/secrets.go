package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MinJWTSecretBytes is the smallest signing secret the server accepts
const MinJWTSecretBytes = 32

// GenerateSecret generates a cryptographically secure random secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecret generates a signing secret of at least MinJWTSecretBytes
func GenerateJWTSecret(bytes int) (string, error) {
	if bytes < MinJWTSecretBytes {
		bytes = MinJWTSecretBytes
	}
	secret, err := GenerateSecret(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	return secret, nil
}
