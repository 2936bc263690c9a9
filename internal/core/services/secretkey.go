package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	secretKeyLength   = 12
	secretKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// generateSecretKey draws each symbol uniformly from secretKeyAlphabet.
func generateSecretKey() (string, error) {
	max := big.NewInt(int64(len(secretKeyAlphabet)))
	key := make([]byte, secretKeyLength)
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		key[i] = secretKeyAlphabet[n.Int64()]
	}
	return string(key), nil
}
