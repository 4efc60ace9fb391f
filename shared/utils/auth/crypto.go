package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateInvitationToken returns an unguessable token for invitation accept
// links: 32 random bytes, hex encoded.
func GenerateInvitationToken() (string, error) {
	return GenerateRandomToken(32)
}

// GenerateRandomToken returns a hex string of length*2 characters built from
// crypto/rand bytes
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
