package security

import (
	"crypto/rand"
	"errors"
)

const (
	secretAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	tokenIDAlphabet = "abcdefghijkmnopqrstuvwxyz23456789"

	SecretLength  = 48
	tokenIDLength = 20
)

var (
	errNegativeLength  = errors.New("length must be non-negative")
	errInvalidAlphabet = errors.New("alphabet must hold 1 to 256 bytes")
)

// GenerateSecret returns a random HMAC key for auth.secret_key.
func GenerateSecret() (string, error) {
	return randomString(SecretLength, secretAlphabet)
}

// newTokenID fills the jti claim of issued tokens.
func newTokenID() (string, error) {
	return randomString(tokenIDLength, tokenIDAlphabet)
}

// randomString rejects bytes at or above the largest multiple of len(alphabet)
// so every character stays equally likely.
func randomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if alphabet == "" || len(alphabet) > 256 {
		return "", errInvalidAlphabet
	}

	size := len(alphabet)
	limit := 256 - 256%size
	value := make([]byte, 0, length)
	buf := make([]byte, length+8)
	for len(value) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			value = append(value, alphabet[int(b)%size])
			if len(value) == length {
				break
			}
		}
	}
	return string(value), nil
}
