// Package internal holds token-material helpers shared by the engine and its
// stores. Everything here is crypto/rand backed.
package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

const (
	sessionTokenSize  = 32
	refreshSecretSize = 32
)

// NewSessionToken returns an unguessable opaque session identifier:
// 32 random bytes, base64url without padding.
func NewSessionToken() (string, error) {
	raw := make([]byte, sessionTokenSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// NewRefreshSecret returns the opaque per-session refresh secret that is
// embedded in refresh tokens. Only its hash is ever persisted.
func NewRefreshSecret() (string, error) {
	raw := make([]byte, refreshSecretSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// HashSecret returns the hex-encoded SHA-256 of a secret, the only form in
// which refresh secrets touch storage.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// SecretMatchesHash compares a presented secret against a stored hash in
// constant time.
func SecretMatchesHash(secret, storedHash string) bool {
	presented := HashSecret(secret)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(storedHash)) == 1
}
