// Package credentials implements salted password hashing and verification.
package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	versionPrefix = "v1:"
	saltLength    = 16
	keyLength     = 32
	iterations    = 120_000
)

// Hasher derives and verifies PBKDF2-HMAC-SHA256 password hashes encoded as
// "v1:" + base64(salt || key).
type Hasher struct{}

func NewHasher() *Hasher { return &Hasher{} }

// Hash derives a key from the plaintext with a fresh random salt.
func (h *Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	key := pbkdf2.Key([]byte(plain), salt, iterations, keyLength, sha256.New)
	buf := make([]byte, 0, saltLength+keyLength)
	buf = append(buf, salt...)
	buf = append(buf, key...)
	return versionPrefix + base64.StdEncoding.EncodeToString(buf), nil
}

// Verify recomputes the derivation and compares in constant time. It fails
// closed on any malformed input: empty hash, wrong version prefix, bad base64
// or wrong decoded length all return false without error.
func (h *Hasher) Verify(plain, encoded string) bool {
	if encoded == "" || !strings.HasPrefix(encoded, versionPrefix) {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, versionPrefix))
	if err != nil || len(raw) != saltLength+keyLength {
		return false
	}
	salt, stored := raw[:saltLength], raw[saltLength:]
	computed := pbkdf2.Key([]byte(plain), salt, iterations, keyLength, sha256.New)
	return subtle.ConstantTimeCompare(stored, computed) == 1
}
