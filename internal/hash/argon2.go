// Package hash implements salted Argon2id password hashing. The stored format
// is "base64(salt).base64(hash)", so existing rows keep verifying even if the
// default parameters change for new hashes.
package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen     = 16
	keyLen      = 32
	iterations  = 3
	memoryKiB   = 46 * 1024
	parallelism = 8
)

// PasswordHashSalt hashes a password with a fresh random salt.
func PasswordHashSalt(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, iterations, memoryKiB, parallelism, keyLen)

	return base64.StdEncoding.EncodeToString(salt) + "." + base64.StdEncoding.EncodeToString(sum), nil
}

// Verify reports whether password matches the stored salt.hash string.
// Malformed stored values verify as false, never as an error, so a corrupt
// row behaves like a wrong password.
func Verify(password, stored string) bool {
	parts := strings.Split(stored, ".")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memoryKiB, parallelism, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1
}
