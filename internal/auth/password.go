package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-HMAC-SHA256 with the OWASP-recommended iteration count. Stored
// hashes carry the iteration count so it can be raised later without
// invalidating existing rows.
const (
	pbkdf2Iterations = 600000
	saltBytes        = 32
	keyBytes         = 32
)

// HashPassword derives a salted PBKDF2 hash for storage in the form
// pbkdf2:sha256:<iterations>$<salt>$<hash>.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", pbkdf2Iterations, saltHex, deriveHex(password, saltHex, pbkdf2Iterations)), nil
}

// VerifyPassword checks a candidate password against a stored hash string.
// Malformed input returns false; it never panics and never logs the password.
func VerifyPassword(password, stored string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 {
		return false
	}
	algo, salt, expected := parts[0], parts[1], parts[2]

	algoParts := strings.Split(algo, ":")
	if len(algoParts) != 3 || algoParts[0] != "pbkdf2" || algoParts[1] != "sha256" {
		return false
	}
	iterations, err := strconv.Atoi(algoParts[2])
	if err != nil || iterations <= 0 {
		return false
	}
	if salt == "" || expected == "" {
		return false
	}

	actual := deriveHex(password, salt, iterations)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}

// deriveHex is deterministic for a fixed (password, salt, iterations). The
// salt is fed to PBKDF2 as its hex encoding, matching the stored format.
func deriveHex(password, saltHex string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(saltHex), iterations, keyBytes, sha256.New)
	return hex.EncodeToString(key)
}
