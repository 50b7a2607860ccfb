package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordFormat(t *testing.T) {
	stored, err := HashPassword("hunter2")
	require.NoError(t, err)

	parts := strings.Split(stored, "$")
	require.Len(t, parts, 3)
	assert.Equal(t, "pbkdf2:sha256:600000", parts[0])
	assert.Len(t, parts[1], 64, "salt should be 32 bytes hex encoded")
	assert.Len(t, parts[2], 64, "hash should be 32 bytes hex encoded")
}

func TestHashPasswordSaltsAreRandom(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ by salt")
	assert.True(t, VerifyPassword("same-password", first))
	assert.True(t, VerifyPassword("same-password", second))
}

func TestVerifyPassword(t *testing.T) {
	stored, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		stored   string
		want     bool
	}{
		{name: "correct password", password: "correct horse battery staple", stored: stored, want: true},
		{name: "wrong password", password: "Tr0ub4dor&3", stored: stored, want: false},
		{name: "empty password", password: "", stored: stored, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.password, tt.stored))
		})
	}
}

// Malformed stored hashes must verify false without panicking, whatever shape
// the corruption takes.
func TestVerifyPasswordMalformedStored(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "empty string", stored: ""},
		{name: "no separators", stored: "pbkdf2:sha256:600000"},
		{name: "one separator", stored: "pbkdf2:sha256:600000$salt"},
		{name: "too many separators", stored: "pbkdf2:sha256:600000$salt$hash$extra"},
		{name: "wrong algorithm", stored: "bcrypt:sha256:600000$salt$hash"},
		{name: "wrong digest", stored: "pbkdf2:md5:600000$salt$hash"},
		{name: "non-numeric iterations", stored: "pbkdf2:sha256:lots$salt$hash"},
		{name: "zero iterations", stored: "pbkdf2:sha256:0$salt$hash"},
		{name: "negative iterations", stored: "pbkdf2:sha256:-1$salt$hash"},
		{name: "empty salt", stored: "pbkdf2:sha256:600000$$hash"},
		{name: "empty hash", stored: "pbkdf2:sha256:600000$salt$"},
		{name: "random garbage", stored: "not a hash at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, VerifyPassword("anything", tt.stored))
			})
		})
	}
}

func TestVerifyPasswordHonorsStoredIterationCount(t *testing.T) {
	// A hash recorded with a lower iteration count must still verify; the
	// count is read from the stored string, not assumed.
	const salt = "ab" // deliberately tiny, only the count is under test
	legacy := "pbkdf2:sha256:1000$" + salt + "$" + deriveHex("pw", salt, 1000)
	assert.True(t, VerifyPassword("pw", legacy))
	assert.False(t, VerifyPassword("other", legacy))
}
