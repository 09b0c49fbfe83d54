package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword      = "SecurePassword123!"
	testWrongPassword = "WrongPassword456!"
)

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword(testPassword)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"), hash)
	assert.NotContains(t, hash, testPassword)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword(testPassword)
	require.NoError(t, err)
	hash2, err := HashPassword(testPassword)
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "Same password should produce different hashes due to unique salt")
}

func TestVerifyPassword_TableDriven(t *testing.T) {
	testCases := []struct {
		name        string
		password    string
		attempt     string
		expectMatch bool
	}{
		{"correct_password", testPassword, testPassword, true},
		{"incorrect_password", testPassword, testWrongPassword, false},
		{"empty_password", "", "", true},
		{"case_sensitive", "Password123", "password123", false},
		{"whitespace_matters", "Password123 ", "Password123", false},
		{"unicode_password", "Contraseña_ñ_ü", "Contraseña_ñ_ü", true},
		{"long_password", strings.Repeat("a", 1000), strings.Repeat("a", 1000), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hash, err := HashPassword(tc.password)
			require.NoError(t, err)

			match, err := VerifyPassword(tc.attempt, hash)

			require.NoError(t, err)
			assert.Equal(t, tc.expectMatch, match)
		})
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	invalidHashes := []string{
		"",
		"plain-text-not-hash",
		"$invalid$format$",
		"$argon2id$v=19$m=65536",
		"$argon2id$v=19$m=65536$corrupted",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	}

	for _, invalidHash := range invalidHashes {
		t.Run(invalidHash, func(t *testing.T) {
			match, err := VerifyPassword(testPassword, invalidHash)

			assert.ErrorIs(t, err, ErrInvalidHash)
			assert.False(t, match)
		})
	}
}

func TestVerifyPassword_IncompatibleVersion(t *testing.T) {
	match, err := VerifyPassword(testPassword, "$argon2id$v=16$m=65536,t=1,p=4$c2FsdA$aGFzaA")

	assert.ErrorIs(t, err, ErrIncompatibleVersion)
	assert.False(t, match)
}

func TestVerifyPassword_CustomParams(t *testing.T) {
	cheap := Argon2Params{Memory: 8 * 1024, Iterations: 2, Parallelism: 1, SaltLength: 8, KeyLength: 16}

	hash, err := HashPasswordWithParams(testPassword, cheap)
	require.NoError(t, err)

	match, err := VerifyPassword(testPassword, hash)
	require.NoError(t, err)
	assert.True(t, match, "verification reads the params from the hash")
	assert.True(t, NeedsRehash(hash))
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword(testPassword)
	require.NoError(t, err)

	assert.False(t, NeedsRehash(hash))
	assert.True(t, NeedsRehash("garbage"))
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword(testPassword)
	}
}
