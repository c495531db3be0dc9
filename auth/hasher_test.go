package auth_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollwise/pollwise/auth"
)

func TestHashPassword(t *testing.T) {
	t.Run("produces base64 hash and salt", func(t *testing.T) {
		hash, salt, err := auth.HashPassword("s3cret-password")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.NotEmpty(t, salt)

		rawHash, err := base64.StdEncoding.DecodeString(hash)
		require.NoError(t, err)
		assert.Len(t, rawHash, 32)

		rawSalt, err := base64.StdEncoding.DecodeString(salt)
		require.NoError(t, err)
		assert.Len(t, rawSalt, 32)
	})

	t.Run("uses a fresh salt per call", func(t *testing.T) {
		hash1, salt1, err := auth.HashPassword("same-password")
		require.NoError(t, err)

		hash2, salt2, err := auth.HashPassword("same-password")
		require.NoError(t, err)

		assert.NotEqual(t, salt1, salt2)
		assert.NotEqual(t, hash1, hash2)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		_, _, err := auth.HashPassword("")
		assert.Error(t, err)
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, salt, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	t.Run("accepts matching password", func(t *testing.T) {
		assert.True(t, auth.VerifyPassword("correct horse battery staple", hash, salt))
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		assert.False(t, auth.VerifyPassword("wrong password", hash, salt))
	})

	t.Run("rejects wrong salt", func(t *testing.T) {
		_, otherSalt, err := auth.HashPassword("correct horse battery staple")
		require.NoError(t, err)

		assert.False(t, auth.VerifyPassword("correct horse battery staple", hash, otherSalt))
	})

	t.Run("rejects tampered hash", func(t *testing.T) {
		tampered := "A" + hash[1:]
		if tampered == hash {
			tampered = "B" + hash[1:]
		}
		assert.False(t, auth.VerifyPassword("correct horse battery staple", tampered, salt))
	})

	t.Run("rejects empty inputs without error", func(t *testing.T) {
		assert.False(t, auth.VerifyPassword("", hash, salt))
		assert.False(t, auth.VerifyPassword("correct horse battery staple", "", salt))
		assert.False(t, auth.VerifyPassword("correct horse battery staple", hash, ""))
	})
}
