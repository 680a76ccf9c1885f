package keyvault

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKey is a valid 32-byte vault key, hex encoded.
const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestEncrypt(t *testing.T) {
	t.Run("should produce a three segment hex payload", func(t *testing.T) {
		payload, err := Encrypt("4c0883a69102937d6231471b5dbb6204fe512961708279feb1be6ae5538da033", testKey)
		require.NoError(t, err)

		segments := strings.Split(payload, ":")
		require.Len(t, segments, 3)
		for _, segment := range segments {
			assert.NotEmpty(t, segment)
		}
	})

	t.Run("should produce distinct payloads for the same plaintext", func(t *testing.T) {
		first, err := Encrypt("secret", testKey)
		require.NoError(t, err)

		second, err := Encrypt("secret", testKey)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("should reject a key that is too short", func(t *testing.T) {
		_, err := Encrypt("secret", "deadbeef")
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
	})

	t.Run("should reject a key that is not hex", func(t *testing.T) {
		_, err := Encrypt("secret", strings.Repeat("zz", 32))
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
	})
}

func TestDecrypt(t *testing.T) {
	t.Run("should round trip any plaintext", func(t *testing.T) {
		for _, plaintext := range []string{
			"4c0883a69102937d6231471b5dbb6204fe512961708279feb1be6ae5538da033",
			"",
			"short",
		} {
			payload, err := Encrypt(plaintext, testKey)
			require.NoError(t, err)

			got, err := Decrypt(payload, testKey)
			require.NoError(t, err)
			assert.Equal(t, plaintext, got)
		}
	})

	t.Run("should reject a key of the wrong length", func(t *testing.T) {
		payload, err := Encrypt("secret", testKey)
		require.NoError(t, err)

		_, err = Decrypt(payload, testKey+"00")
		assert.ErrorIs(t, err, ErrInvalidKeyLength)
	})

	t.Run("should reject a payload with missing segments", func(t *testing.T) {
		_, err := Decrypt("deadbeef:cafe", testKey)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("should reject a payload with non hex segments", func(t *testing.T) {
		_, err := Decrypt("nothex:cafe:babe", testKey)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})

	t.Run("should fail authentication on a tampered ciphertext", func(t *testing.T) {
		payload, err := Encrypt("secret", testKey)
		require.NoError(t, err)

		segments := strings.Split(payload, ":")
		tampered := []byte(segments[1])
		if tampered[0] == 'f' {
			tampered[0] = '0'
		} else {
			tampered[0] = 'f'
		}
		segments[1] = string(tampered)

		_, err = Decrypt(strings.Join(segments, ":"), testKey)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("should fail authentication under a different key", func(t *testing.T) {
		otherKey := strings.Repeat("ab", 32)

		payload, err := Encrypt("secret", testKey)
		require.NoError(t, err)

		_, err = Decrypt(payload, otherKey)
		assert.ErrorIs(t, err, ErrDecryptionFailed)
	})
}
