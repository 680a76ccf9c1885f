// Package keyvault provides authenticated symmetric encryption for custodial
// wallet private keys at rest. Keys are sealed with AES-256-GCM and encoded as
// a colon-delimited hex payload; the vault itself is stateless and safe for
// concurrent use.
package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// encryptionKeySize is the required size, in bytes, of the decoded vault key.
// AES-256-GCM requires exactly 32 bytes of key material.
const encryptionKeySize = 32

// payloadSegments is the number of colon-delimited segments in a sealed
// payload: nonce, ciphertext and authentication tag.
const payloadSegments = 3

var (
	// ErrInvalidKeyLength is returned when the hex-decoded vault key is not
	// exactly 32 bytes long.
	ErrInvalidKeyLength = errors.New("vault key must decode to exactly 32 bytes")

	// ErrMalformedPayload is returned by Decrypt when the sealed payload does
	// not consist of three hex-encoded, colon-delimited segments.
	ErrMalformedPayload = errors.New("sealed payload is malformed")

	// ErrDecryptionFailed is returned when the authentication tag does not
	// verify. This failure is terminal: the payload was tampered with or
	// sealed under a different key, and retrying cannot succeed.
	ErrDecryptionFailed = errors.New("payload authentication failed")
)

// decodeKey hex-decodes the vault key and enforces the AES-256 key size.
func decodeKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyLength, err)
	}

	if len(key) != encryptionKeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeyLength, len(key))
	}

	return key, nil
}

// newGCM builds an AES-256-GCM AEAD from the given hex-encoded key.
func newGCM(hexKey string) (cipher.AEAD, error) {
	key, err := decodeKey(hexKey)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}

// Encrypt seals the given plaintext (typically a wallet private key) under the
// hex-encoded 32-byte vault key. The result is the concatenation of the
// random nonce, the ciphertext and the GCM authentication tag, each hex
// encoded and joined with ":".
//
// Returns ErrInvalidKeyLength if the key does not decode to 32 bytes.
func Encrypt(plaintext, hexKey string) (string, error) {
	aead, err := newGCM(hexKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	// Seal appends the authentication tag to the ciphertext; split it back
	// out so the payload carries the three segments separately.
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	tagOffset := len(sealed) - aead.Overhead()

	segments := []string{
		hex.EncodeToString(nonce),
		hex.EncodeToString(sealed[:tagOffset]),
		hex.EncodeToString(sealed[tagOffset:]),
	}

	return strings.Join(segments, ":"), nil
}

// Decrypt opens a payload produced by Encrypt using the hex-encoded 32-byte
// vault key and returns the original plaintext.
//
// Returns ErrMalformedPayload if the payload does not split into three hex
// segments, ErrInvalidKeyLength on a wrong-sized key, and ErrDecryptionFailed
// if the authentication tag does not verify.
//
// The returned plaintext is the raw private key: callers must use it for a
// single signing operation and must never log or persist it.
func Decrypt(payload, hexKey string) (string, error) {
	aead, err := newGCM(hexKey)
	if err != nil {
		return "", err
	}

	segments := strings.Split(payload, ":")
	if len(segments) != payloadSegments {
		return "", fmt.Errorf("%w: expected %d segments, got %d", ErrMalformedPayload, payloadSegments, len(segments))
	}

	decoded := make([][]byte, payloadSegments)
	for i, segment := range segments {
		if decoded[i], err = hex.DecodeString(segment); err != nil {
			return "", fmt.Errorf("%w: segment %d is not valid hex", ErrMalformedPayload, i)
		}
	}

	nonce, ciphertext, tag := decoded[0], decoded[1], decoded[2]
	if len(nonce) != aead.NonceSize() {
		return "", fmt.Errorf("%w: nonce must be %d bytes", ErrMalformedPayload, aead.NonceSize())
	}

	plaintext, err := aead.Open(nil, nonce, append(ciphertext, tag...), nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
