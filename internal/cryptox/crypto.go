// Package cryptox implements the cryptographic primitives used by
// CipherDrop: random key/salt/nonce generation, PBKDF2-based key
// derivation from a user secret, AES-GCM seal/open, and base64url
// helpers for embedding key material in URLs and JSON fields.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// SaltSize is the PBKDF2 salt length in bytes.
	SaltSize = 16
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// MinIterations is the lowest PBKDF2 iteration count accepted by
	// DeriveIndexKey. Anything below is rejected as brute-forceable.
	MinIterations = 100_000
	// DefaultIterations is used when the caller has no stored parameter.
	DefaultIterations = 210_000
)

// GenerateFileKey returns a fresh random AES-256 key. Each file gets its
// own key, so nonce reuse across files is structurally impossible.
func GenerateFileKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}

// RandomSalt returns a fresh random PBKDF2 salt.
func RandomSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// RandomNonce returns a fresh random GCM nonce.
func RandomNonce() []byte {
	return common.GenerateRandByteArray(NonceSize)
}

// DeriveIndexKey derives a deterministic AES-256 key from a user secret
// via PBKDF2-HMAC-SHA256. The same (secret, salt, iterations) triple
// always yields the same key; this is required to decrypt an index blob
// written earlier.
//
// Returns common.ErrInvalidInput for an empty secret, a wrong-length
// salt, or an iteration count below MinIterations.
func DeriveIndexKey(secret, salt []byte, iterations int) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("empty secret: %w", common.ErrInvalidInput)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d: %w", SaltSize, len(salt), common.ErrInvalidInput)
	}
	if iterations < MinIterations {
		return nil, fmt.Errorf("iteration count %d below minimum %d: %w", iterations, MinIterations, common.ErrInvalidInput)
	}
	return pbkdf2.Key(secret, salt, iterations, KeySize, sha256.New), nil
}

// Seal encrypts plaintext with AES-GCM under the given key and nonce and
// returns ciphertext with the authentication tag appended.
//
// The caller is responsible for never reusing a (key, nonce) pair across
// different plaintexts.
func Seal(key, nonce, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// Open decrypts AES-GCM ciphertext produced by Seal and verifies its
// authentication tag. A failed tag check (wrong key or nonce, corrupted
// or tampered ciphertext) returns common.ErrAuthenticationFailed; garbage
// plaintext is never returned.
func Open(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthenticationFailed
	}
	return plaintext, nil
}

func newGCM(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d: %w", KeySize, len(key), common.ErrInvalidInput)
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d: %w", NonceSize, len(nonce), common.ErrInvalidInput)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncodeToURL encodes binary key material as unpadded base64url text,
// safe for URL fragments and JSON-stored fields.
func EncodeToURL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeFromURL reverses EncodeToURL. A malformed string returns
// common.ErrInvalidInput.
func DecodeFromURL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad base64url data: %w", common.ErrInvalidInput)
	}
	return b, nil
}
