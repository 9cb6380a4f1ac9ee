// Package common defines shared constants and sentinel errors used across
// CipherDrop components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Primitive-level errors (malformed parameters: wrong-length salt or
	// nonce, empty secret, bad base64 key material).
	ErrInvalidInput = errors.New("invalid input")

	// Decryption errors. ErrAuthenticationFailed means the AEAD tag check
	// failed: wrong key or nonce, corrupted ciphertext, or tampering.
	// ErrIncorrectSecret is the index-specific refinement raised when the
	// failure is attributable to a wrong user secret; it wraps
	// ErrAuthenticationFailed so both match via errors.Is.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Index lifecycle errors.
	ErrIndexNotFound          = errors.New("index not found")
	ErrConcurrentModification = errors.New("concurrent modification")

	// Share-link errors (URL fragment absent or unparsable).
	ErrMissingKeyMaterial = errors.New("missing key material")

	// Download policy errors.
	ErrDownloadLimitReached = errors.New("download limit reached")
	ErrLinkExpired          = errors.New("link expired")
)

// ErrIncorrectSecret wraps ErrAuthenticationFailed so callers can either
// treat it as a generic tag-check failure or prompt for the secret again.
var ErrIncorrectSecret = fmt.Errorf("incorrect secret: %w", ErrAuthenticationFailed)
