// Package envelope implements per-file envelope encryption: every file is
// sealed under a freshly generated AES-256 key and GCM nonce, together
// with a small metadata record, and the key material is exported in
// base64url form for embedding in a share-link fragment.
package envelope

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/cryptox"
)

// FileMetadata is the plaintext attribute record sealed alongside the
// file body under the same key and nonce.
type FileMetadata struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// EncryptedFile is the result of sealing one file. Body and Metadata are
// AEAD ciphertexts (tag appended); Key and Nonce are the exported
// base64url key material meant to travel in a URL fragment or inside an
// encrypted index record, never server-side in plaintext.
type EncryptedFile struct {
	Body     []byte
	Metadata []byte
	Key      string
	Nonce    string
}

// Encrypt seals data and meta under a fresh per-file key and nonce.
//
// Body and metadata share the same (key, nonce) pair. That reuse is safe
// here only because the key is generated per call and never used again;
// the metadata record carries a domain prefix so the two ciphertexts are
// never interchangeable.
//
// The context is checked between stages; a cancelled context aborts the
// operation and no partial result is returned.
func Encrypt(ctx context.Context, data []byte, meta FileMetadata) (*EncryptedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cryptox.GenerateFileKey()
	nonce := cryptox.RandomNonce()

	metaPlain, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	metaCipher, err := cryptox.Seal(key, nonce, withDomain(domainMetadata, metaPlain))
	if err != nil {
		return nil, fmt.Errorf("seal metadata: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bodyCipher, err := cryptox.Seal(key, nonce, withDomain(domainBody, data))
	if err != nil {
		return nil, fmt.Errorf("seal body: %w", err)
	}

	return &EncryptedFile{
		Body:     bodyCipher,
		Metadata: metaCipher,
		Key:      cryptox.EncodeToURL(key),
		Nonce:    cryptox.EncodeToURL(nonce),
	}, nil
}

// Decrypt reverses Encrypt. The metadata record is opened first: it is
// small, and a failed tag check there rejects a wrong key or nonce before
// committing to a potentially large body.
//
// Returns common.ErrAuthenticationFailed when either tag check fails and
// common.ErrInvalidInput when the key material does not decode. Plaintext
// is never returned on failure.
func Decrypt(ctx context.Context, body, metaCipher []byte, keyB64, nonceB64 string) ([]byte, *FileMetadata, error) {
	key, err := cryptox.DecodeFromURL(keyB64)
	if err != nil {
		return nil, nil, fmt.Errorf("decode key: %w", err)
	}
	nonce, err := cryptox.DecodeFromURL(nonceB64)
	if err != nil {
		return nil, nil, fmt.Errorf("decode nonce: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	metaPlain, err := openWithDomain(key, nonce, metaCipher, domainMetadata)
	if err != nil {
		return nil, nil, fmt.Errorf("open metadata: %w", err)
	}
	var meta FileMetadata
	if err := json.Unmarshal(metaPlain, &meta); err != nil {
		return nil, nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	data, err := openWithDomain(key, nonce, body, domainBody)
	if err != nil {
		return nil, nil, fmt.Errorf("open body: %w", err)
	}

	return data, &meta, nil
}

// Single-byte domain prefixes keep the body and metadata ciphertexts from
// being swapped for one another under the shared (key, nonce) pair.
const (
	domainBody     byte = 0x01
	domainMetadata byte = 0x02
)

func withDomain(d byte, b []byte) []byte {
	out := make([]byte, 0, len(b)+1)
	out = append(out, d)
	return append(out, b...)
}

// openWithDomain decrypts and verifies that the plaintext carries the
// expected domain prefix. A mismatch means the body and metadata
// ciphertexts were swapped; that is tampering, not a format error.
func openWithDomain(key, nonce, ciphertext []byte, want byte) ([]byte, error) {
	plain, err := cryptox.Open(key, nonce, ciphertext)
	if err != nil {
		return nil, err
	}
	if len(plain) == 0 || plain[0] != want {
		return nil, common.ErrAuthenticationFailed
	}
	return plain[1:], nil
}
