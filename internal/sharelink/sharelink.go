// Package sharelink encodes and decodes download URLs of the form
//
//	{base}/{fileID}#key=<base64url>&iv=<base64url>
//
// Key material lives exclusively in the fragment. Browsers never send the
// fragment in HTTP requests, so the server handling the download path
// never sees the key; this is the zero-knowledge property of the sharing
// design and must not be weakened by moving the material into the path or
// query string.
package sharelink

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/cryptox"
)

// KeyMaterial is the per-file key and nonce recovered from a share link,
// still in their base64url wire form.
type KeyMaterial struct {
	Key   string
	Nonce string
}

// Encode builds a share link for fileID under baseURL. keyB64 and
// nonceB64 must be unpadded base64url as produced by the envelope
// encryptor; they are validated before being placed in the fragment.
func Encode(baseURL, fileID, keyB64, nonceB64 string) (string, error) {
	if fileID == "" {
		return "", fmt.Errorf("empty file id: %w", common.ErrInvalidInput)
	}
	if err := validate(keyB64, cryptox.KeySize); err != nil {
		return "", fmt.Errorf("key: %w", err)
	}
	if err := validate(nonceB64, cryptox.NonceSize); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + url.PathEscape(fileID)

	frag := url.Values{}
	frag.Set("key", keyB64)
	frag.Set("iv", nonceB64)
	u.Fragment = ""
	u.RawFragment = ""

	// The fragment is assembled by hand: url.Values.Encode output is
	// already query-escaped and must not be escaped a second time.
	return u.String() + "#" + frag.Encode(), nil
}

// Decode parses a share link produced by Encode and returns the file
// identifier and the key material from the fragment.
//
// Returns common.ErrMissingKeyMaterial when the fragment is absent,
// either parameter is missing, or the material fails base64url decoding.
func Decode(rawURL string) (string, *KeyMaterial, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("parse url: %w", common.ErrMissingKeyMaterial)
	}
	if u.Fragment == "" {
		return "", nil, fmt.Errorf("no fragment: %w", common.ErrMissingKeyMaterial)
	}

	frag, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return "", nil, fmt.Errorf("parse fragment: %w", common.ErrMissingKeyMaterial)
	}

	keyB64 := frag.Get("key")
	nonceB64 := frag.Get("iv")
	if keyB64 == "" || nonceB64 == "" {
		return "", nil, fmt.Errorf("fragment lacks key or iv: %w", common.ErrMissingKeyMaterial)
	}
	if err := validate(keyB64, cryptox.KeySize); err != nil {
		return "", nil, fmt.Errorf("key: %w", common.ErrMissingKeyMaterial)
	}
	if err := validate(nonceB64, cryptox.NonceSize); err != nil {
		return "", nil, fmt.Errorf("nonce: %w", common.ErrMissingKeyMaterial)
	}

	fileID := u.Path[strings.LastIndex(u.Path, "/")+1:]
	fileID, err = url.PathUnescape(fileID)
	if err != nil || fileID == "" {
		return "", nil, fmt.Errorf("no file id in path: %w", common.ErrMissingKeyMaterial)
	}

	return fileID, &KeyMaterial{Key: keyB64, Nonce: nonceB64}, nil
}

func validate(b64 string, wantLen int) error {
	b, err := cryptox.DecodeFromURL(b64)
	if err != nil {
		return err
	}
	if len(b) != wantLen {
		return fmt.Errorf("expected %d bytes, got %d: %w", wantLen, len(b), common.ErrInvalidInput)
	}
	return nil
}
