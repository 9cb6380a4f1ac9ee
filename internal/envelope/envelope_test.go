package envelope

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/cryptox"
)

func testMeta(size int64) FileMetadata {
	return FileMetadata{
		Name:       "report.pdf",
		Size:       size,
		MimeType:   "application/pdf",
		UploadedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	ctx := context.Background()
	data := []byte("hello12345")

	ef, err := Encrypt(ctx, data, testMeta(10))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	got, meta, err := Decrypt(ctx, ef.Body, ef.Metadata, ef.Key, ef.Nonce)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("body mismatch: got %q, want %q", got, data)
	}
	if meta.Size != 10 {
		t.Fatalf("metadata size = %d, want 10", meta.Size)
	}
	if meta.Name != "report.pdf" || meta.MimeType != "application/pdf" {
		t.Fatalf("metadata mismatch: %+v", meta)
	}
}

func TestEncrypt_KeyUniqueness(t *testing.T) {
	ctx := context.Background()
	data := []byte("same plaintext")

	a, err := Encrypt(ctx, data, testMeta(int64(len(data))))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := Encrypt(ctx, data, testMeta(int64(len(data))))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if a.Key == b.Key {
		t.Error("two encryptions of the same file produced the same key")
	}
	if bytes.Equal(a.Body, b.Body) {
		t.Error("two encryptions of the same file produced the same ciphertext")
	}
}

func TestDecrypt_ZeroNonce(t *testing.T) {
	ctx := context.Background()

	ef, err := Encrypt(ctx, []byte("hello12345"), testMeta(10))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	zero := cryptox.EncodeToURL(make([]byte, cryptox.NonceSize))
	_, _, err = Decrypt(ctx, ef.Body, ef.Metadata, ef.Key, zero)
	if !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestDecrypt_TamperedBody(t *testing.T) {
	ctx := context.Background()

	ef, err := Encrypt(ctx, []byte("hello12345"), testMeta(10))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	tampered := bytes.Clone(ef.Body)
	tampered[len(tampered)/2] ^= 0x01

	_, _, err = Decrypt(ctx, tampered, ef.Metadata, ef.Key, ef.Nonce)
	if !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestDecrypt_SwappedCiphertexts(t *testing.T) {
	ctx := context.Background()

	ef, err := Encrypt(ctx, []byte("hello12345"), testMeta(10))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// Both ciphertexts authenticate under the shared key/nonce, so the
	// domain prefix is what must reject the swap.
	_, _, err = Decrypt(ctx, ef.Metadata, ef.Body, ef.Key, ef.Nonce)
	if !errors.Is(err, common.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestDecrypt_MalformedKeyMaterial(t *testing.T) {
	ctx := context.Background()

	ef, err := Encrypt(ctx, []byte("x"), testMeta(1))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	_, _, err = Decrypt(ctx, ef.Body, ef.Metadata, "!!!not-base64!!!", ef.Nonce)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEncrypt_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Encrypt(ctx, []byte("data"), testMeta(4)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	_, _, err := Decrypt(ctx, []byte("c"), []byte("m"), cryptox.EncodeToURL(cryptox.GenerateFileKey()), cryptox.EncodeToURL(cryptox.RandomNonce()))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEncryptDecrypt_EmptyFile(t *testing.T) {
	ctx := context.Background()

	ef, err := Encrypt(ctx, nil, testMeta(0))
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	got, meta, err := Decrypt(ctx, ef.Body, ef.Metadata, ef.Key, ef.Nonce)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty body, got %d bytes", len(got))
	}
	if meta.Size != 0 {
		t.Fatalf("metadata size = %d, want 0", meta.Size)
	}
}
