package storage

import (
	"context"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/netx"
)

// Presigner issues short-lived signed transfer URLs for storage keys.
// *S3Store satisfies it.
type Presigner interface {
	PresignPut(ctx context.Context, key string, expires time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// PresignedStore is a BlobStore that moves bytes over presigned URLs
// instead of the S3 API. This mirrors what the browser client does: the
// backend signs, the client transfers ciphertext directly.
type PresignedStore struct {
	signer  Presigner
	expires time.Duration
}

func NewPresignedStore(signer Presigner, expires time.Duration) *PresignedStore {
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	return &PresignedStore{signer: signer, expires: expires}
}

func (s *PresignedStore) Put(ctx context.Context, key string, data []byte) error {
	url, err := s.signer.PresignPut(ctx, key, s.expires)
	if err != nil {
		return err
	}
	return netx.UploadToPresignedURL(ctx, url, data)
}

func (s *PresignedStore) Get(ctx context.Context, key string) ([]byte, error) {
	url, err := s.signer.PresignGet(ctx, key, s.expires)
	if err != nil {
		return nil, err
	}
	return netx.DownloadFromPresignedURL(ctx, url)
}

func (s *PresignedStore) Delete(ctx context.Context, key string) error {
	return s.signer.Delete(ctx, key)
}
