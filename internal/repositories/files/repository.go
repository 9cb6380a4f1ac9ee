// Package files persists the plaintext-side metadata the server must be
// able to enforce without decrypting anything: storage locations, sizes,
// expiry, and download limits. File names and keys never appear here;
// they live only inside the encrypted index.
package files

import (
	"context"
	"time"
)

// File is one metadata row. MaxDownloads == 0 means unlimited;
// ExpiresAt == nil means the link never expires.
type File struct {
	FileID       string
	StorageKey   string
	Size         int64
	MimeType     string
	CreatedAt    time.Time
	ExpiresAt    *time.Time
	MaxDownloads int
	Downloads    int
}

// Repository is the metadata-database boundary.
type Repository interface {
	// CreateOrUpdate upserts a row by file id.
	CreateOrUpdate(ctx context.Context, f *File) error

	// GetByID returns common.ErrNotFound for an unknown id.
	GetByID(ctx context.Context, fileID string) (*File, error)

	// RegisterDownload validates download policy and increments the
	// counter in one step. Returns common.ErrLinkExpired past ExpiresAt,
	// common.ErrDownloadLimitReached at the MaxDownloads cap, and
	// common.ErrNotFound for an unknown id.
	RegisterDownload(ctx context.Context, fileID string, now time.Time) (*File, error)

	// DeleteByID removes a row. Unknown ids return common.ErrNotFound.
	DeleteByID(ctx context.Context, fileID string) error

	// DeleteExpired removes all rows whose expiry has passed and returns
	// the storage keys of the deleted files so blobs can be collected.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}
