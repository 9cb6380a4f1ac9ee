package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/dbx"
)

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, f *File) error {
	query := `
		INSERT INTO files (file_id, storage_key, size, mime_type, created_at, expires_at, max_downloads, downloads)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (file_id)
		DO UPDATE SET
			storage_key = EXCLUDED.storage_key,
			size = EXCLUDED.size,
			mime_type = EXCLUDED.mime_type,
			expires_at = EXCLUDED.expires_at,
			max_downloads = EXCLUDED.max_downloads
			WHERE files.file_id = EXCLUDED.file_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		f.FileID, f.StorageKey, f.Size, f.MimeType, f.CreatedAt, f.ExpiresAt, f.MaxDownloads, f.Downloads)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, fileID string) (*File, error) {
	query := `SELECT file_id, storage_key, size, mime_type, created_at, expires_at, max_downloads, downloads
		FROM files WHERE file_id=$1`

	f := &File{}
	err := r.db.QueryRowContext(ctx, query, fileID).
		Scan(&f.FileID, &f.StorageKey, &f.Size, &f.MimeType, &f.CreatedAt, &f.ExpiresAt, &f.MaxDownloads, &f.Downloads)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return f, nil
}

// RegisterDownload increments the counter atomically; the WHERE clause is
// the policy check, so a concurrent flood of downloads cannot pass the
// cap.
func (r *PostgresRepository) RegisterDownload(ctx context.Context, fileID string, now time.Time) (*File, error) {
	query := `
		UPDATE files
		SET downloads = downloads + 1
		WHERE file_id=$1
		  AND (expires_at IS NULL OR expires_at > $2)
		  AND (max_downloads = 0 OR downloads < max_downloads)
		RETURNING file_id, storage_key, size, mime_type, created_at, expires_at, max_downloads, downloads;
	`
	f := &File{}
	err := r.db.QueryRowContext(ctx, query, fileID, now).
		Scan(&f.FileID, &f.StorageKey, &f.Size, &f.MimeType, &f.CreatedAt, &f.ExpiresAt, &f.MaxDownloads, &f.Downloads)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish policy refusal from a missing row.
		existing, getErr := r.GetByID(ctx, fileID)
		if getErr != nil {
			return nil, getErr
		}
		if existing.ExpiresAt != nil && !existing.ExpiresAt.After(now) {
			return nil, common.ErrLinkExpired
		}
		return nil, common.ErrDownloadLimitReached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register download: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, fileID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE file_id=$1`, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	query := `DELETE FROM files WHERE expires_at IS NOT NULL AND expires_at <= $1 RETURNING storage_key`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to delete expired files: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
