package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/dbx"
	"github.com/google/uuid"
)

// PostgresStore persists index blobs in the user_index table, one row per
// user, over a dbx.DBTX (*sql.DB or *sql.Tx). The etag column carries the
// optimistic-concurrency token; every successful Save rewrites it.
type PostgresStore struct {
	db dbx.DBTX
}

// NewPostgresStore constructs a store bound to the given DBTX.
func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, userID string) (*Blob, string, error) {
	query := `SELECT version, salt, iterations, nonce, ciphertext, etag FROM user_index WHERE user_id=$1`

	var (
		blob Blob
		etag string
	)
	err := s.db.QueryRowContext(ctx, query, userID).
		Scan(&blob.Version, &blob.Salt, &blob.Iterations, &blob.Nonce, &blob.Ciphertext, &etag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", common.ErrIndexNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to select index blob: %w", err)
	}
	return &blob, etag, nil
}

func (s *PostgresStore) Save(ctx context.Context, userID string, blob *Blob, etag string) (string, error) {
	next := uuid.NewString()

	var (
		res sql.Result
		err error
	)
	if etag == "" {
		query := `
		INSERT INTO user_index (user_id, version, salt, iterations, nonce, ciphertext, etag, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (user_id) DO NOTHING;
		`
		res, err = s.db.ExecContext(ctx, query,
			userID, blob.Version, blob.Salt, blob.Iterations, blob.Nonce, blob.Ciphertext, next)
	} else {
		query := `
		UPDATE user_index
		SET version=$3, salt=$4, iterations=$5, nonce=$6, ciphertext=$7, etag=$8, updated_at=now()
		WHERE user_id=$1 AND etag=$2;
		`
		res, err = s.db.ExecContext(ctx, query,
			userID, etag, blob.Version, blob.Salt, blob.Iterations, blob.Nonce, blob.Ciphertext, next)
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return next, nil
	case 0:
		// Row appeared (insert) or etag moved on (update) since Load.
		return "", common.ErrConcurrentModification
	default:
		return "", fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_index WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("failed to delete index blob: %w", err)
	}
	return nil
}
