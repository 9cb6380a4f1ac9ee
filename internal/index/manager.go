package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/cryptox"
)

// Manager drives the per-user encrypted index state machine. Every
// operation takes the user secret explicitly; the manager never caches
// it. Each mutation is one read-modify-write cycle: load blob, derive
// key from (secret, stored salt), decrypt, mutate in memory, re-encrypt
// with a fresh nonce, persist under the etag observed at load time.
//
// Concurrency: cycles are not serialized internally. Two concurrent
// mutations of the same user's index race at the store, and the loser
// gets common.ErrConcurrentModification from the etag compare-and-swap;
// the caller retries. Lost updates cannot occur silently.
type Manager struct {
	store      Store
	iterations int
}

// NewManager builds a Manager over the given store. iterations is the
// PBKDF2 cost used for newly created indexes; 0 selects
// cryptox.DefaultIterations. Existing blobs always decrypt with the
// iteration count stored in their envelope.
func NewManager(store Store, iterations int) *Manager {
	if iterations == 0 {
		iterations = cryptox.DefaultIterations
	}
	return &Manager{store: store, iterations: iterations}
}

// Add upserts a record. An existing record with the same FileID is
// replaced, never duplicated. The first Add for a user creates the index
// with a fresh salt.
func (m *Manager) Add(ctx context.Context, userID string, secret []byte, rec FileRecord) error {
	if rec.FileID == "" {
		return fmt.Errorf("record has no file id: %w", common.ErrInvalidInput)
	}
	return m.mutate(ctx, userID, secret, func(records []FileRecord) ([]FileRecord, error) {
		out := removeByID(records, rec.FileID)
		return append(out, rec), nil
	})
}

// Remove deletes the record with the given file id. Removing an absent id
// is a no-op; delete is idempotent.
func (m *Manager) Remove(ctx context.Context, userID string, secret []byte, fileID string) error {
	return m.mutate(ctx, userID, secret, func(records []FileRecord) ([]FileRecord, error) {
		return removeByID(records, fileID), nil
	})
}

// RecordDownload increments the download counter for fileID. Past the
// record's max-download policy the counter stays put; enforcement of the
// limit itself belongs to the storage layer, this only tracks.
// Returns common.ErrNotFound when the id is not in the index.
func (m *Manager) RecordDownload(ctx context.Context, userID string, secret []byte, fileID string) error {
	return m.mutate(ctx, userID, secret, func(records []FileRecord) ([]FileRecord, error) {
		for i := range records {
			if records[i].FileID != fileID {
				continue
			}
			if records[i].MaxDownloads > 0 && records[i].Downloads >= records[i].MaxDownloads {
				return records, nil
			}
			records[i].Downloads++
			return records, nil
		}
		return nil, common.ErrNotFound
	})
}

// List decrypts and returns the current record list without mutating it.
// Returns common.ErrIndexNotFound when the user has no index yet; callers
// in the empty state should treat that as an empty list, not a failure.
func (m *Manager) List(ctx context.Context, userID string, secret []byte) ([]FileRecord, error) {
	blob, _, err := m.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return m.open(blob, secret)
}

// Get returns a single record by file id.
func (m *Manager) Get(ctx context.Context, userID string, secret []byte, fileID string) (*FileRecord, error) {
	records, err := m.List(ctx, userID, secret)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].FileID == fileID {
			return &records[i], nil
		}
	}
	return nil, common.ErrNotFound
}

// Destroy removes the user's index blob entirely.
func (m *Manager) Destroy(ctx context.Context, userID string) error {
	return m.store.Delete(ctx, userID)
}

func (m *Manager) mutate(ctx context.Context, userID string, secret []byte, fn func([]FileRecord) ([]FileRecord, error)) error {
	blob, etag, err := m.store.Load(ctx, userID)
	var (
		records []FileRecord
		salt    []byte
	)
	switch {
	case err == nil:
		salt = blob.Salt
		if records, err = m.open(blob, secret); err != nil {
			return err
		}
	case errors.Is(err, common.ErrIndexNotFound):
		// Empty -> Populated transition: fresh salt, empty list, no etag.
		salt = cryptox.RandomSalt()
		etag = ""
	default:
		return fmt.Errorf("load index: %w", err)
	}

	records, err = fn(records)
	if err != nil {
		return err
	}

	next, err := m.seal(records, secret, salt)
	if err != nil {
		return err
	}

	if _, err := m.store.Save(ctx, userID, next, etag); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}

// open decrypts a blob into its record list. A failed tag check is
// reported as common.ErrIncorrectSecret: with an authenticated cipher a
// wrong password is indistinguishable from corruption, and surfacing a
// distinct error keeps it from ever being mistaken for an empty list.
func (m *Manager) open(blob *Blob, secret []byte) ([]FileRecord, error) {
	if blob.Version != BlobVersion {
		return nil, fmt.Errorf("unsupported index blob version %d: %w", blob.Version, common.ErrInvalidInput)
	}

	key, err := cryptox.DeriveIndexKey(secret, blob.Salt, blob.Iterations)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	plain, err := cryptox.Open(key, blob.Nonce, blob.Ciphertext)
	if err != nil {
		if errors.Is(err, common.ErrAuthenticationFailed) {
			return nil, common.ErrIncorrectSecret
		}
		return nil, err
	}

	var records []FileRecord
	if err := json.Unmarshal(plain, &records); err != nil {
		return nil, fmt.Errorf("decode record list: %w", err)
	}
	return records, nil
}

// seal encrypts a record list into a new blob. The nonce is always fresh:
// the derived key is stable for a given (secret, salt), so reusing a
// nonce across writes would be catastrophic.
func (m *Manager) seal(records []FileRecord, secret, salt []byte) (*Blob, error) {
	iterations := m.iterations

	key, err := cryptox.DeriveIndexKey(secret, salt, iterations)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	plain, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode record list: %w", err)
	}

	nonce := cryptox.RandomNonce()
	ciphertext, err := cryptox.Seal(key, nonce, plain)
	if err != nil {
		return nil, err
	}

	return &Blob{
		Version:    BlobVersion,
		Salt:       salt,
		Iterations: iterations,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

func removeByID(records []FileRecord, fileID string) []FileRecord {
	out := records[:0]
	for _, r := range records {
		if r.FileID != fileID {
			out = append(out, r)
		}
	}
	return out
}
