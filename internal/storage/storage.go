// Package storage is the blob-storage boundary. Stores accept and return
// opaque ciphertext bytes keyed by a storage path; nothing here ever
// interprets the data.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/google/uuid"
)

// BlobStore persists arbitrary ciphertext bytes under a storage key and
// returns them unchanged on fetch.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get returns common.ErrNotFound for an unknown key.
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// RandomStorageKey returns a date-partitioned random object key, e.g.
// "users/2026/8/31/5e0c…". Partitioning keeps bucket listings manageable;
// the uuid guarantees uniqueness.
func RandomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), int(d.Month()), d.Day(), uuid.New())
}

// MetadataKey returns the storage key of the encrypted metadata record
// stored alongside a file body.
func MetadataKey(key string) string {
	return key + ".meta"
}

// MemoryStore is an in-memory BlobStore for tests and database-less runs.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
