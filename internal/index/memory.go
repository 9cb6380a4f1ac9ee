package index

import (
	"context"
	"sync"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and by CLI runs without
// a database. It honors the same etag contract as the Postgres store.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]memoryEntry
}

type memoryEntry struct {
	blob Blob
	etag string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Load(ctx context.Context, userID string) (*Blob, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.blobs[userID]
	if !ok {
		return nil, "", common.ErrIndexNotFound
	}
	blob := e.blob // copy; callers must not alias stored state
	return &blob, e.etag, nil
}

func (s *MemoryStore) Save(ctx context.Context, userID string, blob *Blob, etag string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.blobs[userID]
	if etag == "" {
		if exists {
			return "", common.ErrConcurrentModification
		}
	} else if !exists || current.etag != etag {
		return "", common.ErrConcurrentModification
	}

	next := uuid.NewString()
	s.blobs[userID] = memoryEntry{blob: *blob, etag: next}
	return next, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, userID)
	return nil
}
