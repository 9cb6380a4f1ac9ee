package files

import (
	"context"
	"sync"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/common"
)

// MemoryRepository is an in-memory Repository for tests and database-less
// CLI runs.
type MemoryRepository struct {
	mu   sync.Mutex
	rows map[string]File
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]File)}
}

func (r *MemoryRepository) CreateOrUpdate(ctx context.Context, f *File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rows[f.FileID]; ok {
		// Mirror the SQL upsert: the counter survives updates.
		f.Downloads = existing.Downloads
	}
	r.rows[f.FileID] = *f
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, fileID string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[fileID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &f, nil
}

func (r *MemoryRepository) RegisterDownload(ctx context.Context, fileID string, now time.Time) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.rows[fileID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if f.ExpiresAt != nil && !f.ExpiresAt.After(now) {
		return nil, common.ErrLinkExpired
	}
	if f.MaxDownloads > 0 && f.Downloads >= f.MaxDownloads {
		return nil, common.ErrDownloadLimitReached
	}
	f.Downloads++
	r.rows[fileID] = f
	return &f, nil
}

func (r *MemoryRepository) DeleteByID(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[fileID]; !ok {
		return common.ErrNotFound
	}
	delete(r.rows, fileID)
	return nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var keys []string
	for id, f := range r.rows {
		if f.ExpiresAt != nil && !f.ExpiresAt.After(now) {
			keys = append(keys, f.StorageKey)
			delete(r.rows, id)
		}
	}
	return keys, nil
}
