// Package service contains the application service gluing the crypto
// core to its external collaborators: blob storage, the metadata
// database, and the encrypted index.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/envelope"
	"github.com/cipherdrop/cipherdrop/internal/index"
	"github.com/cipherdrop/cipherdrop/internal/logging"
	"github.com/cipherdrop/cipherdrop/internal/repositories/files"
	"github.com/cipherdrop/cipherdrop/internal/sharelink"
	"github.com/cipherdrop/cipherdrop/internal/storage"
	"github.com/google/uuid"
)

// TransferService orchestrates uploads and downloads. Ciphertext is the
// only thing that leaves this process: blob storage sees sealed bytes,
// the metadata database sees sizes and policies, and the index store
// sees an opaque encrypted blob.
type TransferService struct {
	blobs   storage.BlobStore
	files   files.Repository
	index   *index.Manager
	baseURL string
	log     logging.Logger
}

func NewTransferService(blobs storage.BlobStore, filesRepo files.Repository, idx *index.Manager, baseURL string, log logging.Logger) *TransferService {
	return &TransferService{
		blobs:   blobs,
		files:   filesRepo,
		index:   idx,
		baseURL: baseURL,
		log:     log,
	}
}

// UploadOptions carries the optional download policy for a new file.
type UploadOptions struct {
	ExpiresAt    *time.Time
	MaxDownloads int
}

// UploadResult is what the caller needs after a successful upload: the
// stable file id and the shareable link with key material in the
// fragment.
type UploadResult struct {
	FileID   string
	ShareURL string
}

// Upload encrypts data under a fresh per-file key, persists ciphertext
// and metadata, merges a record into the user's encrypted index, and
// returns the share link.
func (s *TransferService) Upload(ctx context.Context, userID string, secret []byte, name, mimeType string, data []byte, opts UploadOptions) (*UploadResult, error) {
	meta := envelope.FileMetadata{
		Name:       name,
		Size:       int64(len(data)),
		MimeType:   mimeType,
		UploadedAt: time.Now().UTC(),
	}

	ef, err := envelope.Encrypt(ctx, data, meta)
	if err != nil {
		return nil, fmt.Errorf("encrypt file: %w", err)
	}

	fileID := uuid.NewString()
	storageKey := storage.RandomStorageKey()

	if err := s.blobs.Put(ctx, storageKey, ef.Body); err != nil {
		return nil, fmt.Errorf("store ciphertext: %w", err)
	}
	if err := s.blobs.Put(ctx, storage.MetadataKey(storageKey), ef.Metadata); err != nil {
		return nil, fmt.Errorf("store encrypted metadata: %w", err)
	}

	if err := s.files.CreateOrUpdate(ctx, &files.File{
		FileID:       fileID,
		StorageKey:   storageKey,
		Size:         meta.Size,
		MimeType:     mimeType,
		CreatedAt:    meta.UploadedAt,
		ExpiresAt:    opts.ExpiresAt,
		MaxDownloads: opts.MaxDownloads,
	}); err != nil {
		return nil, fmt.Errorf("persist file metadata: %w", err)
	}

	rec := index.FileRecord{
		FileID:       fileID,
		Name:         name,
		Size:         meta.Size,
		MimeType:     mimeType,
		StorageKey:   storageKey,
		Key:          ef.Key,
		Nonce:        ef.Nonce,
		UploadedAt:   meta.UploadedAt,
		ExpiresAt:    opts.ExpiresAt,
		MaxDownloads: opts.MaxDownloads,
	}
	if err := s.index.Add(ctx, userID, secret, rec); err != nil {
		return nil, fmt.Errorf("update index: %w", err)
	}

	link, err := sharelink.Encode(s.baseURL, fileID, ef.Key, ef.Nonce)
	if err != nil {
		return nil, fmt.Errorf("build share link: %w", err)
	}

	s.log.Info(ctx, "file uploaded", "file_id", fileID, "size", meta.Size)
	return &UploadResult{FileID: fileID, ShareURL: link}, nil
}

// DownloadResult is a decrypted file plus its recovered metadata.
type DownloadResult struct {
	Data     []byte
	Metadata envelope.FileMetadata
}

// Download resolves a share link: registers the download against the
// metadata database (which enforces expiry and the max-download cap),
// fetches ciphertext, and decrypts it with the key material from the
// fragment.
func (s *TransferService) Download(ctx context.Context, link string) (*DownloadResult, error) {
	fileID, km, err := sharelink.Decode(link)
	if err != nil {
		return nil, err
	}

	f, err := s.files.RegisterDownload(ctx, fileID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("register download: %w", err)
	}

	body, err := s.blobs.Get(ctx, f.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("fetch ciphertext: %w", err)
	}
	metaCipher, err := s.blobs.Get(ctx, storage.MetadataKey(f.StorageKey))
	if err != nil {
		return nil, fmt.Errorf("fetch encrypted metadata: %w", err)
	}

	data, meta, err := envelope.Decrypt(ctx, body, metaCipher, km.Key, km.Nonce)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "file downloaded", "file_id", fileID, "size", meta.Size)
	return &DownloadResult{Data: data, Metadata: *meta}, nil
}

// List returns the records in the user's index. A user with no index yet
// gets an empty list, not an error.
func (s *TransferService) List(ctx context.Context, userID string, secret []byte) ([]index.FileRecord, error) {
	records, err := s.index.List(ctx, userID, secret)
	if err != nil {
		if errors.Is(err, common.ErrIndexNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// ShareLink rebuilds the share link for an already-uploaded file from its
// index record.
func (s *TransferService) ShareLink(ctx context.Context, userID string, secret []byte, fileID string) (string, error) {
	rec, err := s.index.Get(ctx, userID, secret, fileID)
	if err != nil {
		return "", err
	}
	return sharelink.Encode(s.baseURL, rec.FileID, rec.Key, rec.Nonce)
}

// RecordDownload updates the owner-visible download counter inside the
// encrypted index. The authoritative policy check lives in the metadata
// database; this keeps the owner's view in sync.
func (s *TransferService) RecordDownload(ctx context.Context, userID string, secret []byte, fileID string) error {
	return s.index.RecordDownload(ctx, userID, secret, fileID)
}

// Delete removes a file everywhere: both blobs, the metadata row, and
// the index record.
func (s *TransferService) Delete(ctx context.Context, userID string, secret []byte, fileID string) error {
	rec, err := s.index.Get(ctx, userID, secret, fileID)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, rec.StorageKey); err != nil {
		return fmt.Errorf("delete ciphertext: %w", err)
	}
	if err := s.blobs.Delete(ctx, storage.MetadataKey(rec.StorageKey)); err != nil {
		return fmt.Errorf("delete encrypted metadata: %w", err)
	}
	if err := s.files.DeleteByID(ctx, fileID); err != nil && !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("delete file metadata: %w", err)
	}
	if err := s.index.Remove(ctx, userID, secret, fileID); err != nil {
		return fmt.Errorf("update index: %w", err)
	}

	s.log.Info(ctx, "file deleted", "file_id", fileID)
	return nil
}

// PurgeExpired drops expired metadata rows and their blobs. Intended to
// be invoked by the host application on a schedule; the core itself runs
// no timers.
func (s *TransferService) PurgeExpired(ctx context.Context) (int, error) {
	keys, err := s.files.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired metadata: %w", err)
	}
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.log.Warn(ctx, "failed to delete expired blob", "storage_key", key, "error", err)
			continue
		}
		if err := s.blobs.Delete(ctx, storage.MetadataKey(key)); err != nil {
			s.log.Warn(ctx, "failed to delete expired metadata blob", "storage_key", key, "error", err)
		}
	}
	return len(keys), nil
}
