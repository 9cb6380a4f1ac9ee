package service

import (
	"context"
	"testing"
	"time"

	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/cryptox"
	"github.com/cipherdrop/cipherdrop/internal/index"
	"github.com/cipherdrop/cipherdrop/internal/logging"
	"github.com/cipherdrop/cipherdrop/internal/repositories"
	"github.com/cipherdrop/cipherdrop/internal/storage"
	"github.com/stretchr/testify/require"
)

const (
	testUser = "user-1"
	baseURL  = "https://drop.example.com/d"
)

var testSecret = []byte("correct horse battery staple")

func newTestService(t *testing.T) (*TransferService, *storage.MemoryStore) {
	t.Helper()
	blobs := storage.NewMemoryStore()
	mgr := repositories.NewMemoryManager()
	idx := index.NewManager(mgr.Index(), cryptox.MinIterations)
	svc := NewTransferService(blobs, mgr.Files(), idx, baseURL, logging.NewDefault())
	return svc, blobs
}

func TestUploadDownload_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	data := []byte("hello12345")

	res, err := svc.Upload(ctx, testUser, testSecret, "hello.txt", "text/plain", data, UploadOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, res.FileID)
	require.Contains(t, res.ShareURL, "#key=")

	got, err := svc.Download(ctx, res.ShareURL)
	require.NoError(t, err)
	require.Equal(t, data, got.Data)
	require.Equal(t, int64(10), got.Metadata.Size)
	require.Equal(t, "hello.txt", got.Metadata.Name)
	require.Equal(t, "text/plain", got.Metadata.MimeType)
}

func TestUpload_CiphertextIsOpaque(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()
	data := []byte("top secret contents")

	_, err := svc.Upload(ctx, testUser, testSecret, "secret.txt", "text/plain", data, UploadOptions{})
	require.NoError(t, err)

	records, err := svc.List(ctx, testUser, testSecret)
	require.NoError(t, err)
	require.Len(t, records, 1)

	body, err := blobs.Get(ctx, records[0].StorageKey)
	require.NoError(t, err)
	require.NotContains(t, string(body), "top secret")

	metaBlob, err := blobs.Get(ctx, storage.MetadataKey(records[0].StorageKey))
	require.NoError(t, err)
	require.NotContains(t, string(metaBlob), "secret.txt")
}

func TestList_EmptyIndexIsNotAnError(t *testing.T) {
	svc, _ := newTestService(t)

	records, err := svc.List(context.Background(), testUser, testSecret)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestDownload_MaxDownloadsEnforced(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, testUser, testSecret, "once.txt", "text/plain", []byte("x"), UploadOptions{MaxDownloads: 1})
	require.NoError(t, err)

	_, err = svc.Download(ctx, res.ShareURL)
	require.NoError(t, err)

	_, err = svc.Download(ctx, res.ShareURL)
	require.ErrorIs(t, err, common.ErrDownloadLimitReached)
}

func TestDownload_Expired(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	res, err := svc.Upload(ctx, testUser, testSecret, "old.txt", "text/plain", []byte("x"), UploadOptions{ExpiresAt: &past})
	require.NoError(t, err)

	_, err = svc.Download(ctx, res.ShareURL)
	require.ErrorIs(t, err, common.ErrLinkExpired)
}

func TestDownload_TamperedCiphertext(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, testUser, testSecret, "f.bin", "application/octet-stream", []byte("payload"), UploadOptions{})
	require.NoError(t, err)

	records, err := svc.List(ctx, testUser, testSecret)
	require.NoError(t, err)
	body, err := blobs.Get(ctx, records[0].StorageKey)
	require.NoError(t, err)
	body[0] ^= 0x01
	require.NoError(t, blobs.Put(ctx, records[0].StorageKey, body))

	_, err = svc.Download(ctx, res.ShareURL)
	require.ErrorIs(t, err, common.ErrAuthenticationFailed)
}

func TestShareLink_MatchesUploadLink(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, testUser, testSecret, "f.txt", "text/plain", []byte("x"), UploadOptions{})
	require.NoError(t, err)

	link, err := svc.ShareLink(ctx, testUser, testSecret, res.FileID)
	require.NoError(t, err)
	require.Equal(t, res.ShareURL, link)
}

func TestDelete_RemovesEverywhere(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, testUser, testSecret, "f.txt", "text/plain", []byte("x"), UploadOptions{})
	require.NoError(t, err)

	records, err := svc.List(ctx, testUser, testSecret)
	require.NoError(t, err)
	storageKey := records[0].StorageKey

	require.NoError(t, svc.Delete(ctx, testUser, testSecret, res.FileID))

	records, err = svc.List(ctx, testUser, testSecret)
	require.NoError(t, err)
	require.Empty(t, records)

	_, err = blobs.Get(ctx, storageKey)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.Download(ctx, res.ShareURL)
	require.Error(t, err)
}

func TestRecordDownload_UpdatesOwnerView(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, testUser, testSecret, "f.txt", "text/plain", []byte("x"), UploadOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.RecordDownload(ctx, testUser, testSecret, res.FileID))

	records, err := svc.List(ctx, testUser, testSecret)
	require.NoError(t, err)
	require.Equal(t, 1, records[0].Downloads)
}

func TestPurgeExpired(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	_, err := svc.Upload(ctx, testUser, testSecret, "old.txt", "text/plain", []byte("x"), UploadOptions{ExpiresAt: &past})
	require.NoError(t, err)
	keep, err := svc.Upload(ctx, testUser, testSecret, "new.txt", "text/plain", []byte("y"), UploadOptions{})
	require.NoError(t, err)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	records, err := svc.List(ctx, testUser, testSecret)
	require.NoError(t, err)
	require.Len(t, records, 2, "purge does not touch the encrypted index")

	_, err = svc.Download(ctx, keep.ShareURL)
	require.NoError(t, err)

	var old index.FileRecord
	for _, r := range records {
		if r.Name == "old.txt" {
			old = r
		}
	}
	_, err = blobs.Get(ctx, old.StorageKey)
	require.ErrorIs(t, err, common.ErrNotFound)
}
