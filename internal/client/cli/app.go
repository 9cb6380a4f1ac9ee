// Package cli implements the interactive CipherDrop shell: login with a
// passphrase, upload and share files, resolve share links, and manage the
// encrypted file index.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cipherdrop/cipherdrop/internal/client/config"
	"github.com/cipherdrop/cipherdrop/internal/client/service"
	"github.com/cipherdrop/cipherdrop/internal/common"
	"github.com/cipherdrop/cipherdrop/internal/index"
	"github.com/cipherdrop/cipherdrop/internal/logging"
	"github.com/cipherdrop/cipherdrop/internal/repositories"
	"github.com/cipherdrop/cipherdrop/internal/storage"
)

// App holds live CLI state. The passphrase stays in memory only while a
// session is active and is wiped on logout/exit; the crypto core itself
// never caches it.
type App struct {
	config *config.Config
	svc    *service.TransferService
	repos  repositories.Manager
	log    logging.Logger

	reader *bufio.Reader
	out    io.Writer

	userID string
	secret []byte
}

// NewApp wires stores and services from configuration. An empty bucket
// or DSN selects the corresponding in-memory implementation.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewDefault()

	var repos repositories.Manager
	if c.DatabaseDSN != "" {
		pg, err := repositories.NewPostgresManager(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		repos = pg
	} else {
		repos = repositories.NewMemoryManager()
	}

	blobs, err := buildBlobStore(ctx, c)
	if err != nil {
		return nil, err
	}

	idx := index.NewManager(repos.Index(), c.PBKDF2Iterations)
	svc := service.NewTransferService(blobs, repos.Files(), idx, c.BaseDownloadURL, log)

	return &App{
		config: c,
		svc:    svc,
		repos:  repos,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func buildBlobStore(ctx context.Context, c *config.Config) (storage.BlobStore, error) {
	if c.S3Bucket == "" {
		return storage.NewMemoryStore(), nil
	}

	s3store, err := storage.NewS3Store(ctx, storage.S3Config{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	if c.TransferMode == "presigned" {
		return storage.NewPresignedStore(s3store, c.PresignExpiry), nil
	}
	return s3store, nil
}

// Run starts the interactive loop and blocks until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close wipes session secrets and releases backing resources.
func (a *App) Close() {
	a.logout()
	if err := a.repos.Close(); err != nil {
		a.log.Warn(context.Background(), "closing repositories", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.secret != nil
}

func (a *App) logout() {
	common.WipeByteArray(a.secret)
	a.secret = nil
	a.userID = ""
}
