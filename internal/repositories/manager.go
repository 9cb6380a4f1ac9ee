// Package repositories wires the persistence implementations together:
// one manager per backend hands out the file-metadata repository and the
// encrypted-index store over a shared connection.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/cipherdrop/cipherdrop/internal/index"
	"github.com/cipherdrop/cipherdrop/internal/migrations"
	"github.com/cipherdrop/cipherdrop/internal/repositories/files"
)

// Manager hands out repository implementations sharing one backend.
type Manager interface {
	Files() files.Repository
	Index() index.Store
	Close() error
}

// PostgresManager is the production Manager: pgx over database/sql with
// goose migrations applied at startup.
type PostgresManager struct {
	db    *sql.DB
	files *files.PostgresRepository
	index *index.PostgresStore
}

func NewPostgresManager(ctx context.Context, dsn string) (*PostgresManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresManager{
		db:    db,
		files: files.NewPostgresRepository(db),
		index: index.NewPostgresStore(db),
	}

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return m, nil
}

func (m *PostgresManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, m.db, ".")
}

func (m *PostgresManager) Files() files.Repository { return m.files }
func (m *PostgresManager) Index() index.Store      { return m.index }
func (m *PostgresManager) Close() error            { return m.db.Close() }

// MemoryManager keeps everything in process memory. Useful for tests and
// for trying the CLI without a database; nothing survives a restart.
type MemoryManager struct {
	files *files.MemoryRepository
	index *index.MemoryStore
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		files: files.NewMemoryRepository(),
		index: index.NewMemoryStore(),
	}
}

func (m *MemoryManager) Files() files.Repository { return m.files }
func (m *MemoryManager) Index() index.Store      { return m.index }
func (m *MemoryManager) Close() error            { return nil }
