// Package sqlite is the default, file-based Provider backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/willdone/timeline-core/internal/coreerrors"
	"github.com/willdone/timeline-core/internal/migration"
	"github.com/willdone/timeline-core/migrations"
)

// Store is a transactional storage.Provider backed by a local SQLite file.
type Store struct {
	path string
	db   *sql.DB
}

// New returns an unopened Store rooted at path. Call Init (fresh database)
// or Load (existing database) before use.
func New(path string) *Store {
	return &Store{path: path}
}

// Init creates the database file (and parent directory) if needed and
// applies every pending migration.
func (s *Store) Init(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return coreerrors.Wrap(coreerrors.IoFailure, fmt.Errorf("failed to create config directory: %w", err))
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, fmt.Errorf("failed to open database: %w", err))
	}
	s.db = db

	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}

	if err := s.runMigrations(); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, fmt.Errorf("failed to run migrations: %w", err))
	}
	return nil
}

// Load opens an existing database file and validates its schema version.
func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return coreerrors.New(coreerrors.NotFound, "storage not initialized, run 'willdone system init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, fmt.Errorf("failed to open database: %w", err))
	}
	s.db = db

	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}

	if err := s.validateSchemaVersion(); err != nil {
		return coreerrors.Wrap(coreerrors.StoreFailure, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) runMigrations() error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	runner := migration.NewRunner(s.db, subFS)
	_, err = runner.ApplyMigrations(func(msg string) {})
	return err
}

func (s *Store) validateSchemaVersion() error {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS).ValidateVersion()
}

// GetConfigPath returns the on-disk path of the database file.
func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection. Callers should use Init/Load first.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
