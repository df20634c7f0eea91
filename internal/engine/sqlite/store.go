// Package sqlite is the default engine backend: a local budget store
// on modernc.org/sqlite with schema managed by golang-migrate.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"budgetmcp/internal/engine"

	_ "modernc.org/sqlite"
)

// Store implements engine.Engine on a local SQLite database.
type Store struct {
	db *sql.DB
}

var _ engine.Engine = (*Store)(nil)

// Open opens (creating if needed) the budget database at dbPath and
// brings the schema up to date.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Opener maps budget IDs to database files under dataDir, one file per
// budget, for use with engine.Session.
func Opener(dataDir string) engine.Opener {
	return func(ctx context.Context, budgetID string) (engine.Engine, error) {
		if budgetID == "" {
			budgetID = "default"
		}
		return Open(filepath.Join(dataDir, budgetID+".db"))
	}
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
