// Package store implements the persistent cache: a single sqlite
// database file holding parsed transcript messages, session and project
// aggregates, and bookkeeping for which HTML artifacts are current.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/brianly1003/claude-code-log/internal/migrate"
)

// Store wraps the cache database connection.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite cache at path, applies WAL
// mode and foreign key enforcement, and runs any pending migrations.
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(30000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers on one handle

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=30000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %q: %w", p, err)
		}
	}

	if err := migrate.NewMigrator(db, log).Apply(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for packages that need bespoke queries
// (freshness checks, diagnostics) without growing the Store's own API
// surface for every read path.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
