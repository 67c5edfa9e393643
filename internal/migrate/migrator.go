// Package migrate applies numbered, checksummed SQL migration scripts to
// the cache database, the same way a schema version table tracks applied
// migrations in the source project this was distilled from.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

//go:embed scripts/*.sql
var scriptsFS embed.FS

// Script is one numbered migration file.
type Script struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

// loadScripts reads and sorts the embedded migration scripts by version,
// parsed from the leading numeric prefix of each file name
// (NNNN_description.sql).
func loadScripts() ([]Script, error) {
	entries, err := fs.ReadDir(scriptsFS, "scripts")
	if err != nil {
		return nil, fmt.Errorf("read embedded scripts: %w", err)
	}
	scripts := make([]Script, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("migration file %s missing NNNN_ prefix", e.Name())
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration file %s has non-numeric version: %w", e.Name(), err)
		}
		contents, err := fs.ReadFile(scriptsFS, "scripts/"+e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		scripts = append(scripts, Script{
			Version:  version,
			Name:     e.Name(),
			SQL:      string(contents),
			Checksum: checksum(contents),
		})
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Version < scripts[j].Version })
	return scripts, nil
}

// Migrator applies pending migrations to a cache database.
type Migrator struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewMigrator wraps an already-open database connection.
func NewMigrator(db *sql.DB, log zerolog.Logger) *Migrator {
	return &Migrator{db: db, log: log}
}

const versionTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	file       TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	applied_at TEXT NOT NULL
)`

type appliedRow struct {
	Version  int
	File     string
	Checksum string
}

// EnsureVersionTable creates the schema_migrations bookkeeping table if
// it does not already exist.
func (m *Migrator) EnsureVersionTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, versionTableDDL)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func (m *Migrator) applied(ctx context.Context) (map[int]appliedRow, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version, file, checksum FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[int]appliedRow)
	for rows.Next() {
		var r appliedRow
		if err := rows.Scan(&r.Version, &r.File, &r.Checksum); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		out[r.Version] = r
	}
	return out, rows.Err()
}

// CurrentVersion returns the highest applied migration version, or 0 if
// none have been applied yet.
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}
	max := 0
	for v := range applied {
		if v > max {
			max = v
		}
	}
	return max, nil
}

// Verify compares every already-applied migration's stored checksum
// against the current embedded script and returns a description of each
// mismatch found. A drifted migration means the binary and the cache
// database disagree about what that version's schema looked like when it
// ran; this is surfaced as a warning rather than treated as fatal, since
// the already-applied DDL already took effect and re-running it is
// neither possible nor necessary.
func (m *Migrator) Verify(ctx context.Context) ([]string, error) {
	scripts, err := loadScripts()
	if err != nil {
		return nil, err
	}
	byVersion := make(map[int]Script, len(scripts))
	for _, s := range scripts {
		byVersion[s.Version] = s
	}

	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	var warnings []string
	for version, row := range applied {
		script, ok := byVersion[version]
		if !ok {
			continue
		}
		if script.Checksum != row.Checksum {
			warnings = append(warnings, fmt.Sprintf("migration %d (%s) checksum drifted", version, script.Name))
		}
	}
	return warnings, nil
}

// Pending returns the migrations that have not yet been applied, in
// version order.
func (m *Migrator) Pending(ctx context.Context) ([]Script, error) {
	scripts, err := loadScripts()
	if err != nil {
		return nil, err
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Script
	for _, s := range scripts {
		if _, ok := applied[s.Version]; !ok {
			pending = append(pending, s)
		}
	}
	return pending, nil
}

// Apply runs every pending migration inside its own transaction, in
// order, recording it in schema_migrations on success. It stops at the
// first failure, leaving the database at the last successfully applied
// version.
func (m *Migrator) Apply(ctx context.Context) error {
	if err := m.EnsureVersionTable(ctx); err != nil {
		return err
	}
	warnings, err := m.Verify(ctx)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		m.log.Warn().Msg(w)
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}

	for _, script := range pending {
		if err := m.applyOne(ctx, script); err != nil {
			return &domain.MigrationError{Version: script.Version, File: script.Name, Err: err}
		}
	}
	return nil
}

func (m *Migrator) applyOne(ctx context.Context, script Script) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script.SQL); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, file, checksum, applied_at) VALUES (?, ?, ?, ?)`,
		script.Version, script.Name, script.Checksum, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
