package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

const fileSelectCols = `
SELECT id, project_id, name, path, source_mtime, cache_write_at, message_count
FROM cached_files`

// FileByName looks up a CachedFile within a project by its file name,
// used to test cache validity against the source file's current mtime.
func (s *Store) FileByName(ctx context.Context, projectID int64, name string) (domain.CachedFile, error) {
	row := s.db.QueryRowContext(ctx, fileSelectCols+` WHERE project_id = ? AND name = ?`, projectID, name)
	cf, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CachedFile{}, domain.ErrFileNotCached
	}
	return cf, err
}

// ListFiles returns every CachedFile known for a project.
func (s *Store) ListFiles(ctx context.Context, projectID int64) ([]domain.CachedFile, error) {
	rows, err := s.db.QueryContext(ctx, fileSelectCols+` WHERE project_id = ? ORDER BY name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list cached files: %w", err)
	}
	defer rows.Close()

	var out []domain.CachedFile
	for rows.Next() {
		cf, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cf)
	}
	return out, rows.Err()
}

func scanFile(s scanner) (domain.CachedFile, error) {
	var cf domain.CachedFile
	var sourceMtime, cacheWriteAt string
	err := s.Scan(&cf.ID, &cf.ProjectID, &cf.Name, &cf.Path, &sourceMtime, &cacheWriteAt, &cf.MessageCount)
	if err != nil {
		return domain.CachedFile{}, err
	}
	cf.SourceMTime, _ = time.Parse(time.RFC3339, sourceMtime)
	cf.CacheWriteAt, _ = time.Parse(time.RFC3339, cacheWriteAt)
	return cf, nil
}

// UpsertFile records (or updates) a CachedFile's mtime and message count
// after a successful ingest, inside an existing transaction.
func UpsertFile(ctx context.Context, tx *sql.Tx, projectID int64, name, path string, sourceMTime time.Time, messageCount int) (int64, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO cached_files (project_id, name, path, source_mtime, cache_write_at, message_count)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, name) DO UPDATE SET
		   path = excluded.path,
		   source_mtime = excluded.source_mtime,
		   cache_write_at = excluded.cache_write_at,
		   message_count = excluded.message_count`,
		projectID, name, path, sourceMTime.UTC().Format(time.RFC3339), nowUTC(), messageCount,
	)
	if err != nil {
		return 0, fmt.Errorf("upsert cached file %s: %w", name, err)
	}
	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM cached_files WHERE project_id = ? AND name = ?`, projectID, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("lookup cached file id %s: %w", name, err)
	}
	return id, nil
}

// DeleteFile removes a CachedFile and (via ON DELETE CASCADE) every
// message it produced. The synchronizer does not call it, so a source
// file removed from disk keeps its cached rows.
func DeleteFile(ctx context.Context, tx *sql.Tx, fileID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM cached_files WHERE id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("delete cached file %d: %w", fileID, err)
	}
	return nil
}
