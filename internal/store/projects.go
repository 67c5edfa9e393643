package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// GetOrCreateProject returns the Project for path, creating an empty row
// if none exists yet.
func (s *Store) GetOrCreateProject(ctx context.Context, path, version string) (domain.Project, error) {
	p, err := s.ProjectByPath(ctx, path)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrProjectNotFound) {
		return domain.Project{}, err
	}

	now := nowUTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (path, version, created_at, last_updated) VALUES (?, ?, ?, ?)`,
		path, version, now, now,
	)
	if err != nil {
		return domain.Project{}, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Project{}, fmt.Errorf("project id: %w", err)
	}
	return s.ProjectByID(ctx, id)
}

// ProjectByPath looks up a Project by its absolute source path.
func (s *Store) ProjectByPath(ctx context.Context, path string) (domain.Project, error) {
	row := s.db.QueryRowContext(ctx, projectSelectCols+` WHERE path = ?`, path)
	return scanProject(row)
}

// ProjectByID looks up a Project by its row id.
func (s *Store) ProjectByID(ctx context.Context, id int64) (domain.Project, error) {
	row := s.db.QueryRowContext(ctx, projectSelectCols+` WHERE id = ?`, id)
	return scanProject(row)
}

// ListProjects returns every cached project.
func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, projectSelectCols+` ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		p, err := scanProjectRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const projectSelectCols = `
SELECT id, path, version, total_messages, total_input, total_output,
       total_cache_creation, total_cache_read, earliest_timestamp,
       latest_timestamp, created_at, last_updated
FROM projects`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row *sql.Row) (domain.Project, error) {
	p, err := scanProjectInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return p, err
}

func scanProjectRows(rows *sql.Rows) (domain.Project, error) {
	return scanProjectInto(rows)
}

func scanProjectInto(s scanner) (domain.Project, error) {
	var p domain.Project
	var createdAt, lastUpdated string
	err := s.Scan(
		&p.ID, &p.Path, &p.Version, &p.TotalMessages, &p.TotalInput, &p.TotalOutput,
		&p.TotalCacheCreation, &p.TotalCacheRead, &p.EarliestTimestamp, &p.LatestTimestamp,
		&createdAt, &lastUpdated,
	)
	if err != nil {
		return domain.Project{}, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.LastUpdated, _ = time.Parse(time.RFC3339, lastUpdated)
	return p, nil
}

// ResetProject wipes every cached file, message, session, page, and
// artifact row for a project while keeping the project row itself (and
// its id, so existing references to it stay valid). Cascading foreign
// keys on cached_files take care of messages; sessions, pages, and
// artifacts are project-scoped directly. Used when RequiresFullRebuild
// reports the cache was built by a version whose semantics are
// incompatible with the current one.
func (s *Store) ResetProject(ctx context.Context, projectID int64) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			`DELETE FROM cached_files WHERE project_id = ?`,
			`DELETE FROM sessions WHERE project_id = ?`,
			`DELETE FROM pages WHERE project_id = ?`,
			`DELETE FROM html_artifacts WHERE project_id = ?`,
			`UPDATE projects SET total_messages = 0, total_input = 0, total_output = 0,
			   total_cache_creation = 0, total_cache_read = 0,
			   earliest_timestamp = '', latest_timestamp = '' WHERE id = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, projectID); err != nil {
				return fmt.Errorf("reset project %d: %w", projectID, err)
			}
		}
		return nil
	})
}

// UpdateProjectAggregates persists a recomputed Project's rollups and
// bumps LastUpdated; called after every ingest.
func (s *Store) UpdateProjectAggregates(ctx context.Context, p domain.Project) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE projects SET version = ?, total_messages = ?, total_input = ?,
		 total_output = ?, total_cache_creation = ?, total_cache_read = ?,
		 earliest_timestamp = ?, latest_timestamp = ?, last_updated = ?
		 WHERE id = ?`,
		p.Version, p.TotalMessages, p.TotalInput, p.TotalOutput,
		p.TotalCacheCreation, p.TotalCacheRead, p.EarliestTimestamp, p.LatestTimestamp,
		nowUTC(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project %d: %w", p.ID, err)
	}
	return nil
}
