package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

const artifactSelectCols = `
SELECT id, project_id, output_path, generated_at, session_id, message_count, version
FROM html_artifacts`

// ArtifactByPath looks up an HtmlArtifact by its output path within a
// project, the lookup the freshness engine uses before deciding whether
// to regenerate it.
func (s *Store) ArtifactByPath(ctx context.Context, projectID int64, outputPath string) (domain.HtmlArtifact, bool, error) {
	row := s.db.QueryRowContext(ctx, artifactSelectCols+` WHERE project_id = ? AND output_path = ?`, projectID, outputPath)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HtmlArtifact{}, false, nil
	}
	if err != nil {
		return domain.HtmlArtifact{}, false, err
	}
	return a, true, nil
}

// ListArtifacts returns every HtmlArtifact recorded for a project.
func (s *Store) ListArtifacts(ctx context.Context, projectID int64) ([]domain.HtmlArtifact, error) {
	rows, err := s.db.QueryContext(ctx, artifactSelectCols+` WHERE project_id = ? ORDER BY output_path`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []domain.HtmlArtifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanArtifact(sc scanner) (domain.HtmlArtifact, error) {
	var a domain.HtmlArtifact
	var generatedAt string
	err := sc.Scan(&a.ID, &a.ProjectID, &a.OutputPath, &generatedAt, &a.SessionID, &a.MessageCount, &a.Version)
	if err != nil {
		return domain.HtmlArtifact{}, err
	}
	a.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
	return a, nil
}

// RecordArtifact upserts an HtmlArtifact after a render completes.
func (s *Store) RecordArtifact(ctx context.Context, a domain.HtmlArtifact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO html_artifacts (project_id, output_path, generated_at, session_id, message_count, version)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, output_path) DO UPDATE SET
		   generated_at = excluded.generated_at,
		   session_id = excluded.session_id,
		   message_count = excluded.message_count,
		   version = excluded.version`,
		a.ProjectID, a.OutputPath, a.GeneratedAt.UTC().Format(time.RFC3339), a.SessionID, a.MessageCount, a.Version,
	)
	if err != nil {
		return fmt.Errorf("record artifact %s: %w", a.OutputPath, err)
	}
	return nil
}

// DeleteArtifactsForProject removes every artifact row for a project,
// used by `cache clear-html`.
func (s *Store) DeleteArtifactsForProject(ctx context.Context, projectID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM html_artifacts WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("clear artifacts: %w", err)
	}
	return nil
}
