package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

const pageSelectCols = `
SELECT id, project_id, number, output_path, page_size_config, message_count,
       first_timestamp, last_timestamp, first_session_id, last_session_id,
       generated_at, version
FROM pages`

// ListPages returns every Page for a project, in page-number order.
func (s *Store) ListPages(ctx context.Context, projectID int64) ([]domain.Page, error) {
	rows, err := s.db.QueryContext(ctx, pageSelectCols+` WHERE project_id = ? ORDER BY number`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var out []domain.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPage(sc scanner) (domain.Page, error) {
	var p domain.Page
	var generatedAt string
	err := sc.Scan(
		&p.ID, &p.ProjectID, &p.Number, &p.OutputPath, &p.PageSizeConfig, &p.MessageCount,
		&p.FirstTimestamp, &p.LastTimestamp, &p.FirstSessionID, &p.LastSessionID,
		&generatedAt, &p.Version,
	)
	if err != nil {
		return domain.Page{}, err
	}
	p.GeneratedAt, _ = time.Parse(time.RFC3339, generatedAt)
	return p, nil
}

// ReplacePages atomically discards a project's previous page layout and
// writes the new one. Pagination always recomputes every page's
// assignment from scratch rather than patching individual pages, so a
// full replace inside one transaction keeps the pages/page_sessions
// tables from ever observing a half-updated layout.
func (s *Store) ReplacePages(ctx context.Context, projectID int64, pages []domain.Page, sessions [][]domain.PageSession) error {
	if len(pages) != len(sessions) {
		return fmt.Errorf("replace pages: %d pages but %d session lists", len(pages), len(sessions))
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("clear pages: %w", err)
		}
		for i, p := range pages {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO pages (project_id, number, output_path, page_size_config, message_count,
				   first_timestamp, last_timestamp, first_session_id, last_session_id, generated_at, version)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				projectID, p.Number, p.OutputPath, p.PageSizeConfig, p.MessageCount,
				p.FirstTimestamp, p.LastTimestamp, p.FirstSessionID, p.LastSessionID,
				p.GeneratedAt.UTC().Format(time.RFC3339), p.Version,
			)
			if err != nil {
				return fmt.Errorf("insert page %d: %w", p.Number, err)
			}
			pageID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("page id %d: %w", p.Number, err)
			}
			for _, ps := range sessions[i] {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO page_sessions (page_id, session_id, position) VALUES (?, ?, ?)`,
					pageID, ps.SessionID, ps.Position,
				); err != nil {
					return fmt.Errorf("insert page_session %s: %w", ps.SessionID, err)
				}
			}
		}
		return nil
	})
}
