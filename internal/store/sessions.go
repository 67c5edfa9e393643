package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

const sessionSelectCols = `
SELECT id, project_id, session_id, summary, first_timestamp, last_timestamp,
       message_count, first_user_message_preview, cwd, total_input, total_output,
       total_cache_creation, total_cache_read, archived
FROM sessions`

// SessionByID looks up a Session by its project-scoped sessionId.
func (s *Store) SessionByID(ctx context.Context, projectID int64, sessionID string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, sessionSelectCols+` WHERE project_id = ? AND session_id = ?`, projectID, sessionID)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return sess, err
}

// ListSessions returns every Session for a project, oldest first.
func (s *Store) ListSessions(ctx context.Context, projectID int64) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, sessionSelectCols+` WHERE project_id = ? ORDER BY first_timestamp`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// ArchivedSessions returns the sessions flagged archived: present in the
// cache but with no surviving source file.
func (s *Store) ArchivedSessions(ctx context.Context, projectID int64) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, sessionSelectCols+` WHERE project_id = ? AND archived = 1 ORDER BY first_timestamp`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list archived sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func scanSession(sc scanner) (domain.Session, error) {
	var sess domain.Session
	var archived int
	err := sc.Scan(
		&sess.ID, &sess.ProjectID, &sess.SessionID, &sess.Summary, &sess.FirstTimestamp,
		&sess.LastTimestamp, &sess.MessageCount, &sess.FirstUserMessagePreview, &sess.Cwd,
		&sess.TotalInput, &sess.TotalOutput, &sess.TotalCacheCreation, &sess.TotalCacheRead,
		&archived,
	)
	sess.Archived = archived != 0
	return sess, err
}

// UpsertSession writes a recomputed session aggregate, inside an
// existing transaction.
func UpsertSession(ctx context.Context, tx *sql.Tx, projectID int64, sess domain.Session) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (project_id, session_id, summary, first_timestamp, last_timestamp,
		   message_count, first_user_message_preview, cwd, total_input, total_output,
		   total_cache_creation, total_cache_read, archived)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(project_id, session_id) DO UPDATE SET
		   summary = excluded.summary,
		   first_timestamp = excluded.first_timestamp,
		   last_timestamp = excluded.last_timestamp,
		   message_count = excluded.message_count,
		   first_user_message_preview = excluded.first_user_message_preview,
		   cwd = excluded.cwd,
		   total_input = excluded.total_input,
		   total_output = excluded.total_output,
		   total_cache_creation = excluded.total_cache_creation,
		   total_cache_read = excluded.total_cache_read,
		   archived = excluded.archived`,
		projectID, sess.SessionID, sess.Summary, sess.FirstTimestamp, sess.LastTimestamp,
		sess.MessageCount, sess.FirstUserMessagePreview, sess.Cwd, sess.TotalInput, sess.TotalOutput,
		sess.TotalCacheCreation, sess.TotalCacheRead, boolToInt(sess.Archived),
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", sess.SessionID, err)
	}
	return nil
}

// MarkSessionsArchived flips the archived flag for every session of a
// project whose sessionId is not in the set of sessionIds still backed
// by a surviving source file.
func MarkSessionsArchived(ctx context.Context, tx *sql.Tx, projectID int64, liveSessionIDs map[string]bool) error {
	rows, err := tx.QueryContext(ctx, `SELECT session_id FROM sessions WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("list session ids: %w", err)
	}
	var all []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		all = append(all, id)
	}
	rows.Close()

	for _, id := range all {
		archived := boolToInt(!liveSessionIDs[id])
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions SET archived = ? WHERE project_id = ? AND session_id = ?`,
			archived, projectID, id,
		); err != nil {
			return fmt.Errorf("mark session %s archived: %w", id, err)
		}
	}
	return nil
}
