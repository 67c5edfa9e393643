package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/transcript"
)

// InsertMessage stores one parsed Record's full JSON payload, compressed,
// alongside the indexed columns the query layer needs. It runs inside an
// existing ingest transaction.
func InsertMessage(ctx context.Context, tx *sql.Tx, projectID, fileID int64, rec domain.Record) error {
	compressed, err := compressPayload(rec.Raw)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (project_id, file_id, line_num, uuid, parent_uuid, session_id,
		   type, timestamp, sidechain, meta, agent_id, request_id, cwd, git_branch, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(file_id, line_num) DO UPDATE SET
		   uuid = excluded.uuid, parent_uuid = excluded.parent_uuid,
		   session_id = excluded.session_id, type = excluded.type,
		   timestamp = excluded.timestamp, sidechain = excluded.sidechain,
		   meta = excluded.meta, agent_id = excluded.agent_id,
		   request_id = excluded.request_id, cwd = excluded.cwd,
		   git_branch = excluded.git_branch, payload = excluded.payload`,
		projectID, fileID, rec.LineNum, rec.UUID, rec.ParentUUID, rec.SessionID,
		string(rec.Type), rec.Timestamp, boolToInt(rec.Sidechain), boolToInt(rec.Meta),
		rec.AgentID, rec.RequestID, rec.Cwd, rec.GitBranch, compressed,
	)
	if err != nil {
		return fmt.Errorf("insert message line %d: %w", rec.LineNum, err)
	}
	return nil
}

// MessagesForProject loads and decompresses every message payload for a
// project, in (file insertion order, line number) order, which preserves
// the source-file append order the Builder's dedup and reordering passes
// depend on.
func (s *Store) MessagesForProject(ctx context.Context, projectID int64) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.payload, m.project_id, m.file_id, m.line_num, m.timestamp, m.sidechain, m.agent_id
		 FROM messages m
		 JOIN cached_files f ON f.id = m.file_id
		 WHERE m.project_id = ?
		 ORDER BY f.id, m.line_num`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var payload []byte
		var projectID, fileID int64
		var lineNum, sidechain int
		var ts, agentID string
		if err := rows.Scan(&payload, &projectID, &fileID, &lineNum, &ts, &sidechain, &agentID); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		raw, err := decompressPayload(payload)
		if err != nil {
			return nil, err
		}
		rec, err := transcript.ParseLine(lineNum, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: rebuild message at file %d line %d: %v", domain.ErrCacheCorrupt, fileID, lineNum, err)
		}
		rec.ProjectID = projectID
		rec.FileID = fileID
		rec.Timestamp = ts
		// sidechain/agent_id are derived from the source file name at
		// ingest time (internal/transcript.MarkSidechain), not present in
		// the raw JSON line itself, so the indexed columns are
		// authoritative here rather than whatever the reparse produced.
		rec.Sidechain = sidechain != 0
		rec.AgentID = agentID
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MessagesForSession loads a single session's messages, used by
// export-to-JSONL.
func (s *Store) MessagesForSession(ctx context.Context, projectID int64, sessionID string) ([]domain.Record, error) {
	all, err := s.MessagesForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var out []domain.Record
	for _, rec := range all {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
