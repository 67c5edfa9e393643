package sync

import (
	"bytes"
	"context"
	"fmt"

	"github.com/brianly1003/claude-code-log/internal/store"
)

// ExportSessionToJSONL reconstitutes a session's original JSONL bytes
// from the cache, one line per message in source order. This is the
// inverse of ingestion: every message retains its full original payload
// specifically so this round-trip is exact.
func ExportSessionToJSONL(ctx context.Context, st *store.Store, projectID int64, sessionID string) ([]byte, error) {
	records, err := st.MessagesForSession(ctx, projectID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var buf bytes.Buffer
	for _, rec := range records {
		buf.Write(rec.Raw)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
