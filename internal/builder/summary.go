package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// attachSummaries implements step 2: build a uuid -> sessionId map,
// preferring the mapping assistant records carry over any other type
// when both exist (spec.md §9 open question, kept asymmetric on
// purpose), then resolve each summary record's leafUuid through that map
// to find the Session it should be attached to. The summary text is
// returned as a side table rather than mutated onto every record of that
// session, since domain.Record has no such field; callers thread the
// table through to session-metadata collection and header rendering.
func attachSummaries(records []domain.Record) ([]domain.Record, map[string]string) {
	uuidToSession := make(map[string]string)
	preferredUUID := make(map[string]bool)

	for _, rec := range records {
		if rec.UUID == "" || rec.SessionID == "" {
			continue
		}
		isAssistant := rec.Type == domain.DiscAssistant
		if existing, ok := uuidToSession[rec.UUID]; ok {
			if preferredUUID[rec.UUID] || !isAssistant {
				_ = existing
				continue
			}
		}
		uuidToSession[rec.UUID] = rec.SessionID
		preferredUUID[rec.UUID] = isAssistant
	}

	summaryBySession := make(map[string]string)
	for _, rec := range records {
		if rec.Type != domain.DiscSummary || rec.LeafUUID == "" {
			continue
		}
		if sessionID, ok := uuidToSession[rec.LeafUUID]; ok {
			summaryBySession[sessionID] = rec.SummaryText
		}
	}
	return records, summaryBySession
}
