package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// dropWarmupSessions implements step 1: a Session whose every user
// message text is exactly "Warmup" is a synthetic keep-alive the editor
// sends on startup, never something a person typed. All of its records
// are removed before anything else runs.
func dropWarmupSessions(records []domain.Record) []domain.Record {
	warmup := warmupSessionIDs(records)
	if len(warmup) == 0 {
		return records
	}
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if rec.SessionID != "" && warmup[rec.SessionID] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func warmupSessionIDs(records []domain.Record) map[string]bool {
	userTextsBySession := make(map[string][]string)
	for _, rec := range records {
		if rec.Type != domain.DiscUser || rec.SessionID == "" {
			continue
		}
		userTextsBySession[rec.SessionID] = append(userTextsBySession[rec.SessionID], rec.TextContent())
	}

	warmup := make(map[string]bool)
	for sessionID, texts := range userTextsBySession {
		if len(texts) == 0 {
			continue
		}
		allWarmup := true
		for _, t := range texts {
			if t != "Warmup" {
				allWarmup = false
				break
			}
		}
		if allWarmup {
			warmup[sessionID] = true
		}
	}
	return warmup
}
