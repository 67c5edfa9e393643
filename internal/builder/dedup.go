package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// markTokenDedup implements step 4: when multiple assistant records
// share a request_id (editor-version duplicates of the same API call),
// only the first in iteration order contributes to token sums and is
// flagged for token display. Records with no request_id (rare, but seen
// on older transcripts) always count since there is nothing to
// deduplicate against. The result is keyed by slice index rather than
// UUID: a UUID collision across a version-stutter pair must not cause
// the second copy to be silently skipped here too.
func markTokenDedup(records []domain.Record) []bool {
	counts := make([]bool, len(records))
	seen := make(map[string]bool)
	for i, rec := range records {
		if rec.Type != domain.DiscAssistant || rec.Usage == nil {
			continue
		}
		if rec.RequestID == "" {
			counts[i] = true
			continue
		}
		if seen[rec.RequestID] {
			continue
		}
		seen[rec.RequestID] = true
		counts[i] = true
	}
	return counts
}
