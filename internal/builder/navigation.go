package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// buildNavigation produces the session-navigation list from step 5's
// metadata, in session order, suppressing sessions that never had a
// non-meta, non-sidechain user message (pure tool/system noise).
func buildNavigation(order []string, info map[string]*sessionMeta) []domain.NavigationEntry {
	out := make([]domain.NavigationEntry, 0, len(order))
	for _, id := range order {
		meta, ok := info[id]
		if !ok || !meta.HasUserMessage {
			continue
		}
		out = append(out, domain.NavigationEntry{
			SessionID:      meta.SessionID,
			Summary:        meta.Summary,
			Preview:        meta.Preview,
			TimestampRange: formatTimestampRange(meta.FirstTimestamp, meta.LastTimestamp),
			TokenSummary:   formatTokenSummary(meta.Usage),
		})
	}
	return out
}

// formatTimestampRange renders a session's span as "first - last", or
// just the single timestamp when both ends coincide.
func formatTimestampRange(first, last string) string {
	if first == "" {
		return last
	}
	if first == last || last == "" {
		return first
	}
	return first + " - " + last
}
