package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// filterRenderable implements step 3: drop summary records (already
// attached in step 2), drop queue operations other than "remove", drop
// records with no meaningful content, and drop sidechain user records
// that carry no tool-result content (those are prompts that duplicate
// the Task tool's own input).
func filterRenderable(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if rec.Type == domain.DiscSummary {
			continue
		}
		if rec.Type == domain.DiscQueueOperation && rec.QueueOperation != "remove" {
			continue
		}
		if rec.Type == domain.DiscSystem {
			out = append(out, rec)
			continue
		}
		if !hasMeaningfulContent(rec) {
			continue
		}
		if rec.Type == domain.DiscUser && rec.Sidechain && !hasToolResult(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func hasMeaningfulContent(rec domain.Record) bool {
	if rec.TextContent() != "" {
		return true
	}
	for _, item := range rec.Content {
		if item.HasDisplayableContent() {
			return true
		}
	}
	return false
}

func hasToolResult(rec domain.Record) bool {
	for _, item := range rec.Content {
		if item.Kind == domain.ContentToolResult {
			return true
		}
	}
	return false
}
