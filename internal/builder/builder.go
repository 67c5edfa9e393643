// Package builder implements the Message Tree Builder: it takes the flat,
// chronologically sortable set of records a project's cache holds and
// produces a renderable tree plus a session-navigation list. The steps
// below run in a fixed order; none commutes with its neighbors (warmup
// filter, summary attachment, content filter, token dedup, session
// metadata collection, template rendering, session regrouping, pairing,
// pair reordering, sidechain reordering, hierarchy assignment, children
// counts, tree linking).
package builder

import (
	"sort"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// Result is the Builder's output: the root template messages (ready for
// a Renderer to walk) and the session-navigation list.
type Result struct {
	Roots      []*domain.TemplateMessage
	Navigation []domain.NavigationEntry
}

// Build runs the full pipeline over every record of a project.
func Build(records []domain.Record) Result {
	records = sortChronologically(records)
	records = dropWarmupSessions(records)
	records, summaryBySession := attachSummaries(records)
	records = filterRenderable(records)
	countsForTokens := markTokenDedup(records)

	sessionOrder, sessionInfo := collectSessionMetadata(records, countsForTokens, summaryBySession)

	messages, _ := renderToTemplateMessages(records, countsForTokens)
	messages = insertSessionHeaders(messages, sessionOrder, sessionInfo)
	messages = regroupBySession(messages)

	partners := identifyPairs(messages)
	messages = reorderPairs(messages, partners)
	messages = reorderSidechains(messages)

	buildHierarchy(messages)
	markChildren(messages)
	roots := linkTree(messages)

	return Result{
		Roots:      roots,
		Navigation: buildNavigation(sessionOrder, sessionInfo),
	}
}

// sortChronologically stably sorts records by canonical timestamp,
// preserving the caller's relative order for records sharing a timestamp
// (including those with no timestamp at all). This is the "flat,
// chronologically sortable set" spec.md §4.5 describes as the Builder's
// input contract.
func sortChronologically(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
