package builder

import (
	"sort"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// insertSessionHeaders implements step 7's first half: inject a synthetic
// TmplSystem-adjacent header message at the first appearance of each
// session, carrying the session's resolved summary and its first
// timestamp. It is placed immediately before that session's first
// message so regroupBySession's stable sort keeps it attached.
func insertSessionHeaders(messages []*domain.TemplateMessage, sessionOrder []string, info map[string]*sessionMeta) []*domain.TemplateMessage {
	seen := make(map[string]bool, len(sessionOrder))
	out := make([]*domain.TemplateMessage, 0, len(messages)+len(sessionOrder))

	for _, m := range messages {
		if m.SessionID != "" && !seen[m.SessionID] {
			seen[m.SessionID] = true
			if meta, ok := info[m.SessionID]; ok {
				out = append(out, &domain.TemplateMessage{
					Type:            domain.TmplSystem,
					SessionID:       meta.SessionID,
					IsSessionHeader: true,
					SessionSummary:  meta.Summary,
					RawTimestamp:    meta.FirstTimestamp,
				})
			}
		}
		out = append(out, m)
	}
	return out
}

// regroupBySession repairs resumed-session interleaving: a resumed
// session's early records can carry timestamps earlier than the parent
// session's own later records once both are merged and sorted
// chronologically. A stable sort keyed on (first-appearance session
// order, original position) keeps each session's records contiguous
// without re-sorting within a session.
func regroupBySession(messages []*domain.TemplateMessage) []*domain.TemplateMessage {
	order := make(map[string]int)
	next := 0
	for _, m := range messages {
		if m.SessionID == "" {
			continue
		}
		if _, ok := order[m.SessionID]; !ok {
			order[m.SessionID] = next
			next++
		}
	}

	out := make([]*domain.TemplateMessage, len(messages))
	copy(out, messages)
	sort.SliceStable(out, func(i, j int) bool {
		return order[out[i].SessionID] < order[out[j].SessionID]
	})
	return out
}
