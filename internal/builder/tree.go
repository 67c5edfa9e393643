package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// linkTree implements step 13: populate each message's Children slice
// from its Ancestry's last entry, in traversal order, and return the
// roots (messages with no ancestry: session headers and any top-level
// message that precedes its session's header).
func linkTree(messages []*domain.TemplateMessage) []*domain.TemplateMessage {
	byID := make(map[string]*domain.TemplateMessage, len(messages))
	for _, m := range messages {
		if m.MessageID != "" {
			byID[m.MessageID] = m
		}
	}

	var roots []*domain.TemplateMessage
	for _, m := range messages {
		if len(m.Ancestry) == 0 {
			roots = append(roots, m)
			continue
		}
		parentID := m.Ancestry[len(m.Ancestry)-1]
		if parent, ok := byID[parentID]; ok {
			parent.Children = append(parent.Children, m)
		} else {
			roots = append(roots, m)
		}
	}
	return roots
}
