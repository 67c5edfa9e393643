package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// markChildren implements step 12: compute, for every message, the count
// of immediate children and total descendants, broken down by type. A
// message B is an immediate child of A when A.MessageID is the last
// entry of B.Ancestry; B is a descendant of A when A.MessageID appears
// anywhere in B.Ancestry. A message whose PairRole is PairLast (the
// second half of a slash-command/output or tool_use/tool_result pair)
// is skipped: the pair renders as one unit, so only its first half is
// counted toward ancestors.
func markChildren(messages []*domain.TemplateMessage) {
	byID := make(map[string]*domain.TemplateMessage, len(messages))
	for _, m := range messages {
		if m.MessageID != "" {
			byID[m.MessageID] = m
		}
	}

	for _, m := range messages {
		if len(m.Ancestry) == 0 {
			continue
		}
		if m.PairRole == domain.PairLast {
			continue
		}
		for i, ancestorID := range m.Ancestry {
			ancestor, ok := byID[ancestorID]
			if !ok {
				continue
			}
			if ancestor.TotalDescendantsByType == nil {
				ancestor.TotalDescendantsByType = make(map[domain.TemplateKind]int)
			}
			ancestor.TotalDescendantsByType[m.Type]++
			ancestor.TotalDescendantsCount++

			if i == len(m.Ancestry)-1 {
				ancestor.HasChildren = true
				ancestor.ImmediateChildrenCount++
				if ancestor.ImmediateChildrenByType == nil {
					ancestor.ImmediateChildrenByType = make(map[domain.TemplateKind]int)
				}
				ancestor.ImmediateChildrenByType[m.Type]++
			}
		}
	}
}
