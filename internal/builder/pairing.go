package builder

import "github.com/brianly1003/claude-code-log/internal/domain"

// identifyPairs implements step 8: mark messages that should be rendered
// together as a single collapsible unit. Two kinds of rule apply.
//
// Adjacent rules match a message against its immediate successor in the
// same session: slash-command followed by its local output, bash-input
// followed by its bash-output, and a thinking block followed by the
// assistant text it preceded.
//
// Indexed rules match across the whole message list by a key rather than
// position: tool_use/tool_result by (session_id, tool_use_id), and a
// system record's parent/child or a slash-command's originating system
// record by uuid -> parent_uuid.
// partnerMap records, for each message marked PairFirst, the message
// marked PairLast it was paired with; reorderPairs consults it to bring
// the two adjacent without having to rediscover the match.
type partnerMap map[*domain.TemplateMessage]*domain.TemplateMessage

func identifyPairs(messages []*domain.TemplateMessage) partnerMap {
	partners := make(partnerMap)
	pairAdjacent(messages, partners)
	pairByToolUseID(messages, partners)
	pairByParentUUID(messages, partners)
	return partners
}

func pairAdjacent(messages []*domain.TemplateMessage, partners partnerMap) {
	for i := 0; i+1 < len(messages); i++ {
		a, b := messages[i], messages[i+1]
		if a.SessionID != b.SessionID || a.IsPaired || b.IsPaired {
			continue
		}
		switch {
		case a.Type == domain.TmplUser && a.Modifiers.IsSlashCommand &&
			b.Type == domain.TmplUser && b.Modifiers.IsCommandOutput:
			markPair(a, b, partners)
		case a.Type == domain.TmplBashInput && b.Type == domain.TmplBashOutput:
			markPair(a, b, partners)
		case a.Type == domain.TmplThinking && b.Type == domain.TmplAssistant:
			markPair(a, b, partners)
		}
	}
}

func pairByToolUseID(messages []*domain.TemplateMessage, partners partnerMap) {
	uses := make(map[string]*domain.TemplateMessage)
	for _, m := range messages {
		if m.Type == domain.TmplToolUse && !m.IsPaired {
			uses[m.SessionID+"\x00"+m.ToolUseID] = m
		}
	}
	for _, m := range messages {
		if m.Type != domain.TmplToolResult || m.IsPaired {
			continue
		}
		if use, ok := uses[m.SessionID+"\x00"+m.ToolUseID]; ok && !use.IsPaired {
			markPair(use, m, partners)
		}
	}
}

func pairByParentUUID(messages []*domain.TemplateMessage, partners partnerMap) {
	byUUID := make(map[string]*domain.TemplateMessage)
	for _, m := range messages {
		if m.UUID != "" {
			byUUID[m.UUID] = m
		}
	}
	for _, m := range messages {
		if m.IsPaired || m.ParentUUID == "" {
			continue
		}
		parent, ok := byUUID[m.ParentUUID]
		if !ok || parent.IsPaired {
			continue
		}
		switch {
		case parent.Type == domain.TmplSystem && m.Type == domain.TmplSystem:
			markPair(parent, m, partners)
		case parent.Type == domain.TmplSystem && m.Type == domain.TmplUser && m.Modifiers.IsSlashCommand:
			markPair(parent, m, partners)
		}
	}
}

func markPair(first, last *domain.TemplateMessage, partners partnerMap) {
	first.IsPaired = true
	first.PairRole = domain.PairFirst
	last.IsPaired = true
	last.PairRole = domain.PairLast
	partners[first] = last

	d := pairDuration(first.RawTimestamp, last.RawTimestamp)
	first.PairDuration = d
	last.PairDuration = d
}
