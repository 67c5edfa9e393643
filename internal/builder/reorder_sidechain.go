package builder

import (
	"strings"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

// dedupNoticeText replaces a sidechain's final assistant message when its
// text exactly duplicates the Task tool-result the main chain already
// displays; showing both is redundant since the tool-result panel already
// carries the same summary text.
const dedupNoticeText = "(Task summary — already displayed in Task tool result above)"

// reorderSidechains implements step 10: move each sidechain's records
// (a sub-agent's own message sequence, launched by a Task tool call) to
// immediately follow the Task tool-result that spawned it. Groups are
// matched to Task tool-results by agentId, not by appearance order, so
// parallel sub-agents (whose sidechain group order need not match the
// order their Task results land in the main chain) still attach to the
// right result. When more than one main-chain Task tool-result carries
// the same agentId, the group is inserted after the first one only;
// later results with that agentId are left alone. Within a matched
// group, a final assistant message whose text exactly matches the Task
// tool-result it reports back through is replaced with a dedup notice.
func reorderSidechains(messages []*domain.TemplateMessage) []*domain.TemplateMessage {
	groups, order := groupSidechains(messages)
	if len(groups) == 0 {
		return messages
	}

	main := make([]*domain.TemplateMessage, 0, len(messages))
	for _, m := range messages {
		if !m.Modifiers.IsSidechain {
			main = append(main, m)
		}
	}

	for _, agentID := range order {
		if result := findTaskResult(main, agentID); result != nil {
			applyDedupNotice(groups[agentID], result.ToolResultText)
		}
	}

	out := make([]*domain.TemplateMessage, 0, len(messages))
	used := make(map[string]bool, len(order))
	for _, m := range main {
		out = append(out, m)
		if m.Type != domain.TmplToolResult || m.ToolName != "Task" || m.AgentID == "" {
			continue
		}
		if used[m.AgentID] {
			continue
		}
		if group, ok := groups[m.AgentID]; ok {
			out = append(out, group...)
			used[m.AgentID] = true
		}
	}
	// Sidechain groups whose agentId never matched a main-chain Task
	// tool-result (e.g. on a truncated transcript) are appended at the
	// end rather than dropped.
	for _, agentID := range order {
		if !used[agentID] {
			out = append(out, groups[agentID]...)
		}
	}
	return out
}

func groupSidechains(messages []*domain.TemplateMessage) (map[string][]*domain.TemplateMessage, []string) {
	groups := make(map[string][]*domain.TemplateMessage)
	var order []string
	for _, m := range messages {
		if !m.Modifiers.IsSidechain || m.AgentID == "" {
			continue
		}
		if _, ok := groups[m.AgentID]; !ok {
			order = append(order, m.AgentID)
		}
		groups[m.AgentID] = append(groups[m.AgentID], m)
	}
	return groups, order
}

// findTaskResult returns the first main-chain Task tool-result bearing
// agentID, or nil if none does.
func findTaskResult(main []*domain.TemplateMessage, agentID string) *domain.TemplateMessage {
	for _, m := range main {
		if m.Type == domain.TmplToolResult && m.ToolName == "Task" && m.AgentID == agentID {
			return m
		}
	}
	return nil
}

func applyDedupNotice(group []*domain.TemplateMessage, taskResultText string) {
	if taskResultText == "" || len(group) == 0 {
		return
	}
	last := group[len(group)-1]
	if last.Type == domain.TmplAssistant && strings.TrimSpace(last.RawTextContent) == strings.TrimSpace(taskResultText) {
		last.DedupNotice = dedupNoticeText
	}
}
