package domain

import "strconv"

// Modifiers carries the small boolean classifiers the Builder's pairing
// and hierarchy passes consult.
type Modifiers struct {
	IsSlashCommand     bool
	IsCommandOutput    bool
	IsSteering         bool // queue-operation "remove" variant
	IsCompactedSummary bool
	IsSidechain        bool
}

// TemplateMessage is one node of the renderable tree the Builder produces.
// Pairing, reordering, and hierarchy assignment all operate positionally
// on a slice of these before Children is populated by the final
// tree-linking pass.
type TemplateMessage struct {
	Type       TemplateKind
	SessionID  string
	UUID       string
	ParentUUID string
	AgentID    string

	RawTimestamp     string // canonical YYYY-MM-DDTHH:MM:SSZ; a session header carries its session's first timestamp
	DisplayTimestamp string

	// Text content used for rendering and for sidechain/Task dedup
	// comparison.
	RawTextContent string

	// Tool linkage.
	ToolUseID      string
	ToolName       string
	ToolInput      map[string]any
	ToolResultText string
	IsError        bool

	ImageSource    string
	ImageMediaType string

	// DedupNotice replaces RawTextContent's display when a sidechain's
	// final assistant text duplicates its Task tool-result. Empty unless
	// dedup applied.
	DedupNotice string

	Modifiers Modifiers

	SystemLevel SystemLevel

	// IsSessionHeader marks the synthetic header injected at the start of
	// each session's block.
	IsSessionHeader bool
	SessionSummary  string

	// Token dedup bookkeeping.
	RequestID       string
	Usage           *Usage
	CountsForTokens bool

	// Pairing.
	IsPaired     bool
	PairRole     PairRole
	PairDuration string

	// Hierarchy.
	MessageID string
	Ancestry  []string

	// Children counts.
	HasChildren             bool
	ImmediateChildrenCount  int
	TotalDescendantsCount   int
	ImmediateChildrenByType map[TemplateKind]int
	TotalDescendantsByType  map[TemplateKind]int

	// Tree linking.
	Children []*TemplateMessage
}

// ChildrenLabel renders a human-readable summary of immediate children,
// e.g. "1 user, 3 assistants", collapsing tool_use and tool_result into
// "N tool pairs" when their counts match.
func (m *TemplateMessage) ChildrenLabel() string {
	return formatTypeCounts(m.ImmediateChildrenByType)
}

// DescendantsLabel is the same formatting applied to total descendants.
func (m *TemplateMessage) DescendantsLabel() string {
	return formatTypeCounts(m.TotalDescendantsByType)
}

func formatTypeCounts(counts map[TemplateKind]int) string {
	if len(counts) == 0 {
		return ""
	}
	useCount := counts[TmplToolUse]
	resultCount := counts[TmplToolResult]
	if useCount > 0 && useCount == resultCount {
		merged := map[TemplateKind]int{}
		for k, v := range counts {
			if k == TmplToolUse || k == TmplToolResult {
				continue
			}
			merged[k] = v
		}
		return joinTypeCounts(merged, useCount)
	}
	return joinTypeCounts(counts, 0)
}

func joinTypeCounts(counts map[TemplateKind]int, toolPairs int) string {
	labels := labelOrder()
	parts := make([]string, 0, len(counts)+1)
	for _, k := range labels {
		if n, ok := counts[k]; ok && n > 0 {
			parts = append(parts, pluralize(n, string(k)))
		}
	}
	if toolPairs > 0 {
		parts = append(parts, pluralize(toolPairs, "tool pair"))
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

func labelOrder() []TemplateKind {
	return []TemplateKind{
		TmplUser, TmplAssistant, TmplThinking, TmplToolUse, TmplToolResult,
		TmplSystem, TmplImage, TmplBashInput, TmplBashOutput,
	}
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
