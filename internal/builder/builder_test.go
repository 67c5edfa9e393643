package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

func usage(in, out int64) *domain.Usage {
	return &domain.Usage{InputTokens: &in, OutputTokens: &out}
}

func TestBuild_DropsWarmupSessions(t *testing.T) {
	records := []domain.Record{
		{Type: domain.DiscUser, SessionID: "warm", Timestamp: "2024-01-01T00:00:00Z", Content: []domain.ContentItem{{Kind: domain.ContentText, Text: "Warmup"}}},
		{Type: domain.DiscUser, SessionID: "real", Timestamp: "2024-01-01T00:01:00Z", Content: []domain.ContentItem{{Kind: domain.ContentText, Text: "hello"}}},
	}
	result := Build(records)
	require.Len(t, result.Navigation, 1)
	assert.Equal(t, "real", result.Navigation[0].SessionID)
}

func TestBuild_TokenDedupByRequestID(t *testing.T) {
	records := []domain.Record{
		{Type: domain.DiscUser, SessionID: "s1", Timestamp: "2024-01-01T00:00:00Z", Content: []domain.ContentItem{{Kind: domain.ContentText, Text: "hi"}}},
		{Type: domain.DiscAssistant, SessionID: "s1", Timestamp: "2024-01-01T00:00:01Z", RequestID: "req-1", Usage: usage(10, 20), Content: []domain.ContentItem{{Kind: domain.ContentText, Text: "first"}}},
		{Type: domain.DiscAssistant, SessionID: "s1", Timestamp: "2024-01-01T00:00:02Z", RequestID: "req-1", Usage: usage(10, 20), Content: []domain.ContentItem{{Kind: domain.ContentText, Text: "stutter"}}},
	}
	result := Build(records)
	require.Len(t, result.Navigation, 1)
	assert.Equal(t, "10 in / 20 out", result.Navigation[0].TokenSummary)
}

func TestBuild_PairsToolUseAndResult(t *testing.T) {
	records := []domain.Record{
		{Type: domain.DiscUser, SessionID: "s1", Timestamp: "2024-01-01T00:00:00Z", Content: []domain.ContentItem{{Kind: domain.ContentText, Text: "do it"}}},
		{Type: domain.DiscAssistant, SessionID: "s1", Timestamp: "2024-01-01T00:00:01Z", Content: []domain.ContentItem{{Kind: domain.ContentToolUse, ToolUseID: "t1", ToolName: "Read", ToolInput: map[string]any{"file_path": "/a.go"}}}},
		{Type: domain.DiscUser, SessionID: "s1", Timestamp: "2024-01-01T00:00:02Z", Content: []domain.ContentItem{{Kind: domain.ContentToolResult, ToolResultForID: "t1", ToolResultText: "contents"}}},
	}
	result := Build(records)
	var found bool
	var walk func([]*domain.TemplateMessage)
	walk = func(nodes []*domain.TemplateMessage) {
		for _, n := range nodes {
			if n.Type == domain.TmplToolUse && n.IsPaired && n.PairRole == domain.PairFirst {
				found = true
			}
			walk(n.Children)
		}
	}
	walk(result.Roots)
	assert.True(t, found, "expected a tool_use marked as pair_first")
}

func TestBuild_SessionHeaderCarriesSummary(t *testing.T) {
	records := []domain.Record{
		{Type: domain.DiscUser, UUID: "u1", SessionID: "s1", Timestamp: "2024-01-01T00:00:00Z", Content: []domain.ContentItem{{Kind: domain.ContentText, Text: "hello"}}},
		{Type: domain.DiscAssistant, UUID: "a1", SessionID: "s1", Timestamp: "2024-01-01T00:00:01Z", Content: []domain.ContentItem{{Kind: domain.ContentText, Text: "hi"}}},
		{Type: domain.DiscSummary, LeafUUID: "a1", SummaryText: "Greeting exchange"},
	}
	result := Build(records)
	require.NotEmpty(t, result.Roots)
	assert.Equal(t, "Greeting exchange", result.Roots[0].SessionSummary)
}
