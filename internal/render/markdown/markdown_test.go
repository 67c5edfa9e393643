package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/render"
)

func TestRenderCombined_BlockQuotesBodyText(t *testing.T) {
	r := New()
	msg := &domain.TemplateMessage{
		Type:             domain.TmplUser,
		MessageID:        "d-1",
		RawTextContent:   "# not a real heading\n> not a real quote",
		DisplayTimestamp: "2023-01-01 10:00:00",
	}
	out, err := r.RenderCombined(render.CombinedData{
		Project:  domain.Project{Path: "/tmp/proj"},
		Messages: []*domain.TemplateMessage{msg},
		Version:  "0.6.0",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Generated by claude-code-log v0.6.0")
	assert.Contains(t, out, "> # not a real heading")
	assert.Contains(t, out, `\>`)
}

func TestRenderCombined_PaginationSentinels(t *testing.T) {
	r := New()
	out, err := r.RenderCombined(render.CombinedData{
		Project: domain.Project{Path: "/tmp/proj"},
		Pagination: &render.Pagination{
			PageNumber: 2, TotalPages: 2, PrevPath: "combined_transcripts.html", NextHidden: true,
		},
		Version: "0.6.0",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "PAGINATION_NEXT_LINK_START")
	assert.Contains(t, out, "PAGINATION_NEXT_LINK_END")
}

func TestRenderSession_TableOfContents(t *testing.T) {
	r := New()
	out, err := r.RenderSession(render.SessionData{
		Session: domain.Session{SessionID: "s1", Summary: "greet"},
		Messages: []*domain.TemplateMessage{
			{Type: domain.TmplAssistant, MessageID: "d-1", RawTextContent: "hi there"},
		},
		Version: "0.6.0",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "## Contents")
	assert.Contains(t, out, "hi there")
}
