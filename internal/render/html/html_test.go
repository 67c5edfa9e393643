package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianly1003/claude-code-log/internal/config"
	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/render"
)

func TestRenderCombined_EmbedsVersionAndSentinels(t *testing.T) {
	r := New()
	msg := &domain.TemplateMessage{
		Type:             domain.TmplUser,
		MessageID:        "d-1",
		RawTextContent:   "hello",
		DisplayTimestamp: "2023-01-01 10:00:00",
	}
	out, err := r.RenderCombined(render.CombinedData{
		Project:  domain.Project{Path: "/tmp/proj"},
		Messages: []*domain.TemplateMessage{msg},
		Config:   config.RenderConfig{ShowStats: true},
		Pagination: &render.Pagination{
			PageNumber: 1, TotalPages: 2, NextPath: "combined_transcripts_2.html",
		},
		Version: "0.6.0",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Generated by claude-code-log v0.6.0")
	assert.Contains(t, out, "PAGINATION_NEXT_LINK_START")
	assert.Contains(t, out, "PAGINATION_NEXT_LINK_END")
	assert.Contains(t, out, "hello")
}

func TestRenderSession(t *testing.T) {
	r := New()
	out, err := r.RenderSession(render.SessionData{
		Project: domain.Project{Path: "/tmp/proj"},
		Session: domain.Session{SessionID: "s1", Summary: "greet", MessageCount: 1},
		Messages: []*domain.TemplateMessage{
			{Type: domain.TmplUser, MessageID: "d-1", RawTextContent: "hi"},
		},
		Version: "0.6.0",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "greet")
	assert.Contains(t, out, "hi")
}

func TestRenderProjectIndex(t *testing.T) {
	r := New()
	out, err := r.RenderProjectIndex(render.ProjectIndexData{
		Projects: []render.ProjectSummary{
			{Project: domain.Project{TotalMessages: 5}, DisplayName: "proj1", CombinedPath: "proj1/combined_transcripts.html"},
		},
		Version: "0.6.0",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "proj1")
	assert.Contains(t, out, "Generated by claude-code-log")
}
