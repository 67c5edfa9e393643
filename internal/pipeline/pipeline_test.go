package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianly1003/claude-code-log/internal/config"
	"github.com/brianly1003/claude-code-log/internal/store"
)

const fixtureTranscript = `{"type":"user","uuid":"u1","parentUuid":"","sessionId":"sess-1","timestamp":"2025-01-01T10:00:00.000Z","cwd":"/repo","message":{"role":"user","content":"hello there"}}
{"type":"assistant","uuid":"a1","parentUuid":"u1","sessionId":"sess-1","timestamp":"2025-01-01T10:00:05.000Z","cwd":"/repo","message":{"role":"assistant","content":"hi, how can I help?","usage":{"input_tokens":10,"output_tokens":5}}}
`

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(context.Background(), filepath.Join(dir, "cache.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func writeFixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sess-1.jsonl"), []byte(fixtureTranscript), 0o644))
	return dir
}

func TestRun_RendersCombinedAndSessionArtifacts(t *testing.T) {
	st := newTestStore(t)
	projectDir := writeFixtureProject(t)

	pl := New(st, zerolog.Nop())
	report, err := pl.Run(context.Background(), Options{ProjectDir: projectDir, Format: FormatHTML})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesIngested)
	assert.True(t, report.CombinedRendered)
	assert.Equal(t, []string{"sess-1"}, report.SessionsRendered)

	combined, err := os.ReadFile(filepath.Join(projectDir, "combined_transcripts.html"))
	require.NoError(t, err)
	assert.Contains(t, string(combined), "hello there")
	assert.Contains(t, string(combined), "Generated by claude-code-log v")

	session, err := os.ReadFile(filepath.Join(projectDir, "session-sess-1.html"))
	require.NoError(t, err)
	assert.Contains(t, string(session), "hi, how can I help?")
}

func TestRun_SecondRunIsNoOpWhenNothingChanged(t *testing.T) {
	st := newTestStore(t)
	projectDir := writeFixtureProject(t)

	pl := New(st, zerolog.Nop())
	ctx := context.Background()
	_, err := pl.Run(ctx, Options{ProjectDir: projectDir, Format: FormatHTML})
	require.NoError(t, err)

	report, err := pl.Run(ctx, Options{ProjectDir: projectDir, Format: FormatHTML})
	require.NoError(t, err)

	assert.Equal(t, 0, report.FilesIngested)
	assert.False(t, report.CombinedRendered)
	assert.Empty(t, report.SessionsRendered)
}

func TestRun_SkipCombinedAndSkipIndividualSessions(t *testing.T) {
	st := newTestStore(t)
	projectDir := writeFixtureProject(t)

	pl := New(st, zerolog.Nop())
	report, err := pl.Run(context.Background(), Options{
		ProjectDir: projectDir,
		Format:     FormatMarkdown,
		Render:     config.RenderConfig{SkipCombined: true, SkipIndividualSessions: true},
	})
	require.NoError(t, err)
	assert.False(t, report.CombinedRendered)
	assert.Empty(t, report.SessionsRendered)

	_, err = os.Stat(filepath.Join(projectDir, "combined_transcripts.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_DateRangeFilterExcludesOutOfRangeSession(t *testing.T) {
	st := newTestStore(t)
	projectDir := writeFixtureProject(t)

	pl := New(st, zerolog.Nop())
	report, err := pl.Run(context.Background(), Options{
		ProjectDir: projectDir,
		Format:     FormatHTML,
		Render:     config.RenderConfig{DateFrom: "2025-06-01T00:00:00Z"},
	})
	require.NoError(t, err)
	// Every message predates the filter's lower bound; nothing should be
	// reported as rendered for a session that has no surviving messages.
	assert.Empty(t, report.SessionsRendered)
}

func TestRenderProjectIndex_WritesIndexAcrossProjects(t *testing.T) {
	st := newTestStore(t)
	projectDir := writeFixtureProject(t)
	root := filepath.Dir(projectDir)

	pl := New(st, zerolog.Nop())
	_, err := pl.Run(context.Background(), Options{ProjectDir: projectDir, Format: FormatHTML})
	require.NoError(t, err)

	require.NoError(t, pl.RenderProjectIndex(context.Background(), root, FormatHTML))
	index, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "Generated by claude-code-log v")
}
