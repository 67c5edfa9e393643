package paginate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brianly1003/claude-code-log/internal/domain"
)

func sess(id string, count int, ts string) domain.Session {
	return domain.Session{SessionID: id, MessageCount: count, FirstTimestamp: ts, LastTimestamp: ts}
}

func ids(groups [][]domain.Session) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		for _, s := range g {
			out[i] = append(out[i], s.SessionID)
		}
	}
	return out
}

func TestPageOutputPath(t *testing.T) {
	assert.Equal(t, "combined_transcripts.html", PageOutputPath(1, "html"))
	assert.Equal(t, "combined_transcripts_2.html", PageOutputPath(2, "html"))
	assert.Equal(t, "combined_transcripts_10.html", PageOutputPath(10, "html"))
}

func TestAssign_SingleSessionBelowThreshold(t *testing.T) {
	groups := Assign([]domain.Session{sess("s1", 100, "2023-01-01T10:00:00Z")}, 5000)
	assert.Equal(t, [][]string{{"s1"}}, ids(groups))
}

func TestAssign_MultipleSessionsBelowThreshold(t *testing.T) {
	sessions := []domain.Session{
		sess("s1", 1000, "2023-01-01T10:00:00Z"),
		sess("s2", 2000, "2023-01-02T10:00:00Z"),
		sess("s3", 1500, "2023-01-03T10:00:00Z"),
	}
	groups := Assign(sessions, 5000)
	assert.Equal(t, [][]string{{"s1", "s2", "s3"}}, ids(groups))
}

func TestAssign_ExceedsThresholdClosesPage(t *testing.T) {
	sessions := []domain.Session{
		sess("s1", 3000, "2023-01-01T10:00:00Z"),
		sess("s2", 3000, "2023-01-02T10:00:00Z"),
		sess("s3", 2000, "2023-01-03T10:00:00Z"),
	}
	groups := Assign(sessions, 5000)
	assert.Equal(t, [][]string{{"s1", "s2"}, {"s3"}}, ids(groups))
}

func TestAssign_LargeSessionAllowsOverflow(t *testing.T) {
	groups := Assign([]domain.Session{sess("s1", 10000, "2023-01-01T10:00:00Z")}, 5000)
	assert.Equal(t, [][]string{{"s1"}}, ids(groups))
}

func TestAssign_SortsChronologically(t *testing.T) {
	sessions := []domain.Session{
		sess("s3", 1000, "2023-01-03T10:00:00Z"),
		sess("s1", 1000, "2023-01-01T10:00:00Z"),
		sess("s2", 1000, "2023-01-02T10:00:00Z"),
	}
	groups := Assign(sessions, 5000)
	assert.Equal(t, [][]string{{"s1", "s2", "s3"}}, ids(groups))
}

func TestAssign_MultiplePagesWithOverflow(t *testing.T) {
	sessions := []domain.Session{
		sess("s1", 2000, "2023-01-01T10:00:00Z"),
		sess("s2", 4000, "2023-01-02T10:00:00Z"),
		sess("s3", 3000, "2023-01-03T10:00:00Z"),
		sess("s4", 3000, "2023-01-04T10:00:00Z"),
		sess("s5", 1000, "2023-01-05T10:00:00Z"),
	}
	groups := Assign(sessions, 5000)
	assert.Equal(t, [][]string{{"s1", "s2"}, {"s3", "s4"}, {"s5"}}, ids(groups))
}

func TestAssign_Empty(t *testing.T) {
	assert.Nil(t, Assign(nil, 5000))
}

func TestAssign_VerySmallPageSizeOnePerPage(t *testing.T) {
	sessions := []domain.Session{
		sess("s1", 10, "2023-01-01T10:00:00Z"),
		sess("s2", 10, "2023-01-02T10:00:00Z"),
		sess("s3", 10, "2023-01-03T10:00:00Z"),
		sess("s4", 10, "2023-01-04T10:00:00Z"),
	}
	groups := Assign(sessions, 5)
	assert.Equal(t, [][]string{{"s1"}, {"s2"}, {"s3"}, {"s4"}}, ids(groups))
}

func TestBuildPages_PopulatesAggregates(t *testing.T) {
	sessions := []domain.Session{
		sess("s1", 1000, "2023-01-01T10:00:00Z"),
		sess("s2", 2000, "2023-01-02T10:00:00Z"),
	}
	groups := Assign(sessions, 5000)
	pages, pageSessions := BuildPages(42, groups, 5000, "html", "0.6.0")
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "combined_transcripts.html", pages[0].OutputPath)
	assert.Equal(t, 3000, pages[0].MessageCount)
	assert.Equal(t, "s1", pages[0].FirstSessionID)
	assert.Equal(t, "s2", pages[0].LastSessionID)
	require.Len(t, pageSessions, 1)
	assert.Len(t, pageSessions[0], 2)
}

func TestEnableNextLinkOnPreviousPage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combined_transcripts.html")
	content := "<!-- PAGINATION_NEXT_LINK_START -->\n" +
		`<a href="combined_transcripts_2.html" class="page-nav-link next last-page">Next</a>` +
		"\n<!-- PAGINATION_NEXT_LINK_END -->"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	changed, err := EnableNextLinkOnPreviousPage(dir, 1, "html")
	require.NoError(t, err)
	assert.True(t, changed)

	updated, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(updated), "last-page")
	assert.Contains(t, string(updated), `class="page-nav-link next"`)
}

func TestEnableNextLinkOnPreviousPage_NoOpIfAlreadyVisible(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "combined_transcripts.html")
	content := "<!-- PAGINATION_NEXT_LINK_START -->\n" +
		`<a href="combined_transcripts_2.html" class="page-nav-link next">Next</a>` +
		"\n<!-- PAGINATION_NEXT_LINK_END -->"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	changed, err := EnableNextLinkOnPreviousPage(dir, 1, "html")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEnableNextLinkOnPreviousPage_MissingFile(t *testing.T) {
	dir := t.TempDir()
	changed, err := EnableNextLinkOnPreviousPage(dir, 99, "html")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEnableNextLinkOnPreviousPage_InvalidPageNumber(t *testing.T) {
	dir := t.TempDir()
	changed, err := EnableNextLinkOnPreviousPage(dir, 0, "html")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = EnableNextLinkOnPreviousPage(dir, -1, "html")
	require.NoError(t, err)
	assert.False(t, changed)
}
