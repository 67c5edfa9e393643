package freshness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinedOutputPath(t *testing.T) {
	assert.Equal(t, "combined_transcripts.html", combinedOutputPath("html", 0))
	assert.Equal(t, "combined_transcripts.html", combinedOutputPath("html", 1))
	assert.Equal(t, "combined_transcripts_2.html", combinedOutputPath("html", 2))
}

func TestSessionOutputPath(t *testing.T) {
	assert.Equal(t, "session-abc123.md", sessionOutputPath("abc123", "md"))
}

func TestReadVersionComment_MissingFile(t *testing.T) {
	_, ok := readVersionComment("/nonexistent/path/does-not-exist.html")
	assert.False(t, ok)
}
