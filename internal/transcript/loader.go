// Package transcript parses append-only JSONL transcript files into
// domain.Record values and discovers the sidechain files an agent spawns
// alongside its primary transcript.
package transcript

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/brianly1003/claude-code-log/internal/adapters/jsonl"
	"github.com/brianly1003/claude-code-log/internal/domain"
)

// maxLineBytes bounds a single JSONL line; transcripts occasionally embed
// large tool outputs or base64 images, so this is generous rather than
// tight.
const maxLineBytes = 64 << 20

// LoadResult is the outcome of parsing one transcript file.
type LoadResult struct {
	Records []domain.Record
	// Skipped counts lines that failed to parse; each is logged as a
	// warning rather than aborting the whole file.
	Skipped int
}

// LoadFile reads and parses every line of a transcript file at path.
// Malformed or unrecognized lines are skipped and logged rather than
// failing the whole file, since a single corrupted line must not block
// ingestion of the rest of a session.
func LoadFile(path string, log zerolog.Logger) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := jsonl.NewReader(f, maxLineBytes)
	var result LoadResult
	lineNum := 0
	for {
		line, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read %s: %w", path, err)
		}
		lineNum++
		if line.TooLong {
			log.Warn().Str("file", path).Int("line", lineNum).Msg("skipping oversized transcript line")
			result.Skipped++
			continue
		}
		if len(strings.TrimSpace(string(line.Data))) == 0 {
			continue
		}
		rec, err := parseRecord(lineNum, line.Data)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Int("line", lineNum).Msg("skipping malformed transcript line")
			result.Skipped++
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// ParseLine parses a single already-read JSONL line, the same path
// LoadFile uses per line. Exported so the store package can rebuild a
// domain.Record from a decompressed cached payload without re-reading
// the source file.
func ParseLine(lineNum int, line []byte) (domain.Record, error) {
	return parseRecord(lineNum, line)
}

// sidechainFilePattern matches the sibling files an agent's sidechain
// produces: agent-<agentId>.<ext>, stored alongside the primary session
// file within the same project directory.
var sidechainFilePattern = regexp.MustCompile(`^agent-([A-Za-z0-9_-]+)\.(.+)$`)

// SidechainAgentID reports whether name matches the agent-<id>.<ext>
// sibling file pattern, returning the agent id if so.
func SidechainAgentID(name string) (string, bool) {
	m := sidechainFilePattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SidechainFile is one discovered agent sibling file.
type SidechainFile struct {
	AgentID string
	Path    string
}

// DiscoverSidechainFiles scans a project directory for agent-<id>.<ext>
// sibling files. These hold the isolated conversation of a subagent
// launched by the Task tool; they are ingested like any other transcript
// file, and the synchronizer tags their records Sidechain=true from the
// file name (see MarkSidechain).
func DiscoverSidechainFiles(projectDir string) ([]SidechainFile, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("read project dir %s: %w", projectDir, err)
	}
	var found []SidechainFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := sidechainFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		found = append(found, SidechainFile{
			AgentID: m[1],
			Path:    filepath.Join(projectDir, e.Name()),
		})
	}
	return found, nil
}
