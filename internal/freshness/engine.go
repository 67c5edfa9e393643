// Package freshness decides which output artifacts a Project's cache
// state requires regenerating, without ever touching source transcripts.
package freshness

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/store"
)

// versionCommentPrefix is the text every generated artifact embeds near
// its top; the Engine greps for it rather than re-rendering to compare.
const versionCommentPrefix = "Generated by claude-code-log v"

// Engine evaluates staleness against a Store snapshot.
type Engine struct {
	st *store.Store
}

// New returns an Engine backed by st.
func New(st *store.Store) *Engine {
	return &Engine{st: st}
}

// Result names every artifact the driver must regenerate.
type Result struct {
	StaleSessionIDs    []string
	StaleCombined      bool  // single-page projects
	StalePageNumbers   []int // multi-page projects; empty if not paginated
	InvalidateAllPages bool  // page_size_config changed: every page must be rebuilt
	ProjectIndexStale  bool
}

// Inputs bundles what the Engine needs beyond the Store itself: the
// current library version, the on-disk directory artifacts are written
// to, and whether this run's Synchronizer pass touched the cache.
type Inputs struct {
	Project        domain.Project
	Sessions       []domain.Session
	Pages          []domain.Page
	PageSizeConfig int
	OutputDir      string
	Extension      string // "html" or "md"
	CurrentVersion string
	CacheUpdated   bool
}

// EvaluateSessions decides staleness for every per-session artifact.
func (e *Engine) EvaluateSessions(in Inputs) []string {
	var stale []string
	for _, sess := range in.Sessions {
		outputPath := sessionOutputPath(sess.SessionID, in.Extension)
		path := in.OutputDir + "/" + outputPath
		if in.CacheUpdated || e.sessionArtifactStale(in, sess, outputPath, path) {
			stale = append(stale, sess.SessionID)
		}
	}
	return stale
}

func (e *Engine) sessionArtifactStale(in Inputs, sess domain.Session, outputPath, path string) bool {
	ctx := context.Background()
	artifact, ok, err := e.st.ArtifactByPath(ctx, in.Project.ID, outputPath)
	if err != nil || !ok {
		return true
	}
	if artifact.Version != in.CurrentVersion {
		return true
	}
	if artifact.MessageCount != sess.MessageCount {
		return true
	}
	onDiskVersion, exists := readVersionComment(path)
	if !exists {
		return true
	}
	return onDiskVersion != in.CurrentVersion
}

// EvaluateCombined decides staleness for the single-page combined
// artifact; callers with a paginated project use EvaluatePages instead.
func (e *Engine) EvaluateCombined(in Inputs) bool {
	if in.CacheUpdated {
		return true
	}
	ctx := context.Background()
	outputPath := combinedOutputPath(in.Extension, 0)
	path := in.OutputDir + "/" + outputPath
	artifact, ok, err := e.st.ArtifactByPath(ctx, in.Project.ID, outputPath)
	if err != nil || !ok {
		return true
	}
	if artifact.Version != in.CurrentVersion {
		return true
	}
	totalMessages := 0
	for _, s := range in.Sessions {
		totalMessages += s.MessageCount
	}
	if artifact.MessageCount != totalMessages {
		return true
	}
	onDiskVersion, exists := readVersionComment(path)
	if !exists {
		return true
	}
	return onDiskVersion != in.CurrentVersion
}

// EvaluatePages decides staleness per Page for a multi-page project. A
// page-size configuration change invalidates every page at once, per
// spec; callers must discard and fully repaginate in that case rather
// than trust individual page comparisons.
func (e *Engine) EvaluatePages(in Inputs) Result {
	var result Result
	if len(in.Pages) > 0 {
		configured := in.Pages[0].PageSizeConfig
		if configured != in.PageSizeConfig {
			result.InvalidateAllPages = true
			for _, p := range in.Pages {
				result.StalePageNumbers = append(result.StalePageNumbers, p.Number)
			}
			return result
		}
	}

	sessionByID := make(map[string]domain.Session, len(in.Sessions))
	for _, s := range in.Sessions {
		sessionByID[s.SessionID] = s
	}

	for _, page := range in.Pages {
		if in.CacheUpdated || e.pageStale(in, page, sessionByID) {
			result.StalePageNumbers = append(result.StalePageNumbers, page.Number)
		}
	}
	return result
}

func (e *Engine) pageStale(in Inputs, page domain.Page, sessionByID map[string]domain.Session) bool {
	if page.Version != in.CurrentVersion {
		return true
	}
	path := in.OutputDir + "/" + page.OutputPath
	onDiskVersion, exists := readVersionComment(path)
	if !exists || onDiskVersion != in.CurrentVersion {
		return true
	}

	ctx := context.Background()
	pageSessions, err := e.pageSessionIDs(ctx, page.ID)
	if err != nil {
		return true
	}
	total := 0
	maxLast := ""
	for _, sid := range pageSessions {
		sess, ok := sessionByID[sid]
		if !ok {
			return true // referenced session no longer exists
		}
		total += sess.MessageCount
		if sess.LastTimestamp > maxLast {
			maxLast = sess.LastTimestamp
		}
	}
	if total != page.MessageCount {
		return true
	}
	return maxLast != page.LastTimestamp
}

func (e *Engine) pageSessionIDs(ctx context.Context, pageID int64) ([]string, error) {
	rows, err := e.st.DB().QueryContext(ctx, `SELECT session_id FROM page_sessions WHERE page_id = ? ORDER BY position`, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// EvaluateProjectIndex decides staleness for the top-level project-index
// artifact, which carries no html_artifacts row of its own since it is
// not scoped to one project.
func (e *Engine) EvaluateProjectIndex(indexPath, currentVersion string) bool {
	onDiskVersion, exists := readVersionComment(indexPath)
	if !exists {
		return true
	}
	return onDiskVersion != currentVersion
}

func sessionOutputPath(sessionID, ext string) string {
	return "session-" + sessionID + "." + ext
}

func combinedOutputPath(ext string, pageNumber int) string {
	if pageNumber <= 1 {
		return "combined_transcripts." + ext
	}
	return fmt.Sprintf("combined_transcripts_%d.%s", pageNumber, ext)
}

// readVersionComment scans the first few lines of an artifact for the
// embedded "Generated by claude-code-log v<version>" marker. Returns
// false in the ok position when the file is missing or carries none.
func readVersionComment(path string) (version string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for i := 0; i < 20 && scanner.Scan(); i++ {
		line := scanner.Text()
		if idx := strings.Index(line, versionCommentPrefix); idx >= 0 {
			rest := line[idx+len(versionCommentPrefix):]
			rest = strings.TrimSpace(rest)
			rest = strings.TrimSuffix(rest, "-->")
			rest = strings.TrimSpace(rest)
			fields := strings.Fields(rest)
			if len(fields) > 0 {
				return fields[0], true
			}
			return "", true
		}
	}
	return "", false
}
