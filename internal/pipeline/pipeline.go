// Package pipeline orchestrates a project end to end: sync the cache
// with its source files, rebuild the message tree, decide which
// artifacts are stale, repaginate if needed, render, and write the
// result to disk. It is the single entry point cmd/cclog's render and
// watch commands drive; serve only previews what is already on disk.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/brianly1003/claude-code-log/internal/builder"
	"github.com/brianly1003/claude-code-log/internal/config"
	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/freshness"
	"github.com/brianly1003/claude-code-log/internal/paginate"
	"github.com/brianly1003/claude-code-log/internal/render"
	"github.com/brianly1003/claude-code-log/internal/render/html"
	"github.com/brianly1003/claude-code-log/internal/render/markdown"
	"github.com/brianly1003/claude-code-log/internal/store"
	"github.com/brianly1003/claude-code-log/internal/sync"
)

// Format is an output format a Pipeline can render.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
)

func (f Format) extension() string {
	return string(f)
}

func rendererFor(f Format) render.Renderer {
	if f == FormatMarkdown {
		return markdown.New()
	}
	return html.New()
}

// Pipeline wires the Synchronizer, Builder, Freshness Engine, Paginator,
// and a Renderer together over one cache Store.
type Pipeline struct {
	st  *store.Store
	sy  *sync.Synchronizer
	fe  *freshness.Engine
	log zerolog.Logger
}

// New returns a Pipeline backed by st.
func New(st *store.Store, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		st:  st,
		sy:  sync.New(st, log),
		fe:  freshness.New(st),
		log: log,
	}
}

// Options configures one Run.
type Options struct {
	ProjectDir string
	OutputDir  string // defaults to ProjectDir when empty
	Format     Format
	Render     config.RenderConfig
}

// Report summarizes what one Run did.
type Report struct {
	Project           domain.Project
	FilesIngested     int
	FilesSkipped      int
	SessionsRendered  []string
	CombinedRendered  bool
	PageCount         int
	PagesRendered     []int
	ProjectIndexStale bool
}

// Run brings a project's cache up to date and regenerates whichever
// output artifacts the Freshness Engine finds stale.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Format == "" {
		opts.Format = FormatHTML
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = opts.ProjectDir
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	syncResult, err := p.sy.EnsureFreshCache(ctx, opts.ProjectDir)
	if err != nil {
		return Report{}, fmt.Errorf("sync project %s: %w", opts.ProjectDir, err)
	}
	cacheUpdated := syncResult.FilesIngested > 0

	records, err := p.st.MessagesForProject(ctx, syncResult.Project.ID)
	if err != nil {
		return Report{}, fmt.Errorf("load messages: %w", err)
	}

	dateFiltered := opts.Render.DateFrom != "" || opts.Render.DateTo != ""
	if dateFiltered {
		records = filterByDateRange(records, opts.Render.DateFrom, opts.Render.DateTo)
		// A date-filtered view is a partial projection of the cache, not
		// the canonical full render the Freshness Engine's artifact
		// ledger tracks; treat every artifact as needing a fresh render
		// and skip recording it so the ledger still reflects the
		// unfiltered state for the next unfiltered run.
		cacheUpdated = true
	}
	built := builder.Build(records)

	sessions, err := p.st.ListSessions(ctx, syncResult.Project.ID)
	if err != nil {
		return Report{}, fmt.Errorf("list sessions: %w", err)
	}
	if dateFiltered {
		sessions = filterSessionsByDateRange(sessions, opts.Render.DateFrom, opts.Render.DateTo)
	}

	report := Report{
		Project:       syncResult.Project,
		FilesIngested: syncResult.FilesIngested,
		FilesSkipped:  syncResult.FilesSkipped,
	}

	pageSize := opts.Render.PageSize
	if pageSize <= 0 {
		pageSize = config.DefaultPageSize
	}

	existingPages, err := p.st.ListPages(ctx, syncResult.Project.ID)
	if err != nil {
		return report, fmt.Errorf("list pages: %w", err)
	}

	ext := opts.Format.extension()
	renderer := rendererFor(opts.Format)

	in := freshness.Inputs{
		Project:        syncResult.Project,
		Sessions:       sessions,
		Pages:          existingPages,
		PageSizeConfig: pageSize,
		OutputDir:      outputDir,
		Extension:      ext,
		CurrentVersion: domain.CurrentVersion,
		CacheUpdated:   cacheUpdated,
	}

	if !opts.Render.SkipIndividualSessions {
		stale := p.fe.EvaluateSessions(in)
		for _, sessionID := range stale {
			if err := p.renderSession(ctx, renderer, outputDir, ext, syncResult.Project, sessions, built, sessionID, opts.Render); err != nil {
				return report, err
			}
			report.SessionsRendered = append(report.SessionsRendered, sessionID)
		}
	}

	if opts.Render.SkipCombined {
		return report, nil
	}

	totalMessages := 0
	for _, s := range sessions {
		totalMessages += s.MessageCount
	}

	if totalMessages <= pageSize {
		if p.fe.EvaluateCombined(in) {
			if err := p.renderCombinedSinglePage(ctx, renderer, outputDir, ext, syncResult.Project, built, opts.Render); err != nil {
				return report, err
			}
			report.CombinedRendered = true
		}
		// A single-page project carries no paginated page rows; drop any
		// left over from a prior run with a smaller page_size.
		if len(existingPages) > 0 {
			if err := p.st.ReplacePages(ctx, syncResult.Project.ID, nil, nil); err != nil {
				return report, fmt.Errorf("clear stale page layout: %w", err)
			}
		}
		return report, nil
	}

	groups := paginate.Assign(sessions, pageSize)
	pages, pageSessions := paginate.BuildPages(syncResult.Project.ID, groups, pageSize, ext, domain.CurrentVersion)
	generatedAt := nowArtifact()
	for i := range pages {
		pages[i].GeneratedAt = generatedAt
	}
	report.PageCount = len(pages)

	var evalResult freshness.Result
	if len(existingPages) != len(pages) {
		// The page count itself changed (sessions grew or shrank enough to
		// shift every boundary); there is no old page to compare each new
		// one against, so treat the whole layout as stale.
		evalResult.InvalidateAllPages = true
		for _, pg := range pages {
			evalResult.StalePageNumbers = append(evalResult.StalePageNumbers, pg.Number)
		}
	} else {
		evalResult = p.fe.EvaluatePages(in)
	}
	staleNumbers := make(map[int]bool, len(evalResult.StalePageNumbers))
	for _, n := range evalResult.StalePageNumbers {
		staleNumbers[n] = true
	}

	if evalResult.InvalidateAllPages {
		if err := p.st.ReplacePages(ctx, syncResult.Project.ID, pages, pageSessions); err != nil {
			return report, fmt.Errorf("replace page layout: %w", err)
		}
	}

	for i, page := range pages {
		if !staleNumbers[page.Number] && !evalResult.InvalidateAllPages {
			continue
		}
		pageSessionRows := groups[i]
		if err := p.renderPage(ctx, renderer, outputDir, ext, syncResult.Project, built, page, len(pages), pageSessionRows, opts.Render); err != nil {
			return report, err
		}
		report.PagesRendered = append(report.PagesRendered, page.Number)
		if page.Number > 1 {
			if _, err := paginate.EnableNextLinkOnPreviousPage(outputDir, page.Number-1, ext); err != nil {
				p.log.Warn().Err(err).Int("page", page.Number-1).Msg("failed to patch next-page link")
			}
		}
	}

	if !evalResult.InvalidateAllPages && len(report.PagesRendered) > 0 {
		if err := p.st.ReplacePages(ctx, syncResult.Project.ID, pages, pageSessions); err != nil {
			return report, fmt.Errorf("replace page layout: %w", err)
		}
	}

	return report, nil
}

func (p *Pipeline) renderSession(ctx context.Context, r render.Renderer, outputDir, ext string, project domain.Project, sessions []domain.Session, built builder.Result, sessionID string, cfg config.RenderConfig) error {
	var sess domain.Session
	for _, s := range sessions {
		if s.SessionID == sessionID {
			sess = s
			break
		}
	}
	messages := sessionSubtree(built.Roots, sessionID)
	out, err := r.RenderSession(render.SessionData{
		Project:  project,
		Session:  sess,
		Messages: messages,
		Config:   cfg,
		Version:  domain.CurrentVersion,
	})
	if err != nil {
		return fmt.Errorf("render session %s: %w", sessionID, err)
	}
	outputPath := "session-" + sessionID + "." + ext
	if err := writeArtifact(outputDir, outputPath, out); err != nil {
		return err
	}
	if cfg.DateFrom != "" || cfg.DateTo != "" {
		return nil
	}
	return p.st.RecordArtifact(ctx, domain.HtmlArtifact{
		ProjectID:    project.ID,
		OutputPath:   outputPath,
		GeneratedAt:  nowArtifact(),
		SessionID:    sessionID,
		MessageCount: sess.MessageCount,
		Version:      domain.CurrentVersion,
	})
}

func (p *Pipeline) renderCombinedSinglePage(ctx context.Context, r render.Renderer, outputDir, ext string, project domain.Project, built builder.Result, cfg config.RenderConfig) error {
	out, err := r.RenderCombined(render.CombinedData{
		Project:    project,
		Messages:   built.Roots,
		Navigation: built.Navigation,
		Config:     cfg,
		Version:    domain.CurrentVersion,
	})
	if err != nil {
		return fmt.Errorf("render combined: %w", err)
	}
	outputPath := paginate.PageOutputPath(1, ext)
	if err := writeArtifact(outputDir, outputPath, out); err != nil {
		return err
	}
	if cfg.DateFrom != "" || cfg.DateTo != "" {
		return nil
	}
	return p.st.RecordArtifact(ctx, domain.HtmlArtifact{
		ProjectID:    project.ID,
		OutputPath:   outputPath,
		GeneratedAt:  nowArtifact(),
		MessageCount: int(project.TotalMessages),
		Version:      domain.CurrentVersion,
	})
}

func (p *Pipeline) renderPage(ctx context.Context, r render.Renderer, outputDir, ext string, project domain.Project, built builder.Result, page domain.Page, totalPages int, pageSessions []domain.Session, cfg config.RenderConfig) error {
	pageSessionIDs := make(map[string]bool, len(pageSessions))
	for _, s := range pageSessions {
		pageSessionIDs[s.SessionID] = true
	}
	var messages []*domain.TemplateMessage
	for _, root := range built.Roots {
		if pageSessionIDs[root.SessionID] {
			messages = append(messages, root)
		}
	}

	pag := &render.Pagination{
		PageNumber: page.Number,
		TotalPages: totalPages,
	}
	if page.Number > 1 {
		pag.PrevPath = paginate.PageOutputPath(page.Number-1, ext)
	}
	pag.NextPath = paginate.PageOutputPath(page.Number+1, ext)
	pag.NextHidden = page.Number >= totalPages

	out, err := r.RenderCombined(render.CombinedData{
		Project:    project,
		Messages:   messages,
		Navigation: filterNavigation(built.Navigation, pageSessionIDs),
		Config:     cfg,
		Pagination: pag,
		Version:    domain.CurrentVersion,
	})
	if err != nil {
		return fmt.Errorf("render page %d: %w", page.Number, err)
	}
	if err := writeArtifact(outputDir, page.OutputPath, out); err != nil {
		return err
	}
	if cfg.DateFrom != "" || cfg.DateTo != "" {
		return nil
	}
	return p.st.RecordArtifact(ctx, domain.HtmlArtifact{
		ProjectID:    project.ID,
		OutputPath:   page.OutputPath,
		GeneratedAt:  nowArtifact(),
		MessageCount: page.MessageCount,
		Version:      domain.CurrentVersion,
	})
}

// sessionSubtree returns every root belonging to sessionID, each with
// its full descendant tree intact (a sidechain nested under a Task
// tool-call keeps rendering under its invoking session's page).
func sessionSubtree(roots []*domain.TemplateMessage, sessionID string) []*domain.TemplateMessage {
	var out []*domain.TemplateMessage
	for _, root := range roots {
		if root.SessionID == sessionID {
			out = append(out, root)
		}
	}
	return out
}

func filterNavigation(entries []domain.NavigationEntry, keep map[string]bool) []domain.NavigationEntry {
	var out []domain.NavigationEntry
	for _, e := range entries {
		if keep[e.SessionID] {
			out = append(out, e)
		}
	}
	return out
}

func nowArtifact() time.Time {
	return time.Now().UTC()
}

func writeArtifact(outputDir, outputPath, content string) error {
	full := filepath.Join(outputDir, outputPath)
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", full, err)
	}
	return nil
}

// RenderProjectIndex renders and writes the top-level listing across
// every cached project, rooted at projectsRoot.
func (p *Pipeline) RenderProjectIndex(ctx context.Context, projectsRoot string, format Format) error {
	ext := format.extension()
	indexPath := filepath.Join(projectsRoot, "index."+ext)
	if !p.fe.EvaluateProjectIndex(indexPath, domain.CurrentVersion) {
		return nil
	}

	projects, err := p.st.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	summaries := make([]render.ProjectSummary, 0, len(projects))
	for _, proj := range projects {
		displayName := domain.DisplayName(filepath.Base(proj.Path), nil)
		summaries = append(summaries, render.ProjectSummary{
			Project:      proj,
			DisplayName:  displayName,
			CombinedPath: filepath.Join(filepath.Base(proj.Path), "combined_transcripts."+ext),
		})
	}

	renderer := rendererFor(format)
	out, err := renderer.RenderProjectIndex(render.ProjectIndexData{
		Projects: summaries,
		Version:  domain.CurrentVersion,
	})
	if err != nil {
		return fmt.Errorf("render project index: %w", err)
	}
	if err := os.WriteFile(indexPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write project index: %w", err)
	}
	return nil
}

// filterByDateRange keeps only the records whose canonical timestamp
// falls within [from, to], either bound optional. Timestamps are stored
// in sortable ISO8601 form, so a lexical comparison is sufficient.
func filterByDateRange(records []domain.Record, from, to string) []domain.Record {
	if from == "" && to == "" {
		return records
	}
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if from != "" && rec.Timestamp < from {
			continue
		}
		if to != "" && rec.Timestamp > to {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// filterSessionsByDateRange keeps only sessions with any overlap with
// [from, to], so a session rendered from the filtered record set still
// has a navigation/session-list entry to match it.
func filterSessionsByDateRange(sessions []domain.Session, from, to string) []domain.Session {
	if from == "" && to == "" {
		return sessions
	}
	out := make([]domain.Session, 0, len(sessions))
	for _, sess := range sessions {
		if from != "" && sess.LastTimestamp < from {
			continue
		}
		if to != "" && sess.FirstTimestamp > to {
			continue
		}
		out = append(out, sess)
	}
	return out
}
