package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brianly1003/claude-code-log/internal/pipeline"
)

var (
	renderOutputDir    string
	renderFormat       string
	renderAllProjects  bool
	renderProjectsDir  string
	renderCachePath    string
	renderPageSize     int
	renderShowStats    bool
	renderSkipSessions bool
	renderSkipCombined bool
	renderDateFrom     string
	renderDateTo       string
)

var renderCmd = &cobra.Command{
	Use:   "render [input-path]",
	Short: "Render a project's transcripts (or every project) to HTML or Markdown",
	Long: `Render converts the JSONL transcript files under input-path into a
combined transcript page, one page per session, and (with
--all-projects) a top-level project index, refreshing the sqlite cache
first so only files that actually changed are reprocessed.

If input-path is omitted, --all-projects is implied against the
configured (or default) projects directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutputDir, "output", "o", "", "output directory (default: alongside the input transcripts)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "html", "output format: html or md")
	renderCmd.Flags().BoolVar(&renderAllProjects, "all-projects", false, "process every project under the projects directory and build an index")
	renderCmd.Flags().StringVar(&renderProjectsDir, "projects-dir", "", "projects directory (default: ~/.claude/projects)")
	renderCmd.Flags().StringVar(&renderCachePath, "cache-path", "", "explicit cache database path, overriding the default and CLAUDE_CODE_LOG_CACHE_PATH")
	renderCmd.Flags().IntVar(&renderPageSize, "page-size", 0, "maximum messages per combined-transcript page (default: 5000); sessions are never split across pages")
	renderCmd.Flags().BoolVar(&renderShowStats, "show-stats", false, "show token usage statistics in generated output")
	renderCmd.Flags().BoolVar(&renderSkipSessions, "no-individual-sessions", false, "skip generating individual session pages")
	renderCmd.Flags().BoolVar(&renderSkipCombined, "skip-combined", false, "skip generating the combined transcript page")
	renderCmd.Flags().StringVar(&renderDateFrom, "from-date", "", "only include messages at or after this timestamp")
	renderCmd.Flags().StringVar(&renderDateTo, "to-date", "", "only include messages at or before this timestamp")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if renderProjectsDir != "" {
		cfg.Cache.ProjectsDir = renderProjectsDir
	}

	renderCfg := cfg.Render
	if renderPageSize > 0 {
		renderCfg.PageSize = renderPageSize
	}
	if cmd.Flags().Changed("show-stats") {
		renderCfg.ShowStats = renderShowStats
	}
	renderCfg.SkipIndividualSessions = renderSkipSessions
	renderCfg.SkipCombined = renderSkipCombined
	renderCfg.DateFrom = renderDateFrom
	renderCfg.DateTo = renderDateTo

	format := pipeline.FormatHTML
	if renderFormat == "md" || renderFormat == "markdown" {
		format = pipeline.FormatMarkdown
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Cache, renderCachePath)
	if err != nil {
		return err
	}
	defer st.Close()

	pl := pipeline.New(st, log.Logger)

	allProjects := renderAllProjects || len(args) == 0
	if allProjects {
		root := cfg.Cache.ProjectsDir
		if len(args) == 1 {
			root = args[0]
		}
		dirs, err := discoverProjectDirs(root)
		if err != nil {
			return fmt.Errorf("discover projects under %s: %w", root, err)
		}
		for _, dir := range dirs {
			report, err := pl.Run(ctx, pipeline.Options{ProjectDir: dir, Format: format, Render: renderCfg})
			if err != nil {
				log.Warn().Err(err).Str("project", dir).Msg("failed to render project")
				continue
			}
			logRenderReport(dir, report)
		}
		if err := pl.RenderProjectIndex(ctx, root, format); err != nil {
			return fmt.Errorf("render project index: %w", err)
		}
		fmt.Printf("Processed %d projects and wrote index at %s\n", len(dirs), filepath.Join(root, "index."+string(format)))
		return nil
	}

	inputPath, err := resolveInputPath(args[0], cfg.Cache.ProjectsDir)
	if err != nil {
		return err
	}

	outputDir := renderOutputDir
	if outputDir == "" {
		outputDir = inputPath
	}

	report, err := pl.Run(ctx, pipeline.Options{
		ProjectDir: inputPath,
		OutputDir:  outputDir,
		Format:     format,
		Render:     renderCfg,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", inputPath, err)
	}
	logRenderReport(inputPath, report)
	fmt.Printf("Rendered %s to %s\n", inputPath, outputDir)
	return nil
}

func logRenderReport(projectDir string, report pipeline.Report) {
	log.Info().
		Str("project", projectDir).
		Int("files_ingested", report.FilesIngested).
		Int("sessions_rendered", len(report.SessionsRendered)).
		Bool("combined_rendered", report.CombinedRendered).
		Ints("pages_rendered", report.PagesRendered).
		Msg("render complete")
}
