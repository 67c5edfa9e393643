package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brianly1003/claude-code-log/internal/migrate"
	"github.com/brianly1003/claude-code-log/internal/sync"
)

var cacheCachePath string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the sqlite cache",
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheCachePath, "cache-path", "", "explicit cache database path, overriding the default and CLAUDE_CODE_LOG_CACHE_PATH")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheVerifyCmd)
	cacheCmd.AddCommand(cacheArchivedCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheClearHTMLCmd)
}

func tintLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [input-path]",
	Short: "Show cached project and session counts",
	Long: `Stats prints per-project message, session, and token totals from
the cache. With an input-path it reports on a single project; with none
it reports on every cached project.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg.Cache, cacheCachePath)
	if err != nil {
		return err
	}
	defer st.Close()

	logger := tintLogger()

	if len(args) == 1 {
		inputPath, err := resolveInputPath(args[0], cfg.Cache.ProjectsDir)
		if err != nil {
			return err
		}
		proj, err := st.ProjectByPath(ctx, inputPath)
		if err != nil {
			return fmt.Errorf("load project %s: %w", inputPath, err)
		}
		sessions, err := st.ListSessions(ctx, proj.ID)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		logger.Info("project stats",
			"path", proj.Path,
			"sessions", len(sessions),
			"messages", proj.TotalMessages,
			"input_tokens", proj.TotalInput,
			"output_tokens", proj.TotalOutput,
			"last_updated", proj.LastUpdated.Format(time.RFC3339),
		)
		return nil
	}

	projects, err := st.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	for _, proj := range projects {
		sessions, err := st.ListSessions(ctx, proj.ID)
		if err != nil {
			return fmt.Errorf("list sessions for %s: %w", proj.Path, err)
		}
		logger.Info("project stats", "path", proj.Path, "sessions", len(sessions), "messages", proj.TotalMessages,
			"input_tokens", proj.TotalInput, "output_tokens", proj.TotalOutput)
	}
	fmt.Printf("%d projects cached\n", len(projects))
	return nil
}

var cacheVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the cache schema version and migration checksums",
	RunE:  runCacheVerify,
}

func runCacheVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()
	st, err := openStore(ctx, cfg.Cache, cacheCachePath)
	if err != nil {
		return err
	}
	defer st.Close()

	m := migrate.NewMigrator(st.DB(), log.Logger)
	version, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	warnings, err := m.Verify(ctx)
	if err != nil {
		return fmt.Errorf("verify migrations: %w", err)
	}
	pending, err := m.Pending(ctx)
	if err != nil {
		return fmt.Errorf("list pending migrations: %w", err)
	}

	fmt.Printf("schema version: %d\n", version)
	if len(pending) > 0 {
		fmt.Printf("%d pending migration(s) not yet applied\n", len(pending))
	}
	if len(warnings) == 0 {
		fmt.Println("no checksum drift detected")
		return nil
	}
	for _, w := range warnings {
		fmt.Println(w)
	}
	return nil
}

var cacheArchivedCmd = &cobra.Command{
	Use:   "archived <input-path>",
	Short: "List sessions cached but no longer backed by a source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheArchived,
}

func runCacheArchived(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()
	inputPath, err := resolveInputPath(args[0], cfg.Cache.ProjectsDir)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg.Cache, cacheCachePath)
	if err != nil {
		return err
	}
	defer st.Close()

	proj, err := st.ProjectByPath(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("load project %s: %w", inputPath, err)
	}
	sessions, err := st.ArchivedSessions(ctx, proj.ID)
	if err != nil {
		return fmt.Errorf("list archived sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("no archived sessions")
		return nil
	}
	for _, sess := range sessions {
		fmt.Printf("%s  %d messages  last seen %s\n", sess.SessionID, sess.MessageCount, sess.LastTimestamp)
	}
	return nil
}

var cacheExportOutput string

var cacheExportCmd = &cobra.Command{
	Use:   "export <input-path> <session-id>",
	Short: "Re-export a cached session back to JSONL",
	Long: `Export writes a session's cached messages back out as compact
JSONL, in original file order, to stdout or a file named with --output.
Useful for recovering a session after its source file has been rotated
away but the cache still holds it.`,
	Args: cobra.ExactArgs(2),
	RunE: runCacheExport,
}

func init() {
	cacheExportCmd.Flags().StringVarP(&cacheExportOutput, "output", "o", "", "write to this file instead of stdout")
}

func runCacheExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()
	inputPath, err := resolveInputPath(args[0], cfg.Cache.ProjectsDir)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg.Cache, cacheCachePath)
	if err != nil {
		return err
	}
	defer st.Close()

	proj, err := st.ProjectByPath(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("load project %s: %w", inputPath, err)
	}

	sessionID := args[1]
	data, err := sync.ExportSessionToJSONL(ctx, st, proj.ID, sessionID)
	if err != nil {
		return fmt.Errorf("export session %s: %w", sessionID, err)
	}

	if cacheExportOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(cacheExportOutput, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cacheExportOutput, err)
	}
	fmt.Printf("Exported session %s to %s\n", sessionID, cacheExportOutput)
	return nil
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cache database entirely",
	Long: `Clear removes the sqlite cache database file. The next render
rebuilds it from scratch by reparsing every transcript file.`,
	RunE: runCacheClear,
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := cfg.Cache.CachePath(cacheCachePath)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("cache already absent")
			return nil
		}
		return fmt.Errorf("remove cache %s: %w", path, err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	fmt.Printf("Removed cache %s\n", path)
	return nil
}

var cacheClearHTMLCmd = &cobra.Command{
	Use:   "clear-html <input-path>",
	Short: "Delete a project's generated output files",
	Long: `Clear-html removes every generated combined, paginated, and
per-session HTML/Markdown file for a project and forgets them from the
artifact ledger, so the next render regenerates all of them regardless
of freshness.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheClearHTML,
}

func runCacheClearHTML(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()
	inputPath, err := resolveInputPath(args[0], cfg.Cache.ProjectsDir)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg.Cache, cacheCachePath)
	if err != nil {
		return err
	}
	defer st.Close()

	proj, err := st.ProjectByPath(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("load project %s: %w", inputPath, err)
	}

	artifacts, err := st.ListArtifacts(ctx, proj.ID)
	if err != nil {
		return fmt.Errorf("list artifacts: %w", err)
	}
	removed := 0
	for _, a := range artifacts {
		full := filepath.Join(inputPath, a.OutputPath)
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", full, err)
		}
		removed++
	}
	if err := st.DeleteArtifactsForProject(ctx, proj.ID); err != nil {
		return fmt.Errorf("clear artifact ledger: %w", err)
	}

	// index.html/index.md sits one level above per-project output and is
	// shared across projects; leave it for the next --all-projects render
	// to rebuild rather than guessing whether this was the only project.
	fmt.Printf("Removed %d output file(s) for %s\n", removed, strings.TrimSuffix(inputPath, "/"))
	return nil
}
