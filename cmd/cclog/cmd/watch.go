package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brianly1003/claude-code-log/internal/pipeline"
	"github.com/brianly1003/claude-code-log/internal/sync"
)

var (
	watchOutputDir  string
	watchFormat     string
	watchCachePath  string
	watchDebounceMS int
)

var watchCmd = &cobra.Command{
	Use:   "watch <input-path>",
	Short: "Watch a project's transcripts and re-render on change",
	Long: `Watch keeps a single project's rendered output current: it runs an
initial render, then resyncs the cache and re-renders whenever a
transcript file under input-path is created, written, or removed,
debouncing bursts of writes into a single pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputDir, "output", "o", "", "output directory (default: alongside the input transcripts)")
	watchCmd.Flags().StringVar(&watchFormat, "format", "html", "output format: html or md")
	watchCmd.Flags().StringVar(&watchCachePath, "cache-path", "", "explicit cache database path, overriding the default and CLAUDE_CODE_LOG_CACHE_PATH")
	watchCmd.Flags().IntVar(&watchDebounceMS, "debounce-ms", 0, "debounce window in milliseconds (default: from config, normally 500)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	inputPath, err := resolveInputPath(args[0], cfg.Cache.ProjectsDir)
	if err != nil {
		return err
	}
	outputDir := watchOutputDir
	if outputDir == "" {
		outputDir = inputPath
	}

	format := pipeline.FormatHTML
	if watchFormat == "md" || watchFormat == "markdown" {
		format = pipeline.FormatMarkdown
	}

	debounce := time.Duration(cfg.Watcher.DebounceMS) * time.Millisecond
	if watchDebounceMS > 0 {
		debounce = time.Duration(watchDebounceMS) * time.Millisecond
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutting down watcher")
		cancel()
	}()

	st, err := openStore(ctx, cfg.Cache, watchCachePath)
	if err != nil {
		return err
	}
	defer st.Close()

	pl := pipeline.New(st, log.Logger)
	opts := pipeline.Options{ProjectDir: inputPath, OutputDir: outputDir, Format: format, Render: cfg.Render}

	render := func(reason string) {
		report, err := pl.Run(ctx, opts)
		if err != nil {
			log.Warn().Err(err).Str("reason", reason).Msg("render failed")
			return
		}
		logRenderReport(inputPath, report)
	}

	render("initial")

	sy := sync.New(st, log.Logger)
	watcher := sync.NewWatcher(sy, inputPath, log.Logger, func(result sync.Result) {
		render("file change")
	})

	fmt.Printf("Watching %s (press Ctrl+C to stop)\n", inputPath)
	if err := watcher.Run(ctx, debounce); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch %s: %w", inputPath, err)
	}
	return nil
}
