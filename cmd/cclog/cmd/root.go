// Package cmd contains the CLI commands for cclog.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cclog",
	Short: "Convert Claude Code transcript logs to browsable HTML or Markdown",
	Long: `cclog turns a project's Claude Code transcript JSONL files into a
browsable set of HTML or Markdown pages, backed by a persistent sqlite
cache so repeated runs only reprocess what actually changed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information from the main package.
func SetVersionInfo(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
}

func init() {
	cobra.OnInitialize(setupLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: none, built-in defaults apply)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cclog %s\n", version)
		fmt.Printf("  build time: %s\n", buildTime)
		fmt.Printf("  git commit: %s\n", gitCommit)
	},
}
