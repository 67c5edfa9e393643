package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/brianly1003/claude-code-log/internal/preview"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve <root-dir>",
	Short: "Serve a directory of already-rendered output over HTTP",
	Long: `Serve starts a local, read-only HTTP server over root-dir, for
browsing combined transcripts, session pages, and a project index
without opening the generated files directly from disk. It does not
render or resync anything; run render or watch first.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "address to listen on")
	serveCmd.Flags().IntVar(&servePort, "port", 8420, "port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	root := args[0]
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	srv := preview.NewServer(serveHost, servePort, root, log.Logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start preview server: %w", err)
	}

	fmt.Printf("Serving %s at http://%s:%d (press Ctrl+C to stop)\n", root, serveHost, servePort)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("shutting down preview server")

	return srv.Stop()
}
