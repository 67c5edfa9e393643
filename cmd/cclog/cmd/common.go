package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/brianly1003/claude-code-log/internal/config"
	"github.com/brianly1003/claude-code-log/internal/pathutil"
	"github.com/brianly1003/claude-code-log/internal/store"
)

// loadConfig reads the effective Config for a command, layering an
// explicit --config file (if any) over the built-in defaults.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openStore opens the cache database the given projects directory (or an
// explicit override) resolves to.
func openStore(ctx context.Context, cfg config.CacheConfig, explicitCachePath string) (*store.Store, error) {
	path := cfg.CachePath(explicitCachePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	st, err := store.Open(ctx, path, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	return st, nil
}

// discoverProjectDirs lists every immediate subdirectory of root that
// contains at least one *.jsonl transcript file, mirroring how the
// --all-projects hierarchy walk finds project directories.
func discoverProjectDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read projects root %s: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		hasTranscript, err := dirHasJSONL(dir)
		if err != nil {
			continue
		}
		if hasTranscript {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

func dirHasJSONL(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			return true, nil
		}
	}
	return false, nil
}

// resolveInputPath converts a project source path to its encoded
// location under a Claude projects directory when the path itself holds
// no transcripts, the same fallback the original tool applies so users
// can pass either the project's working directory or its projects-dir
// entry.
func resolveInputPath(inputPath, projectsDir string) (string, error) {
	if info, err := os.Stat(inputPath); err == nil && info.IsDir() {
		if has, err := dirHasJSONL(inputPath); err == nil && has {
			return inputPath, nil
		}
	}

	encoded := filepath.Join(projectsDir, pathutil.EncodePath(inputPath))
	if _, err := os.Stat(encoded); err == nil {
		return encoded, nil
	}
	if _, err := os.Stat(inputPath); err == nil {
		return inputPath, nil
	}
	return "", fmt.Errorf("neither %s nor %s exists", inputPath, encoded)
}
