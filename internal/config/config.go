// Package config handles configuration management for claude-code-log.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ImageExportMode controls how embedded images are handled during
// rendering.
type ImageExportMode string

const (
	ImagePlaceholder ImageExportMode = "placeholder"
	ImageEmbedded    ImageExportMode = "embedded"
	ImageReferenced  ImageExportMode = "referenced"
)

// Config holds all configuration for the application: the rendering
// pipeline's explicit options plus the ambient cache/CLI settings.
type Config struct {
	Cache   CacheConfig   `mapstructure:"cache"`
	Render  RenderConfig  `mapstructure:"render"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CacheConfig controls the shared cache database.
type CacheConfig struct {
	// ProjectsDir is the root directory under which per-project transcript
	// directories live; the default cache path is derived from it.
	ProjectsDir string `mapstructure:"projects_dir"`
	// Path, when set, overrides the default derived from ProjectsDir; the
	// environment variable and an explicit argument both take precedence
	// over it.
	Path string `mapstructure:"path"`
}

// RenderConfig is the explicit options struct the rendering pipeline
// takes: page_size, show_stats,
// image_export_mode, skip_individual_sessions, skip_combined, date_from,
// date_to.
type RenderConfig struct {
	PageSize               int             `mapstructure:"page_size"`
	ShowStats              bool            `mapstructure:"show_stats"`
	ImageExportMode        ImageExportMode `mapstructure:"image_export_mode"`
	SkipIndividualSessions bool            `mapstructure:"skip_individual_sessions"`
	SkipCombined           bool            `mapstructure:"skip_combined"`
	DateFrom               string          `mapstructure:"date_from"`
	DateTo                 string          `mapstructure:"date_to"`
}

// WatcherConfig controls the incremental `watch` command's debounce.
type WatcherConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	DebounceMS int  `mapstructure:"debounce_ms"`
}

// LoggingConfig controls zerolog/tint output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DefaultPageSize is the Paginator's default page_size when the caller
// does not supply one.
const DefaultPageSize = 5000

// CacheFileName is the conventional cache database file name.
const CacheFileName = "claude-code-log-cache.db"

// CachePathEnvVar is the environment variable that overrides the default
// cache path, but not an explicit caller-supplied path.
const CachePathEnvVar = "CLAUDE_CODE_LOG_CACHE_PATH"

// Default returns a Config populated with the system's defaults.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			ProjectsDir: defaultProjectsDir(),
		},
		Render: RenderConfig{
			PageSize:        DefaultPageSize,
			ShowStats:       true,
			ImageExportMode: ImagePlaceholder,
		},
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMS: 500,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

func defaultProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".claude", "projects")
	}
	return filepath.Join(home, ".claude", "projects")
}

// Load reads configuration from an optional file path layered over
// Default(). Environment variables prefixed CCLOG_ override only keys
// that the config file sets; with no file, Default() is returned as is.
func Load(cfgFile string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CCLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", cfgFile, err)
		}
	}

	return cfg, nil
}

// CachePath resolves the cache database path:
// an explicit argument overrides the environment variable, which in turn
// overrides the default derived from ProjectsDir.
func (c CacheConfig) CachePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(CachePathEnvVar); env != "" {
		return env
	}
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(c.ProjectsDir, CacheFileName)
}
