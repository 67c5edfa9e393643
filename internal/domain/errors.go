// Package domain contains the entities, tagged message variants, and
// sentinel errors shared across claude-code-log's components.
package domain

import (
	"errors"
	"fmt"
)

// CurrentVersion is recorded on every Project and HtmlArtifact produced
// by this build; Synchronizer consults it against breakingVersions to
// decide whether a prior cache needs a full rebuild rather than an
// incremental sync.
const CurrentVersion = "0.6.0"

// Sentinel errors for common error conditions.
var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrFileNotCached        = errors.New("file not cached")
	ErrCacheCorrupt         = errors.New("cache database is corrupt")
	ErrSchemaIncompatible   = errors.New("cache schema version is incompatible")
	ErrUnknownDiscriminator = errors.New("unrecognized transcript record type")
	ErrPageSizeChanged      = errors.New("page size configuration changed")
)

// MigrationError wraps a failure applying a specific schema migration.
type MigrationError struct {
	Version int
	File    string
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %d (%s): %v", e.Version, e.File, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// IngestError wraps a failure ingesting a specific transcript file.
// Ingest errors are recoverable at the project level: the caller logs a
// warning and continues with the remaining files.
type IngestError struct {
	Path string
	Err  error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Path, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }
