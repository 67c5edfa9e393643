// Package sync keeps the cache database current with the transcript
// files on disk: it decides which files are stale, reloads them, and
// recomputes the session/project aggregates that depend on them.
package sync

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brianly1003/claude-code-log/internal/domain"
	"github.com/brianly1003/claude-code-log/internal/store"
	"github.com/brianly1003/claude-code-log/internal/transcript"
)

// mtimeTolerance absorbs filesystem timestamp truncation across
// platforms; a cached file is considered still fresh if its on-disk
// mtime is within this window of the mtime recorded at cache time.
const mtimeTolerance = time.Second

// Synchronizer reconciles a project's on-disk transcript files with the
// cache.
type Synchronizer struct {
	st  *store.Store
	log zerolog.Logger
}

// New returns a Synchronizer backed by st.
func New(st *store.Store, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{st: st, log: log}
}

// Result summarizes one EnsureFreshCache run.
type Result struct {
	FilesIngested int
	FilesSkipped  int
	MessagesAdded int
	Project       domain.Project
}

// EnsureFreshCache walks projectDir for transcript and sidechain files,
// ingests any whose mtime has advanced past what the cache recorded, and
// recomputes session/project aggregates. It is safe to call repeatedly;
// unchanged files are a no-op beyond the directory scan and a mtime
// comparison.
func (sy *Synchronizer) EnsureFreshCache(ctx context.Context, projectDir string) (Result, error) {
	project, err := sy.st.GetOrCreateProject(ctx, projectDir, domain.CurrentVersion)
	if err != nil {
		return Result{}, fmt.Errorf("get or create project: %w", err)
	}

	if store.RequiresFullRebuild(project.Version, domain.CurrentVersion) {
		sy.log.Warn().Str("project", projectDir).Str("old_version", project.Version).
			Str("new_version", domain.CurrentVersion).Msg("cache version incompatible, rebuilding project from scratch")
		if err := sy.st.ResetProject(ctx, project.ID); err != nil {
			return Result{}, fmt.Errorf("reset incompatible project cache: %w", err)
		}
		project, err = sy.st.ProjectByID(ctx, project.ID)
		if err != nil {
			return Result{}, err
		}
	}

	files, err := discoverTranscriptFiles(projectDir)
	if err != nil {
		return Result{}, err
	}

	var result Result
	result.Project = project
	liveSessionIDs := make(map[string]bool)

	for _, path := range files {
		name := filepath.Base(path)
		info, err := os.Stat(path)
		if err != nil {
			sy.log.Warn().Err(err).Str("file", path).Msg("skipping unreadable transcript file")
			continue
		}

		cached, err := sy.st.FileByName(ctx, project.ID, name)
		fresh := err == nil && !cached.SourceMTime.Before(info.ModTime().Add(-mtimeTolerance)) &&
			!cached.SourceMTime.After(info.ModTime().Add(mtimeTolerance))
		if fresh {
			result.FilesSkipped++
			addLiveSessionIDs(ctx, sy.st, cached.ID, liveSessionIDs)
			continue
		}

		fileID, added, err := sy.ingestFile(ctx, project.ID, path, name, info.ModTime())
		if err != nil {
			sy.log.Warn().Err(err).Str("file", path).Msg("failed to ingest transcript file")
			continue
		}
		result.FilesIngested++
		result.MessagesAdded += added
		addLiveSessionIDs(ctx, sy.st, fileID, liveSessionIDs)
	}

	if err := sy.recomputeAggregates(ctx, project.ID, liveSessionIDs); err != nil {
		return result, err
	}

	project, err = sy.st.ProjectByID(ctx, project.ID)
	if err != nil {
		return result, err
	}
	result.Project = project
	return result, nil
}

func (sy *Synchronizer) ingestFile(ctx context.Context, projectID int64, path, name string, mtime time.Time) (int64, int, error) {
	load, err := transcript.LoadFile(path, sy.log)
	if err != nil {
		return 0, 0, err
	}
	if load.Skipped > 0 {
		sy.log.Warn().Str("file", path).Int("skipped_lines", load.Skipped).Msg("some transcript lines could not be parsed")
	}

	if agentID, ok := transcript.SidechainAgentID(name); ok {
		transcript.MarkSidechain(load.Records, agentID)
	}

	var fileID int64
	err = sy.st.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		fileID, err = store.UpsertFile(ctx, tx, projectID, name, path, mtime, len(load.Records))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE file_id = ?`, fileID); err != nil {
			return fmt.Errorf("clear stale messages for %s: %w", name, err)
		}
		for _, rec := range load.Records {
			if err := store.InsertMessage(ctx, tx, projectID, fileID, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return fileID, len(load.Records), nil
}

// discoverTranscriptFiles lists both primary *.jsonl transcripts and
// agent-<id> sidechain siblings within a project directory.
func discoverTranscriptFiles(projectDir string) ([]string, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("read project dir %s: %w", projectDir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".jsonl") {
			out = append(out, filepath.Join(projectDir, e.Name()))
		}
	}
	sides, err := transcript.DiscoverSidechainFiles(projectDir)
	if err != nil {
		return nil, err
	}
	for _, sc := range sides {
		out = append(out, sc.Path)
	}
	return out, nil
}

// addLiveSessionIDs records every distinct sessionId still referenced by
// messages from fileID, i.e. sessions backed by a surviving source file.
func addLiveSessionIDs(ctx context.Context, st *store.Store, fileID int64, into map[string]bool) {
	rows, err := st.DB().QueryContext(ctx, `SELECT DISTINCT session_id FROM messages WHERE file_id = ? AND session_id != ''`, fileID)
	if err != nil {
		return
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if rows.Scan(&id) == nil {
			into[id] = true
		}
	}
}
