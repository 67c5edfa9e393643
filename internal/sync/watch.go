package sync

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/brianly1003/claude-code-log/internal/transcript"
)

// changeKind classifies a debounced filesystem event; a delete takes
// precedence over a later create or write within the same window, and a
// create takes precedence over a plain write, mirroring how rapid
// save-then-rewrite sequences from an editor should collapse to one
// resync rather than two.
type changeKind int

const (
	changeWrite changeKind = iota
	changeCreate
	changeDelete
)

func mergeChangeKinds(existing, incoming changeKind) changeKind {
	if existing == changeDelete || incoming == changeDelete {
		return changeDelete
	}
	if existing == changeCreate {
		return changeCreate
	}
	return incoming
}

// debouncer coalesces rapid filesystem events per path into a single
// callback invocation after window has elapsed with no further events
// for that path.
type debouncer struct {
	window   time.Duration
	callback func(path string, kind changeKind)

	mu      sync.Mutex
	pending map[string]*time.Timer
	kinds   map[string]changeKind
	stopped bool
}

func newDebouncer(window time.Duration, callback func(path string, kind changeKind)) *debouncer {
	return &debouncer{
		window:   window,
		callback: callback,
		pending:  make(map[string]*time.Timer),
		kinds:    make(map[string]changeKind),
	}
}

func (d *debouncer) add(path string, kind changeKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if existing, ok := d.kinds[path]; ok {
		kind = mergeChangeKinds(existing, kind)
	}
	d.kinds[path] = kind
	if t, ok := d.pending[path]; ok {
		t.Stop()
	}
	d.pending[path] = time.AfterFunc(d.window, func() { d.fire(path) })
}

func (d *debouncer) fire(path string) {
	d.mu.Lock()
	kind, ok := d.kinds[path]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.kinds, path)
	delete(d.pending, path)
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped && d.callback != nil {
		d.callback(path, kind)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for _, t := range d.pending {
		t.Stop()
	}
	d.pending = make(map[string]*time.Timer)
	d.kinds = make(map[string]changeKind)
}

// Watcher re-syncs a project directory whenever one of its transcript
// files changes, debouncing bursts of writes into a single resync.
type Watcher struct {
	sy         *Synchronizer
	projectDir string
	log        zerolog.Logger
	onSync     func(Result)
}

// NewWatcher returns a Watcher that keeps projectDir's cache fresh. If
// onSync is non-nil, it runs after every debounced resync with that
// resync's Result, letting a caller chain further work (e.g. rendering)
// onto cache freshness without this package knowing about rendering.
func NewWatcher(sy *Synchronizer, projectDir string, log zerolog.Logger, onSync func(Result)) *Watcher {
	return &Watcher{sy: sy, projectDir: projectDir, log: log, onSync: onSync}
}

// Run watches until ctx is canceled, re-syncing on every debounced
// change to a *.jsonl or agent-*.* file in the project directory.
func (w *Watcher) Run(ctx context.Context, debounceWindow time.Duration) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.projectDir); err != nil {
		return err
	}

	resync := func(path string, kind changeKind) {
		result, err := w.sy.EnsureFreshCache(ctx, w.projectDir)
		if err != nil {
			w.log.Warn().Err(err).Str("path", path).Msg("resync after file change failed")
			return
		}
		if w.onSync != nil {
			w.onSync(result)
		}
	}
	deb := newDebouncer(debounceWindow, resync)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !isRelevantTranscriptFile(ev.Name) {
				continue
			}
			deb.add(ev.Name, eventKind(ev.Op))
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("filesystem watch error")
		}
	}
}

func isRelevantTranscriptFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".jsonl") {
		return true
	}
	_, ok := transcript.SidechainAgentID(name)
	return ok
}

func eventKind(op fsnotify.Op) changeKind {
	switch {
	case op&fsnotify.Remove != 0, op&fsnotify.Rename != 0:
		return changeDelete
	case op&fsnotify.Create != 0:
		return changeCreate
	default:
		return changeWrite
	}
}
