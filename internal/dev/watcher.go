package dev

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeType is the kind of source change. A rename is reported as the
// removal of the old path; the new path arrives as a creation.
type ChangeType int

const (
	ChangeCreated ChangeType = iota
	ChangeModified
	ChangeRemoved
)

var changeNames = [...]string{"created", "modified", "removed"}

func (c ChangeType) String() string {
	if c < 0 || int(c) >= len(changeNames) {
		return "unknown"
	}
	return changeNames[c]
}

// Change is one changed source file.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Paths      []string // watched recursively
	Extensions []string // empty reports every file
	// Skip names directories that are never descended into, by base name or
	// by path. Hidden directories are always skipped.
	Skip     []string
	Debounce time.Duration
	Logger   *slog.Logger
}

var defaultSkip = []string{"node_modules"}

// Watcher reports debounced batches of source changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	exts     []string
	skip     map[string]bool
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	onChange func([]Change)
	pending  map[string]ChangeType
	timer    *time.Timer
	closed   bool
}

// NewWatcher starts watching config.Paths. Events are queued until Run is
// called.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		exts:     config.Extensions,
		skip:     make(map[string]bool),
		debounce: config.Debounce,
		logger:   config.Logger,
		pending:  make(map[string]ChangeType),
	}
	if w.debounce <= 0 {
		w.debounce = 100 * time.Millisecond
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	for _, s := range append(defaultSkip, config.Skip...) {
		if strings.ContainsRune(s, filepath.Separator) {
			s = absPath(s)
		}
		w.skip[s] = true
	}
	for _, p := range config.Paths {
		if err := w.watchTree(p, false); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// OnChange sets the callback for change batches. A batch has one change per
// path, sorted by path.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	w.onChange = fn
	w.mu.Unlock()
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Close stops watching and drops pending changes.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.skipped(ev.Name) {
				return
			}
			// Files written before the directory was added are missed by
			// fsnotify, so they are reported from the walk.
			if err := w.watchTree(ev.Name, true); err != nil {
				w.logger.Warn("file watcher error", "path", ev.Name, "error", err)
			}
			return
		}
	}
	if !w.wanted(ev.Name) {
		return
	}
	switch {
	case ev.Has(fsnotify.Create):
		w.enqueue(ev.Name, ChangeCreated)
	case ev.Has(fsnotify.Write):
		w.enqueue(ev.Name, ChangeModified)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.enqueue(ev.Name, ChangeRemoved)
	}
}

// watchTree adds root and its subdirectories. With report set, source files
// found on the way are reported as created.
func (w *Watcher) watchTree(root string, report bool) error {
	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p != root {
				return nil
			}
			return err
		}
		if !entry.IsDir() {
			if report && w.wanted(p) {
				w.enqueue(p, ChangeCreated)
			}
			return nil
		}
		if p != root && w.skipped(p) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

func (w *Watcher) skipped(dir string) bool {
	base := filepath.Base(dir)
	return strings.HasPrefix(base, ".") || w.skip[base] || w.skip[absPath(dir)]
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// wanted reports whether a file is a source file worth reporting. Editor
// lock and swap files are hidden or carry their own extension.
func (w *Watcher) wanted(p string) bool {
	if strings.HasPrefix(filepath.Base(p), ".") {
		return false
	}
	if len(w.exts) == 0 {
		return true
	}
	ext := filepath.Ext(p)
	for _, e := range w.exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func (w *Watcher) enqueue(p string, kind ChangeType) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	// A file created and then written within one window is still new.
	if prev, ok := w.pending[p]; ok && prev == ChangeCreated && kind == ChangeModified {
		kind = ChangeCreated
	}
	w.pending[p] = kind
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := make([]Change, 0, len(w.pending))
	for p, kind := range w.pending {
		batch = append(batch, Change{Path: p, Type: kind})
	}
	w.pending = make(map[string]ChangeType)
	fn := w.onChange
	w.mu.Unlock()

	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	if fn != nil {
		fn(batch)
	}
}
