// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when the inputs of a slotpack project
// change. It watches a project directory tree plus individual files that may
// live outside it (such as a resolution file written by another build), and
// coalesces bursts of events into one debounced callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

// defaultIgnores are excluded on top of Config.Ignore: VCS metadata and
// editor or OS scratch files.
var defaultIgnores = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the root of the watched tree. Empty means the working directory.
		BaseDir string

		// Patterns are doublestar globs, relative to BaseDir, selecting which
		// files inside the tree trigger the callback. Empty matches everything
		// not ignored.
		Patterns []string

		// Ignore are doublestar globs, relative to BaseDir, that never trigger
		// the callback. Ignored directories are not descended into.
		Ignore []string

		// Files are extra files to watch by path, inside or outside BaseDir.
		// They trigger the callback regardless of Patterns and Ignore.
		Files []string

		// Debounce is the quiet period after the last event before the
		// callback fires.
		Debounce time.Duration

		// OnChange receives the changed paths: relative to BaseDir for tree
		// events, absolute for Files. A nil callback is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives watcher diagnostics. Nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors a project tree and fires a debounced callback on change.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		files    map[string]struct{}
		logger   *log.Logger
		debounce time.Duration
		baseDir  string
		started  atomic.Bool
	}
)

// New validates cfg and registers every non-ignored directory under BaseDir,
// plus the parent directory of each extra file, with fsnotify.
func New(cfg Config) (*Watcher, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("watch: determine working directory: %w", err)
		}
		baseDir = wd
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	files := make(map[string]struct{}, len(cfg.Files))
	for _, f := range cfg.Files {
		if f == "" {
			continue
		}
		abs, absErr := filepath.Abs(f)
		if absErr != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", f, absErr)
		}
		files[abs] = struct{}{}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		files:    files,
		logger:   logger,
		debounce: debounce,
		baseDir:  absBase,
	}

	if err := w.register(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("close fsnotify after init failure", "err", closeErr)
		}
		return nil, err
	}

	return w, nil
}

// BaseDir returns the absolute root of the watched tree.
func (w *Watcher) BaseDir() string {
	return w.baseDir
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when fsnotify fails fatally.
// A callback still running when the next one is due is not overlapped: the
// pending changes are kept and retried after another debounce period.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("Previous run still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("Re-run failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify", "err", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}

			key, relevant := w.classify(evt)
			if !relevant {
				continue
			}
			w.logger.Debug("Change detected", "path", key, "op", evt.Op.String())

			mu.Lock()
			pending[key] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// classify maps an event to its pending-set key and reports whether it
// should trigger the callback.
func (w *Watcher) classify(evt fsnotify.Event) (string, bool) {
	abs := filepath.Clean(evt.Name)
	if _, ok := w.files[abs]; ok {
		return abs, true
	}

	rel, err := filepath.Rel(w.baseDir, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// Sibling of an extra file outside the tree.
		return "", false
	}
	if w.isIgnored(rel) {
		return "", false
	}

	// New directories extend the recursive watch before pattern filtering,
	// since their future contents may match.
	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(abs, rel)
	}

	if !w.matchesPatterns(rel) {
		return "", false
	}
	return rel, true
}

// register adds the tree under BaseDir and the parents of extra files.
func (w *Watcher) register() error {
	walkErr := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			w.logger.Warn("Skipping inaccessible path", "path", path, "err", walkDirErr)
			return nil //nolint:nilerr // inaccessible paths are skipped
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(w.baseDir, path)
		if relErr != nil {
			return nil //nolint:nilerr // skip paths that cannot be made relative
		}
		if rel != "." && w.isIgnoredDir(rel) {
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("watch: walk directory tree: %w", walkErr)
	}

	watched := make(map[string]struct{})
	for f := range w.files {
		dir := filepath.Dir(f)
		if _, ok := watched[dir]; ok {
			continue
		}
		watched[dir] = struct{}{}
		if addErr := w.fsw.Add(dir); addErr != nil {
			return fmt.Errorf("watch: add directory %q for %s: %w", dir, filepath.Base(f), addErr)
		}
	}
	return nil
}

// maybeAddDir starts watching a directory created after New.
func (w *Watcher) maybeAddDir(abs, rel string) {
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() || w.isIgnoredDir(rel) {
		return
	}
	if addErr := w.fsw.Add(abs); addErr != nil {
		w.logger.Warn("Can't watch new directory", "path", abs, "err", addErr)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, filepath.ToSlash(rel))
}

// isIgnoredDir also tries rel with a trailing slash so "dir/**" patterns
// exclude the directory itself.
func (w *Watcher) isIgnoredDir(rel string) bool {
	return w.isIgnored(rel) || w.isIgnored(rel+"/")
}

func (w *Watcher) matchesPatterns(rel string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	return matchAny(w.cfg.Patterns, filepath.ToSlash(rel))
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchAny(patterns []string, path string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, path); err == nil && matched {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q: %w", label, pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}
