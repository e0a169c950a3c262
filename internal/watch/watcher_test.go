// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// startWatcher runs w in the background and returns a stop function that
// cancels it and reports Run's error.
func startWatcher(t *testing.T, w *Watcher) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	// Let the event loop start before the test generates events.
	time.Sleep(50 * time.Millisecond)
	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancel")
			return nil
		}
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{}, 1)

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	for _, name := range []string{"a.xml", "b.xml", "c.xml"} {
		mustWriteFile(t, filepath.Join(dir, name), "<module/>")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(250 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, want := range []string{"a.xml", "b.xml", "c.xml"} {
		if !slices.Contains(collected, want) {
			t.Errorf("expected %q in changed paths, got %v", want, collected)
		}
	}
}

func TestWatcher_PatternsAndIgnores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	descriptors := filepath.Join(dir, "src", "main", "modules")
	if err := os.MkdirAll(descriptors, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "target"), 0o755); err != nil {
		t.Fatal(err)
	}

	fired := make(chan []string, 10)
	w, err := New(Config{
		BaseDir:  dir,
		Patterns: []string{"src/main/modules/**", "slotpack.cue"},
		Ignore:   []string{"target/**"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	// Outputs and unrelated files must not trigger a re-run.
	mustWriteFile(t, filepath.Join(dir, "target", "app-modules.zip"), "zip")
	mustWriteFile(t, filepath.Join(dir, "README.md"), "docs")

	select {
	case changed := <-fired:
		t.Fatalf("unexpected callback for %v", changed)
	case <-time.After(300 * time.Millisecond):
	}

	mustWriteFile(t, filepath.Join(descriptors, "org", "example", "main", "module.xml"), "<module/>")

	select {
	case changed := <-fired:
		prefix := filepath.Join("src", "main", "modules") + string(filepath.Separator)
		if !slices.ContainsFunc(changed, func(p string) bool { return strings.HasPrefix(p, prefix) }) {
			t.Errorf("expected descriptor change, got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for descriptor change")
	}

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestWatcher_ExtraFileOutsideBaseDir(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	outside := t.TempDir()
	resolution := filepath.Join(outside, "resolved.toml")
	mustWriteFile(t, resolution, "")

	fired := make(chan []string, 10)
	w, err := New(Config{
		BaseDir:  base,
		Files:    []string{resolution},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	// A sibling of the extra file is outside the tree and not listed.
	mustWriteFile(t, filepath.Join(outside, "other.toml"), "x")
	select {
	case changed := <-fired:
		t.Fatalf("unexpected callback for %v", changed)
	case <-time.After(300 * time.Millisecond):
	}

	mustWriteFile(t, resolution, "[[artifacts]]")
	select {
	case changed := <-fired:
		if !slices.Contains(changed, resolution) {
			t.Errorf("expected %q in %v", resolution, changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for resolution file change")
	}

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestWatcher_SkipsWhileBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		active   atomic.Int32
		overlaps atomic.Int32
		calls    atomic.Int32
	)
	release := make(chan struct{})

	w, err := New(Config{
		BaseDir:  dir,
		Debounce: 30 * time.Millisecond,
		OnChange: func(_ context.Context, _ []string) error {
			if active.Add(1) > 1 {
				overlaps.Add(1)
			}
			defer active.Add(-1)
			if calls.Add(1) == 1 {
				<-release
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	mustWriteFile(t, filepath.Join(dir, "first.xml"), "1")
	time.Sleep(150 * time.Millisecond)
	mustWriteFile(t, filepath.Join(dir, "second.xml"), "2")
	time.Sleep(150 * time.Millisecond)
	close(release)

	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if overlaps.Load() != 0 {
		t.Errorf("callbacks overlapped %d time(s)", overlaps.Load())
	}
	if calls.Load() < 2 {
		t.Errorf("deferred changes were never delivered: %d call(s)", calls.Load())
	}
}

func TestWatcher_RunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	stop := startWatcher(t, w)

	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestNew_InvalidPatterns(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{BaseDir: t.TempDir(), Patterns: []string{"[unclosed"}}); !errors.Is(err, doublestar.ErrBadPattern) {
		t.Errorf("invalid watch pattern: error = %v", err)
	}
	if _, err := New(Config{BaseDir: t.TempDir(), Ignore: []string{"{a,b"}}); !errors.Is(err, doublestar.ErrBadPattern) {
		t.Errorf("invalid ignore pattern: error = %v", err)
	}
}

func TestWatcher_Classify(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	extra := filepath.Join(t.TempDir(), "deps.yaml")
	mustWriteFile(t, extra, "")

	w, err := New(Config{
		BaseDir:  base,
		Patterns: []string{"src/main/modules/**"},
		Ignore:   []string{"target/**"},
		Files:    []string{extra},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.fsw.Close() })

	tests := []struct {
		name string
		path string
		want string
		ok   bool
	}{
		{"descriptor", filepath.Join(base, "src", "main", "modules", "a", "module.xml"), filepath.Join("src", "main", "modules", "a", "module.xml"), true},
		{"build output", filepath.Join(base, "target", "modules", "a", "module.xml"), "", false},
		{"swap file", filepath.Join(base, "src", "main", "modules", ".module.xml.swp"), "", false},
		{"unmatched", filepath.Join(base, "pom.xml"), "", false},
		{"extra file", extra, extra, true},
		{"outside tree", filepath.Join(filepath.Dir(extra), "other"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := w.classify(fsnotify.Event{Name: tt.path, Op: fsnotify.Write})
			if got != tt.want || ok != tt.ok {
				t.Errorf("classify(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	got := DefaultIgnores()
	if !slices.Contains(got, "**/.git/**") {
		t.Errorf("DefaultIgnores() = %v, want .git excluded", got)
	}
	got[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() must return a copy")
	}
}
