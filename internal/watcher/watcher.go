// Package watcher re-runs dependency resolution when the project
// changes on disk.
//
// It subscribes to filesystem events for the project tree (skipping
// node_modules, VCS metadata, and build output), filters them down to
// files that can affect verdicts, and invokes a callback after a quiet
// period. Bursts of events, such as a branch switch or an editor's
// save-all, collapse into a single re-run.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/manifest"
	"github.com/blackwell-systems/depprune/internal/scanner"
)

// defaultDebounce is the quiet period after the last relevant event
// before the callback fires.
const defaultDebounce = 400 * time.Millisecond

// Watcher watches a project root and invokes OnChange after relevant
// filesystem activity settles.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func()

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	running bool
}

// New creates a watcher for the project at root. onChange runs on the
// watcher's goroutine; callers wanting concurrency dispatch themselves.
func New(root string, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}
	return &Watcher{
		root:     root,
		debounce: defaultDebounce,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}, nil
}

// SetDebounce overrides the quiet period. Must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Start subscribes to the project tree and begins dispatching. Watches
// are per-directory: fsnotify does not recurse, so every non-ignored
// directory is added explicitly, and directories created later are
// added as their create events arrive.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	w.fsw = fsw

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return err
	}

	w.running = true
	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop halts event dispatch. A pending debounce timer is cancelled; the
// callback does not fire after Stop returns.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// addTree walks dir and subscribes every directory that a scan would
// enter.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
			return nil // unreadable subtree, skip
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && scanner.IsIgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			// Exhausted inotify watches or a permissions hole; events
			// from this directory are simply missed.
			return nil
		}
		return nil
	})
}

// run is the event loop: filter, extend watches into new directories,
// and arm the debounce timer.
func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; the next relevant event still
			// triggers a full re-scan, which self-corrects.
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch before anything inside them
	// can be seen.
	if ev.Op&fsnotify.Create != 0 && isDir(ev.Name) {
		if !scanner.IsIgnoredDir(filepath.Base(ev.Name)) {
			_ = w.addTree(ev.Name)
			w.arm()
		}
		return
	}

	if !Relevant(ev.Name) {
		return
	}
	w.arm()
}

// arm starts or resets the debounce timer.
func (w *Watcher) arm() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if running {
			w.onChange()
		}
	})
}

// Relevant reports whether a change to path can affect verdicts: source
// files, config candidates, and manifests all can; everything else is
// noise.
func Relevant(path string) bool {
	base := filepath.Base(path)
	for _, seg := range splitPath(path) {
		if scanner.IsIgnoredDir(seg) {
			return false
		}
	}
	if base == manifest.FileName {
		return true
	}
	if scanner.IsConfigCandidate(base) {
		return true
	}
	_, ok := extractor.DialectForPath(path)
	return ok
}

func splitPath(path string) []string {
	return strings.Split(filepath.ToSlash(path), "/")
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
