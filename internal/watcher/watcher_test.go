package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/index.js", true},
		{"src/app.tsx", true},
		{"lib/util.mts", true},
		{"package.json", true},
		{"packages/app/package.json", true},
		{"webpack.config.js", true},
		{".babelrc", true},
		{"README.md", false},
		{"assets/logo.png", false},
		{"node_modules/lodash/index.js", false},
		{"dist/bundle.js", false},
		{".git/HEAD", false},
	}
	for _, tt := range tests {
		if got := Relevant(tt.path); got != tt.want {
			t.Errorf("Relevant(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWatcher_NilCallbackRejected(t *testing.T) {
	if _, err := New(t.TempDir(), nil); err == nil {
		t.Fatal("expected error for nil callback")
	}
}

func TestWatcher_FiresOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "demo"}`)
	writeFile(t, filepath.Join(dir, "index.js"), `// v1`)

	var fires atomic.Int32
	w, err := New(dir, func() { fires.Add(1) })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "index.js"), `require('lodash');`)

	if !waitFor(t, 2*time.Second, func() bool { return fires.Load() >= 1 }) {
		t.Fatal("callback never fired for source change")
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "demo"}`)

	var fires atomic.Int32
	w, err := New(dir, func() { fires.Add(1) })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "notes.txt"), `scratch`)

	time.Sleep(300 * time.Millisecond)
	if fires.Load() != 0 {
		t.Errorf("expected no callback for irrelevant file, got %d", fires.Load())
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "demo"}`)
	writeFile(t, filepath.Join(dir, "a.js"), `// v1`)
	writeFile(t, filepath.Join(dir, "b.js"), `// v1`)

	var fires atomic.Int32
	w, err := New(dir, func() { fires.Add(1) })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.SetDebounce(200 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// A burst of writes inside one debounce window.
	for i := 0; i < 5; i++ {
		writeFile(t, filepath.Join(dir, "a.js"), "// edit")
		writeFile(t, filepath.Join(dir, "b.js"), "// edit")
		time.Sleep(20 * time.Millisecond)
	}

	if !waitFor(t, 2*time.Second, func() bool { return fires.Load() >= 1 }) {
		t.Fatal("callback never fired")
	}
	time.Sleep(400 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Errorf("expected burst to collapse into 1 callback, got %d", got)
	}
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "demo"}`)

	var fires atomic.Int32
	w, err := New(dir, func() { fires.Add(1) })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.SetDebounce(50 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Give the watcher a beat to subscribe to the new directory.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "src", "new.js"), `require('x');`)

	if !waitFor(t, 2*time.Second, func() bool { return fires.Load() >= 1 }) {
		t.Fatal("callback never fired for file in new directory")
	}
}

func TestWatcher_StopPreventsCallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "demo"}`)

	var fires atomic.Int32
	w, err := New(dir, func() { fires.Add(1) })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w.SetDebounce(300 * time.Millisecond)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	writeFile(t, filepath.Join(dir, "index.js"), `// v1`)
	time.Sleep(50 * time.Millisecond) // let the event arrive, timer armed
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	time.Sleep(500 * time.Millisecond)
	if fires.Load() != 0 {
		t.Errorf("callback fired after Stop: %d", fires.Load())
	}
}
