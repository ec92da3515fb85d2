package engine

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/blackwell-systems/depprune/internal/classifier"
)

// pinnedWatcher forces the pool down to one worker and counts how often
// it was consulted.
type pinnedWatcher struct {
	calls atomic.Int32
}

func (w *pinnedWatcher) AdjustWorkers(current int) int {
	w.calls.Add(1)
	return 1
}

func TestExtractAll_ShedsWorkersWithoutLosingResults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{
		"name": "demo",
		"dependencies": {"lodash": "^4.0.0"}
	}`)
	// Enough files that shedding down to one worker still has work left.
	for i := 0; i < 40; i++ {
		name := filepath.Join(dir, "src", "mod"+string(rune('a'+i%26))+string(rune('0'+i/26))+".js")
		writeFile(t, name, `require('lodash');`)
	}

	watcher := &pinnedWatcher{}
	report := runEngine(t, Options{Root: dir, Workers: 8, Memory: watcher})

	if report.SourcesScanned != 40 {
		t.Fatalf("expected 40 sources scanned, got %d", report.SourcesScanned)
	}
	v := verdictFor(t, report, "lodash")
	if v.Verdict != classifier.VerdictUsed {
		t.Fatalf("expected used, got %s", v.Verdict)
	}
	if v.UsageCount != 40 {
		t.Errorf("expected usage count 40 regardless of shed workers, got %d", v.UsageCount)
	}
}

func TestExtractAll_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{
		"name": "demo",
		"dependencies": {"lodash": "^4.0.0"}
	}`)
	writeFile(t, filepath.Join(dir, "index.js"), `require('lodash');`)

	eng, err := New(Options{Root: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer eng.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := eng.Run(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestHeapWatcher_GrowsUnderLimit(t *testing.T) {
	w := &heapWatcher{softLimit: 1 << 62} // never exceeded
	if got := w.AdjustWorkers(4); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestHeapWatcher_ShrinksOverLimit(t *testing.T) {
	w := &heapWatcher{softLimit: 1} // always exceeded
	if got := w.AdjustWorkers(8); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if got := w.AdjustWorkers(1); got != 0 {
		// The coordinator clamps to 1; the watcher just halves.
		t.Errorf("expected 0, got %d", got)
	}
}

func TestDefaultWorkers(t *testing.T) {
	if defaultWorkers() < 1 {
		t.Error("defaultWorkers must be at least 1")
	}
}
