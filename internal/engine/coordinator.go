package engine

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/scanner"
)

// extractAll is the map phase: a bounded worker pool parses every source
// candidate. Each worker appends to its own output slice, so there is no
// shared counter to race on, and the fold into per-dependency state
// happens after the barrier, single-threaded. Usage counts are therefore
// identical for every worker count.
//
// Under memory pressure the pool shrinks: a worker whose id exceeds the
// current target stops pulling new files after finishing its current one.
// In-flight parses are never aborted, and a single file's failure never
// cancels the pool.
func (e *Engine) extractAll(ctx context.Context, files []*scanner.SourceFile) ([]*extractor.Result, []Diagnostic, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	workers := e.workerBudget()
	if workers > len(files) {
		workers = len(files)
	}

	watcher := e.opts.Memory
	if watcher == nil {
		watcher = newHeapWatcher()
	}

	var target atomic.Int32
	target.Store(int32(workers))

	monitorDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-monitorDone:
				return
			case <-ticker.C:
				cur := int(target.Load())
				next := watcher.AdjustWorkers(cur)
				if next < 1 {
					next = 1
				}
				if next > workers {
					next = workers
				}
				if next != cur {
					slog.Debug("adjusting worker target", "from", cur, "to", next)
					target.Store(int32(next))
				}
			}
		}
	}()

	jobs := make(chan *scanner.SourceFile)
	outs := make([][]*extractor.Result, workers)

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				outs[id] = append(outs[id], e.extractOne(ctx, f))
				if ctx.Err() != nil {
					return
				}
				// Shed workers above the target; worker 0 always stays.
				if int32(id) >= target.Load() {
					return
				}
			}
		}()
	}

feed:
	for _, f := range files {
		select {
		case jobs <- f:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(monitorDone)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Barrier passed: fold worker outputs (order is irrelevant; the
	// merge keys by dependency and sorts everything it reports).
	var results []*extractor.Result
	var diags []Diagnostic
	for _, out := range outs {
		for _, res := range out {
			if res == nil {
				continue
			}
			results = append(results, res)
			if res.Failed {
				diags = append(diags, Diagnostic{File: res.File, Stage: "parse", Message: res.FailReason})
			}
		}
	}
	return results, diags, nil
}

// extractOne parses a single candidate, consulting the usage cache by
// content fingerprint first. Workers block only on file I/O and cache
// lookups.
func (e *Engine) extractOne(ctx context.Context, f *scanner.SourceFile) *extractor.Result {
	if res, ok := e.cache.Get(f.Fingerprint); ok {
		// Cache hits may carry a path from a previous run or a content
		// twin; rebind to the current file for attribution.
		if res.File != f.Path {
			rebound := *res
			rebound.File = f.Path
			rebound.Records = append([]extractor.UsageRecord{}, res.Records...)
			for i := range rebound.Records {
				rebound.Records[i].File = f.Path
			}
			return &rebound
		}
		return res
	}

	content, err := os.ReadFile(f.Path)
	if err != nil {
		return &extractor.Result{File: f.Path, Failed: true, FailReason: err.Error()}
	}

	res, err := e.extractor.Extract(ctx, f.Path, content, f.Dialect)
	if err != nil {
		// Only context cancellation reaches here; report the file as
		// unparsed rather than inventing evidence.
		return &extractor.Result{File: f.Path, Failed: true, FailReason: err.Error()}
	}

	if err := e.cache.Put(f.Fingerprint, res); err != nil {
		slog.Debug("cache write failed", "file", f.Path, "error", err)
	}
	return res
}
