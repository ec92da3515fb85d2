// Package engine orchestrates the dependency usage resolution run: load
// the project manifests, scan for candidates, extract usage evidence in
// parallel, merge it single-threaded, and classify every declared
// dependency. The engine reads files and writes nothing.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/depprune/internal/cache"
	"github.com/blackwell-systems/depprune/internal/classifier"
	"github.com/blackwell-systems/depprune/internal/configscan"
	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/manifest"
	"github.com/blackwell-systems/depprune/internal/registry"
	"github.com/blackwell-systems/depprune/internal/scanner"
)

// Options configures a run.
type Options struct {
	Root       string
	Ignore     []string // extra glob ignore patterns
	SafeList   []string
	Aggressive bool
	Workers    int    // 0 = GOMAXPROCS
	CachePath  string // empty disables the persistent cache tier
	NoCache    bool   // bypass the cache entirely

	// Registry overrides the builtin protection registry; the app layer
	// passes a derived copy when the project config extends it.
	Registry *registry.Registry

	// Memory lets callers plug their own pressure signal; nil uses the
	// heap-sampling default.
	Memory MemoryWatcher
}

// Diagnostic is a recovered per-file problem surfaced on the report.
type Diagnostic struct {
	File    string `json:"file"`
	Stage   string `json:"stage"` // "parse" or "config"
	Message string `json:"message"`
}

// Report is the outcome of one run: a verdict for every declared
// dependency plus the diagnostics recovered along the way.
type Report struct {
	Verdicts           []classifier.Verdict `json:"verdicts"`
	Diagnostics        []Diagnostic         `json:"diagnostics,omitempty"`
	IndeterminateFiles []string             `json:"indeterminateFiles,omitempty"`
	SourcesScanned     int                  `json:"sourcesScanned"`
	ConfigsScanned     int                  `json:"configsScanned"`
	Duration           time.Duration        `json:"-"`
}

// Engine is a configured resolution engine. One engine may run multiple
// times (the watch command reuses it); runs share the cache.
type Engine struct {
	opts      Options
	extractor *extractor.Extractor
	configs   *configscan.Scanner
	cache     *cache.Cache
	reg       *registry.Registry
}

// New validates options and prepares an engine. The protection registry
// is resolved here; a load failure is fatal.
func New(opts Options) (*Engine, error) {
	reg := opts.Registry
	if reg == nil {
		builtin, err := registry.Builtin()
		if err != nil {
			return nil, err
		}
		reg = builtin
	}

	cachePath := opts.CachePath
	if opts.NoCache {
		cachePath = ""
	}
	c, err := cache.New(cachePath)
	if err != nil {
		return nil, fmt.Errorf("open usage cache: %w", err)
	}

	return &Engine{
		opts:      opts,
		extractor: extractor.New(),
		configs:   configscan.New(),
		cache:     c,
		reg:       reg,
	}, nil
}

// Close releases the engine's cache.
func (e *Engine) Close() error { return e.cache.Close() }

// Run executes the full pipeline and returns the report. Only manifest
// and registry problems abort; every per-file failure is recovered into
// a diagnostic and the run always produces a verdict per dependency.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	project, err := manifest.LoadProject(e.opts.Root)
	if err != nil {
		return nil, err
	}

	inv, err := scanner.New(e.opts.Root, e.opts.Ignore).Scan()
	if err != nil {
		return nil, err
	}
	slog.Debug("scan complete",
		"sources", len(inv.Sources), "configs", len(inv.Configs))

	// Map phase: parallel per-file extraction, each worker keeping its
	// own result list. Barrier, then everything below is single-threaded.
	results, diags, err := e.extractAll(ctx, inv.Sources)
	if err != nil {
		return nil, err
	}

	configRecords, configDiags, err := e.scanConfigs(ctx, inv.Configs)
	if err != nil {
		return nil, err
	}
	diags = append(diags, configDiags...)

	var scriptRecords []extractor.UsageRecord
	for _, m := range project.Manifests() {
		scriptRecords = append(scriptRecords, configscan.ScanScripts(m)...)
	}

	// Reduce phase: fold all evidence into the dependency map.
	agg := merge(project, results, append(configRecords, scriptRecords...))

	verdicts := classifier.Classify(agg.usages, e.reg, classifier.Options{
		SafeList:   e.opts.SafeList,
		Aggressive: e.opts.Aggressive,
	}, len(agg.indeterminateFiles) > 0)

	sort.Slice(diags, func(i, j int) bool {
		if diags[i].File != diags[j].File {
			return diags[i].File < diags[j].File
		}
		return diags[i].Stage < diags[j].Stage
	})

	return &Report{
		Verdicts:           verdicts,
		Diagnostics:        diags,
		IndeterminateFiles: agg.indeterminateFiles,
		SourcesScanned:     len(inv.Sources),
		ConfigsScanned:     len(inv.Configs),
		Duration:           time.Since(start),
	}, nil
}

// scanConfigs runs the config reference scanner over every candidate,
// bounded by the worker budget. Results are collected by index, so no
// shared state is mutated concurrently.
func (e *Engine) scanConfigs(ctx context.Context, configs []string) ([]extractor.UsageRecord, []Diagnostic, error) {
	perFile := make([][]extractor.UsageRecord, len(configs))
	errs := make([]error, len(configs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workerBudget())
	for i, path := range configs {
		i, path := i, path
		g.Go(func() error {
			records, err := e.configs.ScanFile(gctx, path)
			if err != nil {
				errs[i] = err
				return nil // recovered locally, never fatal
			}
			perFile[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var records []extractor.UsageRecord
	var diags []Diagnostic
	for i := range configs {
		if errs[i] != nil {
			diags = append(diags, Diagnostic{File: configs[i], Stage: "config", Message: errs[i].Error()})
			continue
		}
		records = append(records, perFile[i]...)
	}
	return records, diags, nil
}

func (e *Engine) workerBudget() int {
	if e.opts.Workers > 0 {
		return e.opts.Workers
	}
	return defaultWorkers()
}
