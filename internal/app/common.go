package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/depprune/internal/config"
	"github.com/blackwell-systems/depprune/internal/engine"
	"github.com/blackwell-systems/depprune/internal/output"
	"github.com/blackwell-systems/depprune/internal/registry"
)

// buildOptions merges the project config with command-line flags into
// engine options. Flags win over the config file.
func buildOptions() (engine.Options, error) {
	root, err := filepath.Abs(flagRoot)
	if err != nil {
		return engine.Options{}, fmt.Errorf("resolve project root: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return engine.Options{}, err
	}

	reg, err := registry.Builtin()
	if err != nil {
		return engine.Options{}, err
	}
	reg = reg.WithCategoryExtensions(cfg.Protect)

	opts := engine.Options{
		Root:       root,
		Ignore:     append(append([]string{}, cfg.Ignore...), flagIgnore...),
		SafeList:   append(append([]string{}, cfg.Safe...), flagSafe...),
		Aggressive: cfg.Aggressive || flagAggressive,
		Workers:    cfg.Workers,
		NoCache:    flagNoCache,
		Registry:   reg,
	}
	if flagWorkers > 0 {
		opts.Workers = flagWorkers
	}

	opts.CachePath = flagCachePath
	if opts.CachePath == "" && !flagNoCache {
		path, err := config.CachePath()
		if err != nil {
			// A home-dir problem should not block resolution; run with
			// the in-memory tier only.
			opts.CachePath = ""
		} else {
			opts.CachePath = path
		}
	}

	return opts, nil
}

// resolve runs one engine pass with a spinner on stderr-visible
// terminals. Quiet and JSON modes skip the spinner entirely.
func resolve(ctx context.Context, opts engine.Options) (*engine.Report, error) {
	eng, err := engine.New(opts)
	if err != nil {
		return nil, err
	}
	defer eng.Close()

	var spinner *output.Spinner
	if !flagQuiet && !flagJSON {
		spinner = output.NewSpinner("Resolving dependency usage")
		spinner.Start()
	}

	report, err := eng.Run(ctx)
	if spinner != nil {
		spinner.Stop()
	}
	return report, err
}

// printDiagnostics lists recovered per-file problems on stderr so
// stdout stays pipeable.
func printDiagnostics(report *engine.Report) {
	if flagQuiet || len(report.Diagnostics) == 0 {
		return
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s: %s: %s\n", d.Stage, d.File, d.Message)
	}
}

// silenceArgs rejects stray positional arguments with a usable message.
func silenceArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q; %s takes no arguments", args[0], cmd.Name())
	}
	return nil
}
