package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/depprune/internal/engine"
	"github.com/blackwell-systems/depprune/internal/output"
	"github.com/blackwell-systems/depprune/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-resolve whenever the project changes",
	Long: `Watch the project tree and re-run resolution after every relevant
change: source files, config files, or any package.json. Bursts of
changes, like a branch switch, collapse into a single run.

The extraction cache makes incremental runs cheap: unchanged files are
never re-parsed. Stop with Ctrl-C.`,
	Example: `  depprune watch
  depprune watch --root ~/work/app --json`,
	Args: silenceArgs,
	RunE: runWatch,
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	// One run up front so the first output does not wait for a change.
	if err := watchPass(cmd, opts); err != nil {
		return err
	}

	runs := make(chan struct{}, 1)
	w, err := watcher.New(opts.Root, func() {
		select {
		case runs <- struct{}{}:
		default: // a run is already queued
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	if !flagQuiet && !flagJSON {
		fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl-C to stop)\n", opts.Root)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sigCh:
			return nil
		case <-runs:
			if err := watchPass(cmd, opts); err != nil {
				// A transient failure (e.g. manifest mid-save) should not
				// kill the watch; report and wait for the next change.
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		}
	}
}

// watchPass runs one resolution and prints it in the watch format: a
// timestamped summary line, or the full JSON report in --json mode.
func watchPass(cmd *cobra.Command, opts engine.Options) error {
	report, err := resolve(cmd.Context(), opts)
	if err != nil {
		return err
	}
	printDiagnostics(report)

	if flagJSON {
		return output.WriteJSON(os.Stdout, report)
	}

	counts := output.CountVerdicts(report.Verdicts)
	fmt.Printf("[%s] %s (%d files, %s)\n",
		time.Now().Format("15:04:05"),
		output.RenderSummary(counts),
		report.SourcesScanned+report.ConfigsScanned,
		report.Duration.Round(time.Millisecond))
	return nil
}
