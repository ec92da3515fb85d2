package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/depprune/internal/output"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Resolve usage for every declared dependency",
	Long: `Scan the project tree, extract import and require evidence from
source files, config files, and package.json scripts, and print one
verdict per declared dependency.

Re-runs are fast: extraction results are cached by content fingerprint,
so only changed files are re-parsed.`,
	Example: `  # Resolve the current directory
  depprune scan

  # A monorepo elsewhere, ignoring generated code
  depprune scan --root ~/work/app --ignore "src/generated/**"

  # Machine-readable output
  depprune scan --json`,
	Args: silenceArgs,
	RunE: runScan,
}

func init() {
	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	report, err := resolve(cmd.Context(), opts)
	if err != nil {
		return err
	}
	printDiagnostics(report)

	if flagJSON {
		return output.WriteJSON(os.Stdout, report)
	}

	fmt.Print(output.RenderVerdictTable(report.Verdicts))
	fmt.Println()
	fmt.Println(output.RenderSummary(output.CountVerdicts(report.Verdicts)))
	if !flagQuiet {
		fmt.Printf("\nScanned %d source files and %d config files in %s.\n",
			report.SourcesScanned, report.ConfigsScanned, report.Duration.Round(time.Millisecond))
		if len(report.IndeterminateFiles) > 0 {
			fmt.Printf("Dynamic imports in %d file(s) could not be resolved; run 'depprune explain <name>' for details.\n",
				len(report.IndeterminateFiles))
		}
	}
	return nil
}
