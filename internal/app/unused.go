package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/depprune/internal/classifier"
	"github.com/blackwell-systems/depprune/internal/output"
)

var unusedFailOn bool

var unusedCmd = &cobra.Command{
	Use:   "unused",
	Short: "List removal candidates, one per line",
	Long: `Resolve the project and print only the dependencies with an unused
verdict. The output is one bare name per line, suitable for piping:

  npm uninstall $(depprune unused --quiet)

Protected and indeterminate dependencies are never listed here, even
when they have no import evidence; use 'depprune scan' to see them and
'depprune explain <name>' for the reasoning.`,
	Example: `  # Removal candidates for the current project
  depprune unused

  # Fail CI when anything is removable
  depprune unused --fail-on-unused

  # Judge build tooling on evidence alone
  depprune unused --aggressive`,
	Args: silenceArgs,
	RunE: runUnused,
}

func init() {
	unusedCmd.Flags().BoolVar(&unusedFailOn, "fail-on-unused", false, "exit with status 1 when unused dependencies exist")
	RootCmd.AddCommand(unusedCmd)
}

func runUnused(cmd *cobra.Command, args []string) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	report, err := resolve(cmd.Context(), opts)
	if err != nil {
		return err
	}
	printDiagnostics(report)

	var unused []classifier.Verdict
	indeterminate := 0
	for _, v := range report.Verdicts {
		switch v.Verdict {
		case classifier.VerdictUnused:
			unused = append(unused, v)
		case classifier.VerdictIndeterminate:
			indeterminate++
		}
	}
	if indeterminate > 0 && !flagQuiet {
		fmt.Fprintf(os.Stderr, "note: %d dependencies are indeterminate (unresolved dynamic imports) and are not listed\n", indeterminate)
	}

	if flagJSON {
		if err := output.WriteJSON(os.Stdout, unused); err != nil {
			return err
		}
	} else if len(unused) > 0 || !flagQuiet {
		fmt.Print(output.RenderUnusedList(report.Verdicts))
	}

	if unusedFailOn && len(unused) > 0 {
		return fmt.Errorf("%d unused dependencies found", len(unused))
	}
	return nil
}
