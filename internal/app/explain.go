package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/depprune/internal/output"
)

var explainCmd = &cobra.Command{
	Use:   "explain <dependency>",
	Short: "Show the evidence behind one dependency's verdict",
	Long: `Resolve the project and print everything known about a single
dependency: where it is declared, its verdict, every evidence kind
found, and the files the references came from.`,
	Example: `  depprune explain lodash
  depprune explain @types/node
  depprune explain typescript --aggressive`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	RootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	name := args[0]

	opts, err := buildOptions()
	if err != nil {
		return err
	}

	report, err := resolve(cmd.Context(), opts)
	if err != nil {
		return err
	}
	printDiagnostics(report)

	// A workspace can declare the same name in several manifests; each
	// declaration has its own verdict.
	var matches []int
	for i, v := range report.Verdicts {
		if v.Name == name {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return fmt.Errorf("%q is not declared in any manifest of this project", name)
	}

	if flagJSON {
		if len(matches) == 1 {
			return output.WriteJSON(os.Stdout, report.Verdicts[matches[0]])
		}
		all := make([]any, 0, len(matches))
		for _, i := range matches {
			all = append(all, report.Verdicts[i])
		}
		return output.WriteJSON(os.Stdout, all)
	}

	for n, i := range matches {
		if n > 0 {
			fmt.Println()
		}
		fmt.Print(output.RenderExplain(report.Verdicts[i]))
	}
	return nil
}
