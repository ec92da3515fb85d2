package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagRoot       string
	flagJSON       bool
	flagQuiet      bool
	flagNoCache    bool
	flagCachePath  string
	flagWorkers    int
	flagIgnore     []string
	flagSafe       []string
	flagAggressive bool

	// RootCmd is the root command for depprune
	RootCmd = &cobra.Command{
		Use:   "depprune",
		Short: "Find npm dependencies your project never uses",
		Long: `depprune resolves which declared dependencies a JavaScript or
TypeScript project actually references, across source imports, config
files, and package.json scripts.

Every declared dependency gets exactly one verdict:
  used           referenced from source, configs, or scripts
  unused         no reference anywhere - a removal candidate
  protected      tooling (compilers, linters, @types/*) whose absence of
                 imports proves nothing
  indeterminate  the project has dynamic imports that could not be
                 resolved, so removal cannot be proven safe

depprune is biased toward safety: it never reports "unused" when the
evidence is incomplete. Run with --aggressive to judge protected tools
on import evidence alone.

Examples:
  # Resolve the project in the current directory
  depprune scan

  # Only the removal candidates, one per line
  depprune unused

  # Why did lodash get this verdict?
  depprune explain lodash

  # Re-resolve on every change
  depprune watch

  # What does the protection registry cover?
  depprune registry`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("depprune: dependency usage resolution for npm projects")
			fmt.Println()
			fmt.Println("Run 'depprune scan' to resolve the current project.")
			fmt.Println("Run 'depprune --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVarP(&flagRoot, "root", "r", ".", "project root (directory containing package.json)")
	pf.BoolVar(&flagJSON, "json", false, "emit machine-readable JSON instead of tables")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")
	pf.BoolVar(&flagNoCache, "no-cache", false, "bypass the extraction cache")
	pf.StringVar(&flagCachePath, "cache", "", "extraction cache path (default: ~/.config/depprune/cache.db)")
	pf.IntVar(&flagWorkers, "workers", 0, "extraction worker count (default: number of CPUs)")
	pf.StringArrayVar(&flagIgnore, "ignore", nil, "glob pattern to exclude from scanning (repeatable)")
	pf.StringArrayVar(&flagSafe, "safe", nil, "dependency to always protect (repeatable)")
	pf.BoolVar(&flagAggressive, "aggressive", false, "disable registry protection; judge on evidence alone")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
