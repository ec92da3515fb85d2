package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/depprune/internal/config"
	"github.com/blackwell-systems/depprune/internal/output"
	"github.com/blackwell-systems/depprune/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Show the protection registry",
	Long: `Print the categories and entries of the protection registry: the
tooling packages that are never reported unused on missing import
evidence alone. Entries ending in "*" are prefix patterns.

Project extensions from .depprune.yaml are merged into the listing.`,
	Example: `  depprune registry
  depprune registry --json`,
	Args: silenceArgs,
	RunE: runRegistry,
}

func init() {
	RootCmd.AddCommand(registryCmd)
}

func runRegistry(cmd *cobra.Command, args []string) error {
	reg, err := registry.Builtin()
	if err != nil {
		return err
	}

	root, err := filepath.Abs(flagRoot)
	if err == nil {
		if cfg, cfgErr := config.Load(root); cfgErr == nil {
			reg = reg.WithCategoryExtensions(cfg.Protect)
		}
	}

	if flagJSON {
		listing := map[string]any{"version": reg.Version(), "categories": map[string][]string{}}
		cats := listing["categories"].(map[string][]string)
		for _, cat := range reg.Categories() {
			cats[cat] = reg.Entries(cat)
		}
		return output.WriteJSON(os.Stdout, listing)
	}

	fmt.Printf("Protection registry (version %s)\n\n", reg.Version())
	for _, cat := range reg.Categories() {
		fmt.Printf("%s:\n", cat)
		for _, entry := range reg.Entries(cat) {
			fmt.Printf("  %s\n", entry)
		}
		fmt.Println()
	}
	return nil
}
