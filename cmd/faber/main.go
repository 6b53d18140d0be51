// Command faber generates application scaffolding from declarative
// table schemas.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/faber"

	// Bundled dialect stacks register themselves on import.
	_ "github.com/syssam/faber/dialect/golang"
	_ "github.com/syssam/faber/dialect/graphql"
	_ "github.com/syssam/faber/dialect/laravel"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "faber",
		Short:   "Schema-driven scaffolding generator",
		Version: faber.Version,
		Long: `Faber reads a declarative table schema and generates the matching
migrations, models, controllers, views and routes for a target stack.
Artifacts are deterministic; the shared route registry is merged, never
rewritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(generateCmd())
	root.AddCommand(importCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(initCmd())
	root.AddCommand(versionCmd())

	return root
}
