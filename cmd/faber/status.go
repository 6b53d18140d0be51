package main

import (
	"fmt"
	"os"
	"path/filepath"

	"ariga.io/atlas/sql/migrate"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/dialect"
)

func statusCmd() *cobra.Command {
	var (
		out         string
		dialectName string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report drift between generated artifacts and the tree",
		Long: `Status compares every artifact recorded in the last runs against the
files on disk: clean, modified, or missing. When the dialect keeps an
atlas.sum over its migration directory, the sum is verified too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadFileConfig(".")
			if err != nil {
				return err
			}
			fillString(cmd, "out", &out, cfg.Out)
			fillString(cmd, "dialect", &dialectName, cfg.Dialect)

			w := cmd.OutOrStdout()
			sink := gen.NewDirSink(out)
			manifest, err := gen.LoadManifest(sink)
			if err != nil {
				return err
			}
			if len(manifest.Artifacts) == 0 {
				fmt.Fprintln(w, "no generated artifacts on record; run faber generate first")
				return nil
			}

			var clean, modified, missing int
			for _, d := range manifest.Status(sink) {
				switch d.State {
				case gen.DriftClean:
					clean++
				case gen.DriftModified:
					modified++
					fmt.Fprintf(w, "%s modified %s\n", color.New(color.FgYellow).Sprint("~"), d.Path)
				case gen.DriftMissing:
					missing++
					fmt.Fprintf(w, "%s missing  %s\n", color.New(color.FgRed).Sprint("✗"), d.Path)
				}
			}
			fmt.Fprintf(w, "%d artifact(s) on record: %d clean, %d modified, %d missing\n",
				len(manifest.Artifacts), clean, modified, missing)

			return verifySum(cmd, out, dialectName)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", ".", "output directory of previous runs")
	cmd.Flags().StringVarP(&dialectName, "dialect", "d", dialect.Laravel, "dialect whose migration directory is checked")

	return cmd
}

// verifySum validates the atlas.sum of the dialect's migration directory
// when one exists on disk.
func verifySum(cmd *cobra.Command, out, dialectName string) error {
	fac, err := dialect.Lookup(dialectName)
	if err != nil {
		return err
	}
	mg, ok := fac(dialect.Options{}).(gen.MigrationGenerator)
	if !ok {
		return nil
	}
	dir := filepath.Join(out, filepath.FromSlash(mg.MigrationsDir()))
	if _, err := os.Stat(filepath.Join(dir, migrate.HashFileName)); err != nil {
		return nil
	}

	w := cmd.OutOrStdout()
	local, err := migrate.NewLocalDir(dir)
	if err != nil {
		return err
	}
	if err := migrate.Validate(local); err != nil {
		fmt.Fprintf(w, "%s %s is stale: %v\n",
			color.New(color.FgRed).Sprint("✗"), filepath.Join(dir, migrate.HashFileName), err)
		return nil
	}
	fmt.Fprintf(w, "%s %s verified\n",
		color.New(color.FgGreen).Sprint("✓"), filepath.Join(dir, migrate.HashFileName))
	return nil
}
