package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/faber/introspect"
)

func importCmd() *cobra.Command {
	var (
		dsn     string
		driver  string
		out     string
		force   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a schema document from a live database",
		Long: `Import connects to an existing database, reads its tables, and writes
the equivalent schema document. Audit columns fold back into the
timestamps and soft-delete flags, and tables come out referenced-first so
the generated migrations apply in document order.

The driver is taken from the DSN scheme when it has one; DSNs without a
scheme (plain MySQL form) need --driver.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := resolveDriver(driver, dsn)
			if err != nil {
				return err
			}
			if out != "-" && !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s already exists; use --force to overwrite", out)
				}
			}

			db, err := introspect.Open(name, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("connect %s: %w", name, err)
			}

			doc, err := introspect.Introspect(ctx, db, name)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(doc)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s imported %d table(s) from %s into %s\n",
				color.New(color.FgGreen).Sprint("✓"), len(doc.Tables), name, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "database connection string (required)")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver (postgres, mysql, sqlite)")
	cmd.Flags().StringVarP(&out, "out", "o", "schema.yaml", "schema document to write, - for stdout")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing schema document")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "connection and introspection timeout")
	_ = cmd.MarkFlagRequired("dsn")

	return cmd
}

// resolveDriver normalizes the explicit driver name, falling back to the
// DSN scheme.
func resolveDriver(driver, dsn string) (string, error) {
	if driver != "" {
		return introspect.Driver(driver)
	}
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		return introspect.Driver(scheme)
	}
	if strings.HasPrefix(dsn, "file:") || dsn == ":memory:" {
		return introspect.SQLite, nil
	}
	return "", errors.New("cannot tell the driver from the DSN; pass --driver")
}
