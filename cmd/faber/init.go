package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/faber/dialect"
)

// starterSchema seeds a new project with a schema small enough to read
// in one look and complete enough to show the column surface.
const starterSchema = `# Faber schema document. Run "faber generate" to build it.
tables:
  - name: users
    columns:
      - name: id
        type: id
      - name: name
        type: string
      - name: email
        type: string
        unique: true
    timestamps: true

  - name: posts
    columns:
      - name: id
        type: id
      - name: title
        type: string
        length: 120
      - name: body
        type: text
      - name: user_id
        type: unsignedInteger
        foreign:
          table: users
          on_delete: cascade
    timestamps: true
    soft_deletes: true
`

func initCmd() *cobra.Command {
	var (
		dialectName string
		module      string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter schema and project defaults",
		Long: `Init writes a starter schema.yaml and a ` + configName + ` with the
chosen defaults into the current directory. Existing files are left
alone unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := dialect.Lookup(dialectName); err != nil {
				return err
			}
			w := cmd.OutOrStdout()

			written, err := writeOnce("schema.yaml", []byte(starterSchema), force)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(w, "%s created schema.yaml\n", color.New(color.FgGreen).Sprint("✓"))
			} else {
				fmt.Fprintln(w, "- schema.yaml already exists, kept")
			}

			data, err := yaml.Marshal(&fileConfig{Dialect: dialectName, Module: module})
			if err != nil {
				return err
			}
			written, err = writeOnce(configName, data, force)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(w, "%s created %s\n", color.New(color.FgGreen).Sprint("✓"), configName)
			} else {
				fmt.Fprintf(w, "- %s already exists, kept\n", configName)
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, "Next steps:")
			fmt.Fprintln(w, "  edit schema.yaml")
			fmt.Fprintln(w, "  faber generate")
			return nil
		},
	}

	cmd.Flags().StringVarP(&dialectName, "dialect", "d", dialect.Laravel,
		"default dialect ("+strings.Join(dialect.Names(), ", ")+")")
	cmd.Flags().StringVar(&module, "module", "", "default module path for generated Go sources")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")

	return cmd
}

// writeOnce writes path unless it already exists without force. It
// reports whether the file was written.
func writeOnce(path string, body []byte, force bool) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}
	return true, os.WriteFile(path, body, 0o644)
}
