package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/syssam/faber"
	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/dialect"
	"github.com/syssam/faber/prompt"
)

// runSettings is the merged flag/file configuration of one generation
// run, shared by generate and watch.
type runSettings struct {
	schema    string
	out       string
	dialect   string
	module    string
	stubs     string
	collision string
	force     bool
	skipAll   bool
	yesToAll  bool
	dryRun    bool
	api       bool
	factory   bool
}

// fill applies .faber.yaml defaults for every flag left unset.
func (s *runSettings) fill(cmd *cobra.Command, cfg *fileConfig) {
	fillString(cmd, "schema", &s.schema, cfg.Schema)
	fillString(cmd, "out", &s.out, cfg.Out)
	fillString(cmd, "dialect", &s.dialect, cfg.Dialect)
	fillString(cmd, "module", &s.module, cfg.Module)
	fillString(cmd, "stubs", &s.stubs, cfg.Stubs)
	fillString(cmd, "collision", &s.collision, cfg.Collision)
	fillBool(cmd, "api", &s.api, cfg.API)
	fillBool(cmd, "factory", &s.factory, cfg.Factory)
}

// options translates the settings into engine options. The prompter
// reads from in and writes to out; a dry run swaps the directory sink
// for an in-memory one so nothing touches disk.
func (s *runSettings) options(in io.Reader, out io.Writer) ([]gen.Option, error) {
	fac, err := dialect.Lookup(s.dialect)
	if err != nil {
		return nil, err
	}
	d := fac(dialect.Options{Module: s.module, Stubs: s.stubs})

	var sink gen.Sink = gen.NewDirSink(s.out)
	if s.dryRun {
		sink = gen.NewMemSink()
	}

	var prompter gen.Prompter = prompt.NewTerminal(in, out)
	if s.yesToAll {
		prompter = prompt.Static{Yes: true}
	}

	opts := []gen.Option{
		gen.WithDialect(d),
		gen.WithSink(sink),
		gen.WithPrompter(prompter),
		gen.WithForce(s.force),
		gen.WithSkipAll(s.skipAll),
	}
	if s.collision != "" {
		opts = append(opts, gen.WithCollision(gen.CollisionPolicy(s.collision)))
	}
	var features []gen.Feature
	if s.api {
		features = append(features, gen.FeatureAPI)
	}
	if s.factory {
		features = append(features, gen.FeatureFactory)
	}
	if len(features) > 0 {
		opts = append(opts, gen.WithFeatures(features...))
	}
	return opts, nil
}

// addFlags registers the run flags shared by generate and watch.
func (s *runSettings) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.schema, "schema", "s", "schema.yaml", "schema document (YAML or compact form)")
	cmd.Flags().StringVarP(&s.out, "out", "o", ".", "output directory")
	cmd.Flags().StringVarP(&s.dialect, "dialect", "d", dialect.Laravel,
		"target dialect ("+strings.Join(dialect.Names(), ", ")+")")
	cmd.Flags().StringVar(&s.module, "module", "", "module path for generated Go sources")
	cmd.Flags().StringVar(&s.stubs, "stubs", "", "directory of stub templates overriding the bundled ones")
	cmd.Flags().StringVar(&s.collision, "collision", "", "controller collision policy (ask, declared, derived, both)")
	cmd.Flags().BoolVarP(&s.force, "force", "f", false, "overwrite existing files without asking")
	cmd.Flags().BoolVar(&s.skipAll, "skip-all", false, "skip every write instead of asking")
	cmd.Flags().BoolVarP(&s.yesToAll, "yes-to-all", "y", false, "answer yes to every question")
	cmd.Flags().BoolVar(&s.api, "api", false, "generate API controllers and routes")
	cmd.Flags().BoolVar(&s.factory, "factory", false, "generate test-data factories")
}

func generateCmd() *cobra.Command {
	s := &runSettings{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate artifacts from a schema document",
		Long: `Generate reads the schema document and emits the per-table artifacts of
the chosen dialect: migration, model, controller, views, and optionally a
factory, plus one merged route registry update.

Existing files prompt before being overwritten; answer "all" or
"skip-all" to decide for the rest of the run. Defaults for every flag can
live in ` + configName + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadFileConfig(".")
			if err != nil {
				return err
			}
			s.fill(cmd, cfg)
			return runGenerate(cmd, s)
		},
	}

	s.addFlags(cmd)
	cmd.Flags().BoolVarP(&s.dryRun, "dry-run", "n", false, "report what would be written without writing")

	return cmd
}

func runGenerate(cmd *cobra.Command, s *runSettings) error {
	opts, err := s.options(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	report, err := faber.Generate(s.schema, opts...)
	if err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report, s.dryRun)
	if report.Failed() {
		return faber.ErrFailed
	}
	return nil
}

// printReport renders one run outcome, a line per artifact.
func printReport(w io.Writer, report *gen.Report, dryRun bool) {
	verb := "wrote"
	if dryRun {
		verb = "would write"
	}
	for _, a := range report.Written {
		fmt.Fprintf(w, "%s %s %s\n", color.New(color.FgGreen).Sprint("✓"), verb, a.Path)
	}
	for _, p := range report.Skipped {
		fmt.Fprintf(w, "%s skipped %s\n", color.New(color.FgYellow).Sprint("-"), p)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "%s %s\n", color.New(color.FgYellow).Sprint("warning:"), warning)
	}
	for _, f := range report.Failures {
		if f.Table != "" {
			fmt.Fprintf(w, "%s table %s: %v\n", color.New(color.FgRed).Sprint("✗"), f.Table, f.Err)
		} else {
			fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed).Sprint("✗"), f.Err)
		}
	}
	fmt.Fprintln(w, report.Summary())
}
