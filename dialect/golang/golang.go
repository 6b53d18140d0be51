// Package golang emits a Go project scaffold: one model struct and one
// chi-mounted HTTP handler per table, paired SQL migration files with an
// atlas.sum integrity index over the migration directory, html/template
// views, and a route registry. The generated sources reference chi and
// the target module's own packages; the generator itself only renders
// text.
package golang

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"
	"time"

	"ariga.io/atlas/sql/migrate"
	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/dialect"
)

func init() {
	dialect.Register(dialect.Golang, func(o dialect.Options) gen.MinimalDialect {
		return New(WithModule(o.Module))
	})
}

const (
	migrationsDir = "migrations"
	modelDir      = "internal/model"
	handlerDir    = "internal/handler"
	registryPath  = "internal/router/routes.go"
	templatesDir  = "web/templates"

	chiPkg = "github.com/go-chi/chi/v5"

	// stamp is the ordering key prefix of migration file names.
	stamp = "20060102150405"

	genHeader = "Code generated by faber. DO NOT EDIT."
)

// Golang renders the Go scaffold for a table. The zero value is not
// usable; construct with New.
type Golang struct {
	module string
}

// Option configures a Golang dialect.
type Option func(*Golang)

// WithModule sets the import path generated sources use to reference each
// other, e.g. "github.com/acme/shop". Defaults to "app".
func WithModule(module string) Option {
	return func(g *Golang) {
		if module != "" {
			g.module = module
		}
	}
}

// New returns a Golang dialect.
func New(opts ...Option) *Golang {
	g := &Golang{module: "app"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name implements gen.MinimalDialect.
func (*Golang) Name() string { return "golang" }

// MigrationsDir implements gen.MigrationGenerator.
func (*Golang) MigrationsDir() string { return migrationsDir }

// sqlFormatter renders a plan into an up/down file pair. The name
// templates carry the plan name in full, so the ordering key stays under
// the sequencer's control. Down files replay the reverse statements in
// reverse order.
var sqlFormatter = func() migrate.Formatter {
	rev := template.FuncMap{"rev": func(changes []*migrate.Change) []*migrate.Change {
		out := make([]*migrate.Change, len(changes))
		for i, c := range changes {
			out[len(changes)-1-i] = c
		}
		return out
	}}
	f, err := migrate.NewTemplateFormatter(
		template.Must(template.New("name").Parse("{{ .Name }}.up.sql")),
		template.Must(template.New("up").Parse(
			"{{ range .Changes }}{{ with .Comment }}-- {{ . }}\n{{ end }}{{ .Cmd }};\n{{ end }}")),
		template.Must(template.New("name").Parse("{{ .Name }}.down.sql")),
		template.Must(template.New("down").Funcs(rev).Parse(
			"{{ range rev .Changes }}{{ if .Reverse }}{{ with .Comment }}-- reverse: {{ . }}\n{{ end }}{{ .Reverse }};\n{{ end }}{{ end }}")),
	)
	if err != nil {
		panic(err)
	}
	return f
}()

// GenMigration renders the paired up/down migration for t.
func (g *Golang) GenMigration(t *gen.Table, at time.Time) ([]*gen.Artifact, error) {
	plan := buildPlan(t)
	plan.Name = fmt.Sprintf("%s_create_%s_table", at.UTC().Format(stamp), t.Name)
	files, err := sqlFormatter.Format(plan)
	if err != nil {
		return nil, gen.NewEmitError(t.Name, gen.KindMigration, "formatting migration plan", err)
	}
	out := make([]*gen.Artifact, 0, len(files))
	for _, f := range files {
		out = append(out, &gen.Artifact{
			Kind: gen.KindMigration,
			Path: path.Join(migrationsDir, f.Name()),
			Body: f.Bytes(),
		})
	}
	return out, nil
}

// IsMigrationFor matches both halves of a create migration pair for t.
func (*Golang) IsMigrationFor(name string, t *gen.Table) bool {
	base := strings.TrimSuffix(strings.TrimSuffix(name, ".up.sql"), ".down.sql")
	return strings.HasSuffix(base, "_create_"+t.Name+"_table")
}

// MigrationTime extracts the ordering key from a migration file name.
func (*Golang) MigrationTime(name string) (time.Time, bool) {
	if len(name) < len(stamp) {
		return time.Time{}, false
	}
	at, err := time.ParseInLocation(stamp, name[:len(stamp)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// Finalize refreshes the atlas.sum integrity index over the migration
// directory. It covers every migration present in the sink, not only the
// ones this run produced, so manual deletions are reflected too.
func (g *Golang) Finalize(sink gen.Sink, root string) error {
	dir := path.Join(root, migrationsDir)
	names, err := sink.List(dir)
	if err != nil {
		return err
	}
	mem := &migrate.MemDir{}
	migrations := 0
	for _, name := range names {
		if name == migrate.HashFileName {
			continue
		}
		body, err := sink.Read(path.Join(dir, name))
		if err != nil {
			return err
		}
		if err := mem.WriteFile(name, body); err != nil {
			return err
		}
		migrations++
	}
	if migrations == 0 {
		return nil
	}
	sum, err := mem.Checksum()
	if err != nil {
		return err
	}
	text, err := sum.MarshalText()
	if err != nil {
		return err
	}
	return sink.Write(path.Join(dir, migrate.HashFileName), text)
}

// Registry implements gen.RegistryGenerator. Web and API routes share one
// registry; the api flag moves the mount path instead (see GenRoute).
func (g *Golang) Registry(bool) gen.RegistrySpec {
	skeleton := fmt.Sprintf(`// Package router wires the generated resource handlers into a chi mux.
package router

import (
	"github.com/go-chi/chi/v5"

	"%s/internal/handler"
)

// Resources mounts one handler per generated resource. Handlers start as
// zero values; the application swaps in wired instances.
func Resources(r chi.Router) {
	// <faber:resources>
	// </faber:resources>
}
`, g.module)
	return gen.RegistrySpec{
		Path:     registryPath,
		Begin:    "\t// <faber:resources>",
		End:      "\t// </faber:resources>",
		Skeleton: []byte(skeleton),
	}
}

// GenRoute returns the mount statement for t, indented for the registry
// function body.
func (*Golang) GenRoute(t *gen.Table, _ bool) string {
	return fmt.Sprintf("\t(&handler.%s{}).Mount(r)", t.Naming.Controller)
}

// render formats a jennifer file through goimports and wraps it into an
// artifact.
func render(kind gen.Kind, table, p string, f *jen.File) (*gen.Artifact, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, gen.NewEmitError(table, kind, "rendering "+p, err)
	}
	formatted, err := imports.Process(p, buf.Bytes(), nil)
	if err != nil {
		return nil, gen.NewEmitError(table, kind, "formatting "+p, err)
	}
	return &gen.Artifact{Kind: kind, Path: p, Body: formatted}, nil
}

// identityField returns the model field backing the table's
// auto-increment key, if one is declared. Synthesized standalone tables
// carry no plan and report none.
func identityField(t *gen.Table) (string, bool) {
	if t.Plan == nil {
		return "", false
	}
	for _, s := range t.Plan.Steps {
		if s.Op == gen.OpIncrements {
			return gen.Pascal(s.Column), true
		}
	}
	return "", false
}
