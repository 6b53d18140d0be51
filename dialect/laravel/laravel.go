// Package laravel emits artifacts in the layout of a Laravel application:
// Eloquent models, resource controllers, Blade views, schema migrations,
// model factories and route registrations. Rendering goes through a fixed
// set of stub templates; a stub directory can shadow individual stubs
// without replacing the whole set.
package laravel

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/dialect"
	"github.com/syssam/faber/schema"
)

func init() {
	dialect.Register(dialect.Laravel, func(o dialect.Options) gen.MinimalDialect {
		var opts []Option
		if o.Stubs != "" {
			opts = append(opts, WithStubDir(o.Stubs))
		}
		return New(opts...)
	})
}

//go:embed stubs/*.stub
var stubFS embed.FS

// Stub templates use [[ ]] delimiters so Blade's {{ }} interpolation can
// appear in stub bodies verbatim.
const delimLeft, delimRight = "[[", "]]"

const (
	migrationsDir  = "database/migrations"
	modelsDir      = "app/Models"
	controllersDir = "app/Http/Controllers"
	viewsDir       = "resources/views"
	factoriesDir   = "database/factories"

	// migrationStamp is the ordering key prefix of migration file names.
	migrationStamp = "2006_01_02_150405"
)

// Laravel renders the full artifact set for a table. The zero value is not
// usable; construct with New.
type Laravel struct {
	stubDir string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// Option configures a Laravel dialect.
type Option func(*Laravel)

// WithStubDir shadows the embedded stubs with files from dir. Only stubs
// present in dir are overridden; the rest keep their embedded copies.
func WithStubDir(dir string) Option {
	return func(l *Laravel) { l.stubDir = dir }
}

// New returns a Laravel dialect.
func New(opts ...Option) *Laravel {
	l := &Laravel{cache: make(map[string]*template.Template)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name implements gen.MinimalDialect.
func (*Laravel) Name() string { return "laravel" }

// MigrationsDir implements gen.MigrationGenerator.
func (*Laravel) MigrationsDir() string { return migrationsDir }

// GenMigration renders the create-table migration. One file carries both
// directions; down drops the table.
func (l *Laravel) GenMigration(t *gen.Table, at time.Time) ([]*gen.Artifact, error) {
	name := fmt.Sprintf("%s_create_%s_table.php", at.UTC().Format(migrationStamp), t.Name)
	data := struct {
		*gen.Table
		Lines []string
	}{t, migrationLines(t.Plan)}
	a, err := l.render(gen.KindMigration, t.Name, "migration", path.Join(migrationsDir, name), data)
	if err != nil {
		return nil, err
	}
	return []*gen.Artifact{a}, nil
}

// IsMigrationFor matches create migrations for t regardless of their
// ordering key, so regeneration targets the existing file.
func (*Laravel) IsMigrationFor(name string, t *gen.Table) bool {
	return strings.HasSuffix(name, "_create_"+t.Name+"_table.php")
}

// MigrationTime extracts the ordering key from a migration file name.
func (*Laravel) MigrationTime(name string) (time.Time, bool) {
	if len(name) < len(migrationStamp) {
		return time.Time{}, false
	}
	at, err := time.ParseInLocation(migrationStamp, name[:len(migrationStamp)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// GenModel implements gen.ModelGenerator.
func (l *Laravel) GenModel(t *gen.Table) (*gen.Artifact, error) {
	return l.render(gen.KindModel, t.Name, "model", modelPath(t), t)
}

// GenController implements gen.ControllerGenerator. The api flag selects
// the JSON variant, which answers with response payloads instead of views.
func (l *Laravel) GenController(t *gen.Table, api bool) (*gen.Artifact, error) {
	stub := "controller"
	if api {
		stub = "controller.api"
	}
	data := struct {
		*gen.Table
		Rules []Rule
	}{t, Rules(t)}
	return l.render(gen.KindController, t.Name, stub, controllerPath(t.Naming.Controller), data)
}

// GenViews renders one Blade template per requested view slot. The create
// and edit templates share their field markup through a _form partial,
// which is emitted alongside them whenever either slot is requested.
func (l *Laravel) GenViews(t *gen.Table) ([]*gen.Artifact, error) {
	slots := t.Views
	if needsForm(slots) {
		slots = append(append([]string(nil), slots...), "form")
	}
	out := make([]*gen.Artifact, 0, len(slots))
	for _, slot := range slots {
		name := slot
		if slot == "form" {
			name = "_form"
		}
		p := path.Join(viewsDir, t.Naming.RouteResource, name+".blade.php")
		a, err := l.render(gen.KindView, t.Name, "view."+slot, p, t)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func needsForm(slots []string) bool {
	implied := false
	for _, s := range slots {
		switch s {
		case "form":
			return false
		case "create", "edit":
			implied = true
		}
	}
	return implied
}

// GenFactory implements gen.FactoryGenerator.
func (l *Laravel) GenFactory(t *gen.Table) (*gen.Artifact, error) {
	data := struct {
		*gen.Table
		Defs []Def
	}{t, Defs(t)}
	p := path.Join(factoriesDir, t.Naming.Model+"Factory.php")
	return l.render(gen.KindFactory, t.Name, "factory", p, data)
}

// Registry implements gen.RegistryGenerator.
func (l *Laravel) Registry(api bool) gen.RegistrySpec {
	name, stub := "routes/web.php", "routes.web"
	if api {
		name, stub = "routes/api.php", "routes.api"
	}
	return gen.RegistrySpec{
		Path:     name,
		Begin:    "// <faber:resources>",
		End:      "// </faber:resources>",
		Skeleton: l.skeleton(stub),
	}
}

// GenRoute returns the resource registration line. Controllers are
// referenced by their fully qualified class name, so the registry file
// needs no import management.
func (*Laravel) GenRoute(t *gen.Table, api bool) string {
	method := "resource"
	if api {
		method = "apiResource"
	}
	return fmt.Sprintf("Route::%s('%s', \\App\\Http\\Controllers\\%s::class);",
		method, t.Naming.RouteResource, t.Naming.Controller)
}

// GenStandaloneModel renders a model declared without a table. The model
// stub tolerates the missing relation and column data.
func (l *Laravel) GenStandaloneModel(t *gen.Table, _ *schema.Model) (*gen.Artifact, error) {
	return l.render(gen.KindModel, "", "model", modelPath(t), t)
}

// GenStandaloneController renders a declared controller. Resource
// controllers reuse the table stubs; anything else is generated empty.
func (l *Laravel) GenStandaloneController(t *gen.Table, c *schema.Controller, api bool) (*gen.Artifact, error) {
	if !c.Resource {
		return l.render(gen.KindController, "", "controller.plain", controllerPath(c.Name), t)
	}
	stub := "controller"
	if api {
		stub = "controller.api"
	}
	data := struct {
		*gen.Table
		Rules []Rule
	}{t, Rules(t)}
	return l.render(gen.KindController, "", stub, controllerPath(c.Name), data)
}

// GenStandaloneView renders a view declared without a table.
func (l *Laravel) GenStandaloneView(v *schema.View) (*gen.Artifact, error) {
	p := path.Join(viewsDir, v.For, v.Name+".blade.php")
	return l.render(gen.KindView, "", "view.plain", p, v)
}

func modelPath(t *gen.Table) string {
	return path.Join(modelsDir, t.Naming.Model+".php")
}

func controllerPath(name string) string {
	return path.Join(controllersDir, name+".php")
}

// render executes the named stub and wraps failures in the engine's error
// taxonomy: a stub that cannot be loaded is a StubError, a template that
// fails against its data is an EmitError.
func (l *Laravel) render(kind gen.Kind, table, stub, path string, data any) (*gen.Artifact, error) {
	tmpl, err := l.stub(stub)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, gen.NewEmitError(table, kind, "executing stub "+stub, err)
	}
	return &gen.Artifact{Kind: kind, Path: path, Body: buf.Bytes()}, nil
}

// stub returns the parsed template for a slot, loading and caching it on
// first use.
func (l *Laravel) stub(name string) (*template.Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.cache[name]; ok {
		return t, nil
	}
	body, err := l.read(name)
	if err != nil {
		return nil, err
	}
	t, err := template.New(name).Delims(delimLeft, delimRight).Funcs(gen.Funcs).Parse(string(body))
	if err != nil {
		return nil, gen.NewStubError(l.Name(), name, err)
	}
	l.cache[name] = t
	return t, nil
}

// read resolves a stub body, preferring the override directory when one is
// configured.
func (l *Laravel) read(name string) ([]byte, error) {
	if l.stubDir != "" {
		body, err := os.ReadFile(filepath.Join(l.stubDir, name+".stub"))
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, gen.NewStubError(l.Name(), name, err)
		}
	}
	body, err := stubFS.ReadFile("stubs/" + name + ".stub")
	if err != nil {
		return nil, gen.NewStubError(l.Name(), name, gen.ErrStubMissing)
	}
	return body, nil
}

// skeleton returns an embedded stub verbatim. The embedded set is fixed at
// compile time, so the read cannot fail for a bundled name.
func (*Laravel) skeleton(name string) []byte {
	body, _ := stubFS.ReadFile("stubs/" + name + ".stub")
	return body
}
