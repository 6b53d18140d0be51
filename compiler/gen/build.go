package gen

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/faber/schema"
)

// Failure records one per-table or per-artifact failure. Failures never
// abort the run; they are aggregated on the report.
type Failure struct {
	Table string // empty for failures not bound to a table
	Err   error
}

// Report is the outcome of one build run.
type Report struct {
	RunID    string
	Started  time.Time
	Tables   int
	Written  []*Artifact
	Skipped  []string
	Warnings []string
	Failures []*Failure
}

// Failed reports whether any table or artifact failed.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

// Summary returns a one-line run summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d tables processed, %d artifacts written, %d skipped, %d warnings, %d failures",
		r.Tables, len(r.Written), len(r.Skipped), len(r.Warnings), len(r.Failures))
}

// Generate compiles doc and runs one full build with the given options.
func Generate(doc *schema.Document, opts ...Option) (*Report, error) {
	c, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	g, err := NewGraph(c, doc)
	if err != nil {
		return nil, err
	}
	return NewBuilder(g).Build()
}

// Builder drives one generation run over a compiled graph. It owns the
// only mutable run state: the conflict policy, the processed-table set,
// and the routes collected for the final registry update. A Builder is
// single-use; state never leaks into the next run.
type Builder struct {
	graph    *Graph
	policy   *Policy
	resolver *Resolver
	seq      *Sequencer
	report   *Report
	manifest *Manifest

	processed  map[string]bool
	suppressed map[string]bool // declared controllers resolved away
	routes     []string
}

// NewBuilder returns a builder for one run over g.
func NewBuilder(g *Graph) *Builder {
	policy := &Policy{ForceAll: g.Force, SkipAll: g.SkipAll}
	return &Builder{
		graph:      g,
		policy:     policy,
		resolver:   NewResolver(policy, g.Prompter),
		processed:  make(map[string]bool),
		suppressed: make(map[string]bool),
	}
}

// Build runs the pipeline: per table migration, model, controller and
// views in document order, then the standalone declarations, then exactly
// one registry update carrying the routes of all tables. Per-table
// failures land on the report; Build itself fails only on state the whole
// run depends on.
func (b *Builder) Build() (*Report, error) {
	g := b.graph
	b.report = &Report{RunID: uuid.NewString(), Started: g.Now()}
	b.seq = NewSequencer(b.report.Started)
	for _, f := range g.Failures {
		b.fail(f.Table, f)
	}
	if g.FeatureEnabled(FeatureManifest.Name) {
		m, err := LoadManifest(g.Sink)
		if err != nil {
			b.warnf("%v; starting a fresh manifest", err)
			m = &Manifest{Artifacts: make(map[string]ManifestEntry)}
		}
		b.manifest = m
	}
	for _, t := range g.Tables {
		if b.processed[t.Name] && !b.confirmReprocess(t) {
			continue
		}
		b.processed[t.Name] = true
		b.report.Tables++
		if err := b.processTable(t); err != nil {
			b.fail(t.Name, err)
		}
	}
	b.standalone()
	b.mergeRoutes()
	if f, ok := g.Dialect.(Finalizer); ok {
		if err := f.Finalize(g.Sink, g.Scope); err != nil {
			b.fail("", err)
		}
	}
	if b.manifest != nil {
		b.manifest.RunID = b.report.RunID
		b.manifest.CreatedAt = b.report.Started
		if err := b.manifest.Save(g.Sink); err != nil {
			b.fail("", err)
		}
	}
	return b.report, nil
}

// processTable emits the artifact set of one table. A returned error means
// the table's remaining artifacts were abandoned; write failures are
// recorded inline and do not stop sibling artifacts.
func (b *Builder) processTable(t *Table) error {
	for _, w := range t.Warnings {
		b.warnf("%s: %s", t.Name, w)
	}
	d := b.graph.Dialect
	api := b.graph.FeatureEnabled(FeatureAPI.Name)

	if mg, ok := d.(MigrationGenerator); ok {
		if err := b.migrate(mg, t); err != nil {
			return err
		}
	}

	model, err := d.GenModel(t)
	if err != nil {
		return err
	}
	b.write(model, t.Name)

	derived := true
	if b.declaredController(t.Naming.Controller) != nil {
		derived = b.resolveCollision(t)
	}
	if cg, ok := d.(ControllerGenerator); ok && derived {
		ctrl, err := cg.GenController(t, api)
		if err != nil {
			return err
		}
		b.write(ctrl, t.Name)
		b.addRoute(t, api)
	}

	// API builds render no presentation templates.
	if vg, ok := d.(ViewGenerator); ok && !api && len(t.Views) > 0 {
		views, err := vg.GenViews(t)
		if err != nil {
			return err
		}
		for _, v := range views {
			b.write(v, t.Name)
		}
	}

	if fg, ok := d.(FactoryGenerator); ok && b.graph.FeatureEnabled(FeatureFactory.Name) {
		factory, err := fg.GenFactory(t)
		if err != nil {
			return err
		}
		b.write(factory, t.Name)
	}
	return nil
}

// migrate emits the persistence artifacts for one table. When a create
// migration for the table already exists, its ordering key is reused so
// the regeneration targets the existing file through conflict resolution
// instead of stacking a second migration.
func (b *Builder) migrate(mg MigrationGenerator, t *Table) error {
	at := b.seq.Next()
	names, err := b.graph.Sink.List(b.path(mg.MigrationsDir()))
	if err != nil {
		b.fail(t.Name, err)
		names = nil
	}
	for _, name := range names {
		if mg.IsMigrationFor(name, t) {
			if prev, ok := mg.MigrationTime(name); ok {
				at = prev
			}
			break
		}
	}
	artifacts, err := mg.GenMigration(t, at)
	if err != nil {
		return err
	}
	for _, a := range artifacts {
		b.write(a, t.Name)
	}
	return nil
}

// resolveCollision decides between a declared standalone controller and
// the table-derived controller of the same name. It reports whether the
// derived controller should still be generated; the declared one is
// suppressed on its side when the answer is "derived". Once a blanket
// conflict answer was given, no prompt occurs and both are materialized.
func (b *Builder) resolveCollision(t *Table) bool {
	name := t.Naming.Controller
	choice := b.graph.Collision
	if choice == CollisionAsk {
		if b.policy.ForceAll || b.policy.SkipAll {
			choice = CollisionBoth
		} else {
			answer, err := b.graph.Prompter.Choose(
				fmt.Sprintf("controller %s is declared in the document and also derived from table %s. Which should be generated?", name, t.Name),
				[]string{string(CollisionDeclared), string(CollisionDerived), string(CollisionBoth)},
				string(CollisionBoth),
			)
			if err != nil {
				answer = string(CollisionBoth)
			}
			choice = CollisionPolicy(answer)
		}
	}
	switch choice {
	case CollisionDeclared:
		return false
	case CollisionDerived:
		b.suppressed[name] = true
		return true
	default:
		return true
	}
}

func (b *Builder) declaredController(name string) *schema.Controller {
	for _, c := range b.graph.Controllers {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (b *Builder) addRoute(t *Table, api bool) {
	if rg, ok := b.graph.Dialect.(RegistryGenerator); ok {
		if line := rg.GenRoute(t, api); line != "" {
			b.routes = append(b.routes, line)
		}
	}
}

// standalone renders the document declarations not bound to a table.
func (b *Builder) standalone() {
	g := b.graph
	sg, ok := g.Dialect.(StandaloneGenerator)
	if !ok {
		if n := len(g.Models) + len(g.Controllers) + len(g.Views); n > 0 {
			b.warnf("dialect %q skips standalone declarations (%d in document)", g.Dialect.Name(), n)
		}
		return
	}
	api := g.FeatureEnabled(FeatureAPI.Name)
	for _, m := range g.Models {
		if m.Name == "" {
			b.warnf("standalone model with empty name skipped")
			continue
		}
		a, err := sg.GenStandaloneModel(modelTable(m), m)
		if err != nil {
			b.fail("", err)
			continue
		}
		b.write(a, "")
	}
	for _, c := range g.Controllers {
		if c.Name == "" {
			b.warnf("standalone controller with empty name skipped")
			continue
		}
		if b.suppressed[c.Name] {
			continue
		}
		t := controllerTable(c)
		a, err := sg.GenStandaloneController(t, c, api)
		if err != nil {
			b.fail("", err)
			continue
		}
		b.write(a, "")
		if c.Resource {
			b.addRoute(t, api)
		}
	}
	for _, v := range g.Views {
		if v.Name == "" {
			continue
		}
		a, err := sg.GenStandaloneView(v)
		if err != nil {
			b.fail("", err)
			continue
		}
		b.write(a, "")
	}
}

// mergeRoutes performs the single registry update for the whole run.
func (b *Builder) mergeRoutes() {
	if len(b.routes) == 0 {
		return
	}
	rg, ok := b.graph.Dialect.(RegistryGenerator)
	if !ok {
		return
	}
	api := b.graph.FeatureEnabled(FeatureAPI.Name)
	spec := rg.Registry(api)
	spec.Path = b.path(spec.Path)
	sink := b.graph.Sink

	var content []byte
	exists := sink.Exists(spec.Path)
	if exists {
		var err error
		content, err = sink.Read(spec.Path)
		if err != nil {
			b.fail("", err)
			return
		}
	} else {
		content = spec.Skeleton
	}

	// A pre-existing generated block needs a decision; a fresh file or a
	// registry the engine never touched does not.
	mode := RegistryMerge
	if exists && bytes.Contains(content, []byte(spec.Begin)) {
		if b.policy.SkipAll {
			mode = RegistrySkip
		} else {
			var err error
			mode, err = ResolveRegistryMode(spec.Path, b.graph.Force || b.policy.ForceAll, b.graph.Prompter)
			if err != nil {
				b.fail("", err)
				return
			}
		}
	}

	merged, changed, err := MergeRegistry(content, spec, b.routes, mode)
	if err != nil {
		b.fail("", err)
		return
	}
	if !changed && exists {
		b.report.Skipped = append(b.report.Skipped, spec.Path)
		return
	}
	a := &Artifact{Kind: KindRegistry, Path: spec.Path, Body: merged}
	if err := sink.Write(a.Path, a.Body); err != nil {
		b.fail("", err)
		return
	}
	b.report.Written = append(b.report.Written, a)
	if b.manifest != nil {
		b.manifest.Record(a, "")
	}
}

// write routes one artifact through conflict resolution and the sink.
func (b *Builder) write(a *Artifact, table string) {
	a.Path = b.path(a.Path)
	sink := b.graph.Sink
	decision, err := b.resolver.Decide(a.Path, sink.Exists(a.Path))
	if err != nil {
		b.fail(table, err)
		return
	}
	if decision == Skip {
		b.report.Skipped = append(b.report.Skipped, a.Path)
		return
	}
	if err := sink.Write(a.Path, a.Body); err != nil {
		b.fail(table, err)
		return
	}
	b.report.Written = append(b.report.Written, a)
	if b.manifest != nil {
		b.manifest.Record(a, table)
	}
}

func (b *Builder) confirmReprocess(t *Table) bool {
	switch {
	case b.policy.ForceAll:
		return true
	case b.policy.SkipAll:
		return false
	}
	again, err := b.graph.Prompter.Confirm(
		fmt.Sprintf("table %s was already processed in this run. Process it again?", t.Name), false)
	if err != nil {
		return false
	}
	return again
}

func (b *Builder) fail(table string, err error) {
	b.report.Failures = append(b.report.Failures, &Failure{Table: table, Err: err})
	if table != "" {
		b.graph.Log.Printf("table %s: %v", table, err)
		return
	}
	b.graph.Log.Printf("%v", err)
}

func (b *Builder) warnf(format string, args ...any) {
	b.report.Warnings = append(b.report.Warnings, fmt.Sprintf(format, args...))
	b.graph.warnf(format, args...)
}

func (b *Builder) path(p string) string {
	if b.graph.Scope == "" {
		return p
	}
	return path.Join(b.graph.Scope, p)
}

// modelTable synthesizes the naming context for a standalone model. The
// declared name wins over the table-derived one.
func modelTable(m *schema.Model) *Table {
	table := m.Table
	if table == "" {
		table = plural(snake(m.Name))
	}
	t := &Table{Name: snake(table), Naming: DeriveNaming(table), Fillable: m.Fillable}
	overrideNaming(&t.Naming, m.Name)
	return t
}

// controllerTable synthesizes the naming context for a standalone
// controller.
func controllerTable(c *schema.Controller) *Table {
	base := c.Model
	if base == "" {
		base = strings.TrimSuffix(c.Name, "Controller")
	}
	table := plural(snake(base))
	t := &Table{Name: table, Naming: DeriveNaming(table)}
	overrideNaming(&t.Naming, base)
	t.Naming.Controller = c.Name
	return t
}

// overrideNaming rewrites the model-derived parts of a bundle around a
// declared name.
func overrideNaming(n *Naming, model string) {
	if model == "" {
		return
	}
	n.Model = pascal(model)
	n.Controller = n.Model + "Controller"
	n.Variable = camel(model)
	n.Receiver = receiver(n.Model)
}
