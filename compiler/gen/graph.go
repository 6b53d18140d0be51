package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/faber/schema"
)

// Graph holds the compiled generation graph: one Table per schema table in
// declaration order, plus the standalone declarations that are not bound to
// a table. Construction normalizes identifiers, derives naming once, drops
// duplicate columns, and resolves foreign keys, so every dialect consumes
// the same IR.
type Graph struct {
	*Config
	// Tables that compiled successfully, in declaration order.
	Tables []*Table
	// Failures of tables that did not compile. They abort only the table,
	// never the run.
	Failures []*SchemaError
	// Models, Controllers and Views declared standalone in the document.
	Models      []*schema.Model
	Controllers []*schema.Controller
	Views       []*schema.View
}

// NewGraph creates a Graph from a parsed schema document. It returns an
// error only when the configuration or document is unusable as a whole;
// invalid tables are recorded on Failures instead.
func NewGraph(c *Config, doc *schema.Document) (*Graph, error) {
	if err := c.defaults(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, NewSchemaError("", "", "nil schema document", ErrInvalidSchema)
	}
	g := &Graph{
		Config:      c,
		Models:      doc.Models,
		Controllers: doc.Controllers,
		Views:       doc.Views,
	}
	for _, spec := range doc.Tables {
		t, err := newTable(spec)
		if err != nil {
			var serr *SchemaError
			if !errors.As(err, &serr) {
				serr = NewSchemaError("", "", err.Error(), err)
			}
			g.Failures = append(g.Failures, serr)
			continue
		}
		g.Tables = append(g.Tables, t)
	}
	g.resolveRelations()
	return g, nil
}

// Table returns the compiled table named name, or nil.
func (g *Graph) Table(name string) *Table {
	for _, t := range g.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Table is the compiled form of one schema table. All identifiers are
// normalized and all names every artifact needs are derived exactly once.
type Table struct {
	// Name is the normalized (snake_case) table name.
	Name string
	// Naming is the derived name set shared by all artifacts of this table.
	Naming Naming
	// Columns in declaration order, duplicates dropped, foreign keys
	// normalized. Never mutated after construction.
	Columns []*schema.Column
	// Timestamps and SoftDeletes mirror the table options.
	Timestamps  bool
	SoftDeletes bool
	// Views holds the requested view slots (index, create, edit, show).
	Views []string
	// Fillable lists the mass-assignable column names: every column except
	// reserved names and identity columns.
	Fillable []string
	// BelongsTo holds one relation per resolved foreign key on this table.
	BelongsTo []*Relation
	// HasMany holds the inverse relations contributed by other tables in
	// the same document that reference this one.
	HasMany []*Relation
	// Plan is the ordered emission plan for the persistence artifact.
	Plan *Plan
	// Warnings recorded while compiling this table.
	Warnings []string
}

// Column returns the compiled column named name, or nil.
func (t *Table) Column(name string) *schema.Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (t *Table) warnf(format string, args ...any) {
	t.Warnings = append(t.Warnings, fmt.Sprintf(format, args...))
}

// Relation describes one side of a foreign-key relationship between two
// models.
type Relation struct {
	// Table is the related table name.
	Table string
	// Model is the related model type name.
	Model string
	// Method is the accessor name on the owning model.
	Method string
	// Column is the foreign-key column that backs the relation.
	Column string
}

func newTable(spec *schema.Table) (*Table, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return nil, NewSchemaError("", "", "missing table name", ErrInvalidSchema)
	}
	naming := DeriveNaming(spec.Name)
	t := &Table{
		Name:        naming.Table,
		Naming:      naming,
		Timestamps:  spec.Timestamps,
		SoftDeletes: spec.SoftDeletes,
		Views:       spec.Views,
	}
	seen := make(map[string]bool, len(spec.Columns))
	for _, col := range spec.Columns {
		name := snake(col.Name)
		if name == "" {
			t.warnf("column with empty name dropped")
			continue
		}
		if seen[name] {
			t.warnf("duplicate column %q dropped", name)
			continue
		}
		seen[name] = true
		cc := *col
		cc.Name = name
		cc.Foreign = normalizeForeign(col.Foreign)
		t.Columns = append(t.Columns, &cc)
	}
	plan, warnings := CompileColumns(t)
	t.Plan = plan
	t.Warnings = append(t.Warnings, warnings...)
	t.Fillable = fillable(t.Columns)
	t.BelongsTo = belongsTo(t)
	return t, nil
}

// normalizeForeign copies a foreign-key declaration with the target column
// defaulted to "id". A declaration without a target table carries no
// information and is dropped without a warning.
func normalizeForeign(f *schema.ForeignKey) *schema.ForeignKey {
	if f == nil || strings.TrimSpace(f.Table) == "" {
		return nil
	}
	ff := *f
	ff.Table = snake(ff.Table)
	if ff.Column == "" {
		ff.Column = "id"
	} else {
		ff.Column = snake(ff.Column)
	}
	return &ff
}

func fillable(cols []*schema.Column) []string {
	var out []string
	for _, c := range cols {
		if schema.Reserved(c.Name) || c.Type.Identity() {
			continue
		}
		out = append(out, c.Name)
	}
	return out
}

func belongsTo(t *Table) []*Relation {
	var out []*Relation
	for _, c := range t.Columns {
		f := c.Foreign
		if f == nil {
			continue
		}
		method := camel(singular(f.Table))
		if base, ok := strings.CutSuffix(c.Name, "_id"); ok && base != "" {
			method = camel(base)
		}
		out = append(out, &Relation{
			Table:  f.Table,
			Model:  pascal(singular(f.Table)),
			Method: method,
			Column: c.Name,
		})
	}
	return out
}

// resolveRelations wires the inverse side of every foreign key whose target
// table is declared in the same document. Declaration order between the two
// tables does not matter; targets outside the document simply contribute no
// inverse.
func (g *Graph) resolveRelations() {
	byName := make(map[string]*Table, len(g.Tables))
	for _, t := range g.Tables {
		byName[t.Name] = t
	}
	for _, t := range g.Tables {
		for _, c := range t.Columns {
			f := c.Foreign
			if f == nil {
				continue
			}
			target, ok := byName[f.Table]
			if !ok || target == t {
				continue
			}
			target.HasMany = append(target.HasMany, &Relation{
				Table:  t.Name,
				Model:  t.Naming.Model,
				Method: camel(t.Naming.RouteResource),
				Column: c.Name,
			})
		}
	}
}
