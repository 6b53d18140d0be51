// Package introspect reverse-engineers a live database into a schema
// document, so a project that already owns its tables can adopt generation
// without writing the document by hand.
//
// Coverage is scoped to what documents can express: tables, columns,
// single-column indexes and single-column foreign keys. Composite
// constraints are skipped. Conventional audit columns fold into their
// table-level flags: a created_at/updated_at pair becomes timestamps,
// deleted_at becomes soft deletes, and a follow-up generation recreates
// them the same way.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sort"
	"strings"

	// The supported database drivers register themselves under the names
	// Open resolves to.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/faber/schema"
)

// Supported driver names.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Driver normalizes a user-supplied driver name onto the supported set,
// so spellings like "sqlite3", "postgresql" or "pgx" resolve.
func Driver(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, known := range []string{MySQL, SQLite, Postgres} {
		if strings.HasPrefix(name, known) {
			return known, nil
		}
	}
	if strings.HasPrefix(name, "pg") {
		return Postgres, nil
	}
	return "", fmt.Errorf("introspect: unsupported driver %q (supported: %s, %s, %s)", name, MySQL, Postgres, SQLite)
}

// Open opens a database handle for one of the supported drivers. It is a
// convenience for callers holding a DSN; Introspect itself accepts any
// *sql.DB.
func Open(driver, dsn string) (*sql.DB, error) {
	name, err := Driver(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("introspect: open %s: %w", name, err)
	}
	return db, nil
}

// Introspect reads the schema of the connected database into a document.
// Bookkeeping tables maintained by migration tools are left out, and
// tables are ordered so foreign keys point backwards, keeping a generated
// migration set applicable in document order.
func Introspect(ctx context.Context, db *sql.DB, driver string) (*schema.Document, error) {
	name, err := Driver(driver)
	if err != nil {
		return nil, err
	}
	var tables []*schema.Table
	switch name {
	case Postgres:
		tables, err = postgresTables(ctx, db)
	case MySQL:
		tables, err = mysqlTables(ctx, db)
	case SQLite:
		tables, err = sqliteTables(ctx, db)
	}
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		fold(t)
	}
	sortTables(tables)
	return &schema.Document{Tables: tables}, nil
}

// bookkeeping tables migration tools keep for themselves.
var bookkeeping = map[string]bool{
	"migrations":             true,
	"schema_migrations":      true,
	"atlas_schema_revisions": true,
}

// identity rewrites a detected auto-increment primary key onto the id
// shorthand, the only identity spelling the column compiler turns into a
// primary-key instruction. The column keeps its name; only the width is
// lost, and the shipped dialects generate wide keys anyway.
func identity(c *schema.Column) {
	c.Type = schema.TypeID
	c.Nullable = false
	c.Default = nil
	c.Length = schema.Length{}
}

// fold collapses the conventional audit columns into their table flags.
func fold(t *schema.Table) {
	created, updated := t.Column("created_at"), t.Column("updated_at")
	if created != nil && updated != nil && created.Type.Temporal() && updated.Type.Temporal() {
		t.Timestamps = true
		t.Columns = drop(t.Columns, "created_at", "updated_at")
	}
	if deleted := t.Column("deleted_at"); deleted != nil && deleted.Type.Temporal() {
		t.SoftDeletes = true
		t.Columns = drop(t.Columns, "deleted_at")
	}
}

func drop(cols []*schema.Column, names ...string) []*schema.Column {
	return slices.DeleteFunc(cols, func(c *schema.Column) bool {
		return slices.Contains(names, c.Name)
	})
}

// sortTables orders tables alphabetically, then hoists foreign-key
// targets above their referrers. Self-references are ignored and cycles
// break at the first revisited table, keeping the order total.
func sortTables(tables []*schema.Table) {
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	index := make(map[string]*schema.Table, len(tables))
	for _, t := range tables {
		index[t.Name] = t
	}
	var (
		ordered = make([]*schema.Table, 0, len(tables))
		state   = make(map[string]int, len(tables))
		visit   func(t *schema.Table)
	)
	visit = func(t *schema.Table) {
		if state[t.Name] != 0 {
			return
		}
		state[t.Name] = 1
		for _, c := range t.Columns {
			if c.Foreign == nil || c.Foreign.Table == t.Name {
				continue
			}
			if dep, ok := index[c.Foreign.Table]; ok {
				visit(dep)
			}
		}
		state[t.Name] = 2
		ordered = append(ordered, t)
	}
	for _, t := range tables {
		visit(t)
	}
	copy(tables, ordered)
}

// fkRow is one row of a key-usage join, shared by the drivers.
type fkRow struct {
	constraint, column, table, ref, onDelete, onUpdate string
}

// applyForeign attaches single-column constraints to their columns.
// Composite constraints have no document form and are skipped.
func applyForeign(t *schema.Table, list []fkRow) {
	count := make(map[string]int, len(list))
	for _, f := range list {
		count[f.constraint]++
	}
	for _, f := range list {
		if count[f.constraint] != 1 {
			continue
		}
		c := t.Column(f.column)
		if c == nil {
			continue
		}
		c.Foreign = &schema.ForeignKey{
			Table:    f.table,
			Column:   f.ref,
			OnDelete: refAction(f.onDelete),
			OnUpdate: refAction(f.onUpdate),
		}
	}
}

// refAction lowers a referential action, dropping the engine-default
// NO ACTION so imported documents stay minimal.
func refAction(rule string) string {
	rule = strings.ToLower(strings.TrimSpace(rule))
	if rule == "" || rule == "no action" {
		return ""
	}
	return rule
}
