package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/syssam/faber/schema"
)

// sqliteTables reads the schema through sqlite's PRAGMA interface.
// Identifiers are interpolated because PRAGMA takes no bind parameters;
// names come from sqlite_master, not from user input.
func sqliteTables(ctx context.Context, db *sql.DB) ([]*schema.Table, error) {
	names, err := sqliteNames(ctx, db)
	if err != nil {
		return nil, err
	}
	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, err := sqliteTable(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func sqliteNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("introspect: sqlite tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if !bookkeeping[name] {
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func sqliteTable(ctx context.Context, db *sql.DB, name string) (*schema.Table, error) {
	t := &schema.Table{Name: name}
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", name))
	if err != nil {
		return nil, fmt.Errorf("introspect: sqlite columns %s: %w", name, err)
	}
	defer rows.Close()
	var pks []string
	for rows.Next() {
		var (
			cid, notnull, pk int
			cname, ctype     string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &cname, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		typ, length, values := mapType(ctype)
		c := &schema.Column{
			Name:     cname,
			Type:     typ,
			Length:   length,
			Values:   values,
			Nullable: notnull == 0 && pk == 0,
		}
		if dflt.Valid {
			c.Default = parseDefault(dflt.String, typ)
		}
		if pk > 0 {
			pks = append(pks, cname)
		}
		t.Columns = append(t.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// A single integer primary key aliases the rowid, which is what the
	// increments family generates.
	if len(pks) == 1 {
		if c := t.Column(pks[0]); c != nil && (c.Type == schema.TypeInteger || c.Type == schema.TypeBigInteger) {
			identity(c)
		}
	}
	if err := sqliteForeign(ctx, db, t); err != nil {
		return nil, err
	}
	return t, sqliteIndexes(ctx, db, t)
}

func sqliteForeign(ctx context.Context, db *sql.DB, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", t.Name))
	if err != nil {
		return fmt.Errorf("introspect: sqlite foreign keys %s: %w", t.Name, err)
	}
	defer rows.Close()
	var list []fkRow
	for rows.Next() {
		var (
			id, seq                         int
			table, from, onUpdate, onDelete string
			to                              sql.NullString
			match                           string
		)
		if err := rows.Scan(&id, &seq, &table, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return err
		}
		list = append(list, fkRow{
			// Composite keys repeat the id; keying the constraint on it
			// lets applyForeign count members.
			constraint: strconv.Itoa(id),
			column:     from,
			table:      table,
			ref:        to.String,
			onDelete:   onDelete,
			onUpdate:   onUpdate,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	applyForeign(t, list)
	return nil
}

func sqliteIndexes(ctx context.Context, db *sql.DB, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%q)", t.Name))
	if err != nil {
		return fmt.Errorf("introspect: sqlite indexes %s: %w", t.Name, err)
	}
	type index struct {
		name   string
		unique bool
	}
	var indexes []index
	for rows.Next() {
		var (
			seq, unique, partial int
			name, origin         string
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return err
		}
		if origin == "pk" {
			continue
		}
		indexes = append(indexes, index{name, unique == 1})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()
	for _, ix := range indexes {
		cols, err := sqliteIndexColumns(ctx, db, ix.name)
		if err != nil {
			return err
		}
		if len(cols) != 1 {
			continue
		}
		c := t.Column(cols[0])
		if c == nil {
			continue
		}
		if ix.unique {
			c.Unique = true
		} else {
			c.Index = true
		}
	}
	return nil
}

func sqliteIndexColumns(ctx context.Context, db *sql.DB, name string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%q)", name))
	if err != nil {
		return nil, fmt.Errorf("introspect: sqlite index %s: %w", name, err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var (
			seqno, cid int
			cname      sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &cname); err != nil {
			return nil, err
		}
		cols = append(cols, cname.String)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}
