package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/syssam/faber/schema"
)

const (
	mysqlTablesQuery = `SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`

	// COLUMN_TYPE carries the full spelling with arguments and flags
	// ("varchar(100)", "enum('a','b')", "int unsigned"), which is exactly
	// what mapType parses.
	mysqlColumnsQuery = `SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_KEY, EXTRA, COLUMN_COMMENT FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`

	mysqlForeignQuery = `SELECT k.CONSTRAINT_NAME, k.COLUMN_NAME, k.REFERENCED_TABLE_NAME, k.REFERENCED_COLUMN_NAME, r.DELETE_RULE, r.UPDATE_RULE FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE k JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS r ON r.CONSTRAINT_SCHEMA = k.CONSTRAINT_SCHEMA AND r.CONSTRAINT_NAME = k.CONSTRAINT_NAME WHERE k.TABLE_SCHEMA = DATABASE() AND k.TABLE_NAME = ? AND k.REFERENCED_TABLE_NAME IS NOT NULL ORDER BY k.CONSTRAINT_NAME, k.ORDINAL_POSITION`
)

// mysqlTables reads the current database's schema from information_schema.
func mysqlTables(ctx context.Context, db *sql.DB) ([]*schema.Table, error) {
	rows, err := db.QueryContext(ctx, mysqlTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("introspect: mysql tables: %w", err)
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
	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, err := mysqlTable(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func mysqlTable(ctx context.Context, db *sql.DB, name string) (*schema.Table, error) {
	t := &schema.Table{Name: name}
	rows, err := db.QueryContext(ctx, mysqlColumnsQuery, name)
	if err != nil {
		return nil, fmt.Errorf("introspect: mysql columns %s: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cname, ctype, nullable, key, extra, comment string
			dflt                                        sql.NullString
		)
		if err := rows.Scan(&cname, &ctype, &nullable, &dflt, &key, &extra, &comment); err != nil {
			return nil, err
		}
		typ, length, values := mapType(ctype)
		c := &schema.Column{
			Name:     cname,
			Type:     typ,
			Length:   length,
			Values:   values,
			Nullable: nullable == "YES",
			Comment:  comment,
		}
		if dflt.Valid {
			c.Default = parseDefault(dflt.String, typ)
		}
		switch key {
		case "UNI":
			c.Unique = true
		case "MUL":
			c.Index = true
		}
		if key == "PRI" && strings.Contains(extra, "auto_increment") {
			identity(c)
		}
		t.Columns = append(t.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, mysqlForeign(ctx, db, t)
}

func mysqlForeign(ctx context.Context, db *sql.DB, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, mysqlForeignQuery, t.Name)
	if err != nil {
		return fmt.Errorf("introspect: mysql foreign keys %s: %w", t.Name, err)
	}
	defer rows.Close()
	var list []fkRow
	for rows.Next() {
		var f fkRow
		if err := rows.Scan(&f.constraint, &f.column, &f.table, &f.ref, &f.onDelete, &f.onUpdate); err != nil {
			return err
		}
		list = append(list, f)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	applyForeign(t, list)
	return nil
}
