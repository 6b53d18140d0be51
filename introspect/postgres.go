package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/syssam/faber/schema"
)

const (
	postgresTablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name`

	postgresColumnsQuery = `SELECT column_name, data_type, udt_name, is_nullable, is_identity, column_default, character_maximum_length, numeric_precision, numeric_scale FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`

	// Key constraints; rows group by constraint name so composite keys
	// can be told apart from single-column ones.
	postgresKeysQuery = `SELECT t.constraint_name, t.constraint_type, k.column_name FROM information_schema.table_constraints t JOIN information_schema.key_column_usage k ON k.constraint_schema = t.constraint_schema AND k.constraint_name = t.constraint_name WHERE t.table_schema = current_schema() AND t.table_name = $1 AND t.constraint_type IN ('PRIMARY KEY', 'UNIQUE') ORDER BY t.constraint_name, k.ordinal_position`

	// Plain single-column indexes; unique and primary ones arrive through
	// the constraints query instead.
	postgresIndexQuery = `SELECT a.attname FROM pg_catalog.pg_index i JOIN pg_catalog.pg_class c ON c.oid = i.indrelid JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace JOIN pg_catalog.pg_attribute a ON a.attrelid = c.oid AND a.attnum = i.indkey[0] WHERE n.nspname = current_schema() AND c.relname = $1 AND NOT i.indisunique AND NOT i.indisprimary AND i.indnatts = 1`

	postgresForeignQuery = `SELECT r.constraint_name, k.column_name, u.table_name, u.column_name, r.delete_rule, r.update_rule FROM information_schema.referential_constraints r JOIN information_schema.key_column_usage k ON k.constraint_schema = r.constraint_schema AND k.constraint_name = r.constraint_name JOIN information_schema.constraint_column_usage u ON u.constraint_schema = r.constraint_schema AND u.constraint_name = r.constraint_name WHERE k.table_schema = current_schema() AND k.table_name = $1 ORDER BY r.constraint_name, k.ordinal_position`

	postgresEnumQuery = `SELECT e.enumlabel FROM pg_catalog.pg_enum e JOIN pg_catalog.pg_type t ON t.oid = e.enumtypid WHERE t.typname = $1 ORDER BY e.enumsortorder`
)

// postgresTables reads the current search-path schema from
// information_schema, falling back to pg_catalog where the standard view
// has no answer (enum labels, plain indexes).
func postgresTables(ctx context.Context, db *sql.DB) ([]*schema.Table, error) {
	rows, err := db.QueryContext(ctx, postgresTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("introspect: postgres tables: %w", err)
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
	enums := make(map[string][]string)
	tables := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		t, err := postgresTable(ctx, db, name, enums)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func postgresTable(ctx context.Context, db *sql.DB, name string, enums map[string][]string) (*schema.Table, error) {
	t := &schema.Table{Name: name}
	serial, err := postgresColumns(ctx, db, t, enums)
	if err != nil {
		return nil, err
	}
	if err := postgresKeys(ctx, db, t, serial); err != nil {
		return nil, err
	}
	if err := postgresIndexes(ctx, db, t); err != nil {
		return nil, err
	}
	return t, postgresForeign(ctx, db, t)
}

// postgresColumns fills the column list and reports which columns carry a
// sequence or identity default; those become increments columns once the
// primary key is known.
func postgresColumns(ctx context.Context, db *sql.DB, t *schema.Table, enums map[string][]string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, postgresColumnsQuery, t.Name)
	if err != nil {
		return nil, fmt.Errorf("introspect: postgres columns %s: %w", t.Name, err)
	}
	defer rows.Close()
	serial := make(map[string]bool)
	for rows.Next() {
		var (
			cname, dataType, udt, nullable, isIdentity string
			dflt                                       sql.NullString
			maxLen, numPrec, numScale                  sql.NullInt64
		)
		if err := rows.Scan(&cname, &dataType, &udt, &nullable, &isIdentity, &dflt, &maxLen, &numPrec, &numScale); err != nil {
			return nil, err
		}
		typ, length, values := mapType(dataType)
		if dataType == "USER-DEFINED" {
			labels, err := postgresEnum(ctx, db, udt, enums)
			if err != nil {
				return nil, err
			}
			if len(labels) > 0 {
				typ, values = schema.TypeEnum, labels
			} else {
				typ = schema.Type(udt)
			}
		}
		switch typ {
		case schema.TypeString:
			if maxLen.Valid && maxLen.Int64 != 255 {
				length = schema.Length{Precision: int(maxLen.Int64)}
			}
		case schema.TypeChar:
			if maxLen.Valid && maxLen.Int64 != 1 {
				length = schema.Length{Precision: int(maxLen.Int64)}
			}
		case schema.TypeDecimal:
			if numPrec.Valid {
				length = schema.Length{Precision: int(numPrec.Int64), Scale: int(numScale.Int64)}
			}
		}
		c := &schema.Column{
			Name:     cname,
			Type:     typ,
			Length:   length,
			Values:   values,
			Nullable: nullable == "YES",
		}
		if dflt.Valid {
			c.Default = parseDefault(dflt.String, typ)
		}
		if isIdentity == "YES" || (dflt.Valid && strings.HasPrefix(dflt.String, "nextval(")) {
			serial[cname] = true
		}
		t.Columns = append(t.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return serial, nil
}

func postgresEnum(ctx context.Context, db *sql.DB, udt string, enums map[string][]string) ([]string, error) {
	if labels, ok := enums[udt]; ok {
		return labels, nil
	}
	rows, err := db.QueryContext(ctx, postgresEnumQuery, udt)
	if err != nil {
		return nil, fmt.Errorf("introspect: postgres enum %s: %w", udt, err)
	}
	defer rows.Close()
	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	enums[udt] = labels
	return labels, nil
}

func postgresKeys(ctx context.Context, db *sql.DB, t *schema.Table, serial map[string]bool) error {
	rows, err := db.QueryContext(ctx, postgresKeysQuery, t.Name)
	if err != nil {
		return fmt.Errorf("introspect: postgres keys %s: %w", t.Name, err)
	}
	defer rows.Close()
	type key struct {
		name, typ, column string
	}
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.name, &k.typ, &k.column); err != nil {
			return err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	count := make(map[string]int, len(keys))
	for _, k := range keys {
		count[k.name]++
	}
	for _, k := range keys {
		if count[k.name] != 1 {
			continue
		}
		c := t.Column(k.column)
		if c == nil {
			continue
		}
		switch k.typ {
		case "PRIMARY KEY":
			if serial[k.column] && (c.Type == schema.TypeInteger || c.Type == schema.TypeBigInteger) {
				identity(c)
			}
		case "UNIQUE":
			c.Unique = true
		}
	}
	return nil
}

func postgresIndexes(ctx context.Context, db *sql.DB, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, postgresIndexQuery, t.Name)
	if err != nil {
		return fmt.Errorf("introspect: postgres indexes %s: %w", t.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var cname string
		if err := rows.Scan(&cname); err != nil {
			return err
		}
		if c := t.Column(cname); c != nil {
			c.Index = true
		}
	}
	return rows.Err()
}

func postgresForeign(ctx context.Context, db *sql.DB, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, postgresForeignQuery, t.Name)
	if err != nil {
		return fmt.Errorf("introspect: postgres foreign keys %s: %w", t.Name, err)
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
