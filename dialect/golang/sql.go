package golang

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/migrate"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/schema"
)

// buildPlan compiles a table's emission plan into migration changes: one
// CREATE TABLE carrying columns and constraints, then one change per
// secondary index and column comment. Every change carries its reverse,
// so the formatter can derive the down file.
func buildPlan(t *gen.Table) *migrate.Plan {
	var defs, constraints []string
	var extra []*migrate.Change
	for _, s := range t.Plan.Steps {
		switch s.Op {
		case gen.OpForeign:
			constraints = append(constraints, foreignDef(t.Name, s))
			continue
		case gen.OpTimestamps:
			defs = append(defs,
				`"created_at" timestamptz NOT NULL DEFAULT now()`,
				`"updated_at" timestamptz NOT NULL DEFAULT now()`,
			)
			continue
		case gen.OpSoftDeletes:
			defs = append(defs, `"deleted_at" timestamptz NULL`)
			continue
		}
		defs = append(defs, columnDef(s))
		for _, m := range s.Modifiers {
			switch m.Name {
			case gen.ModIndex:
				extra = append(extra, indexChange(t.Name, s.Column))
			case gen.ModComment:
				extra = append(extra, commentChange(t.Name, s.Column, m.Value))
			}
		}
	}
	create := &migrate.Change{
		Cmd: fmt.Sprintf("CREATE TABLE %q (\n  %s\n)",
			t.Name, strings.Join(append(defs, constraints...), ",\n  ")),
		Comment: fmt.Sprintf("create %q table", t.Name),
		Reverse: fmt.Sprintf("DROP TABLE %q", t.Name),
	}
	return &migrate.Plan{Changes: append([]*migrate.Change{create}, extra...)}
}

// columnDef renders one column definition. Enum columns become text with
// a CHECK constraint, so no database-level type has to be created first.
func columnDef(s *gen.Step) string {
	if s.Op == gen.OpIncrements {
		return fmt.Sprintf("%q bigserial PRIMARY KEY", s.Column)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%q %s", s.Column, sqlType(s))
	null, def, unique := " NOT NULL", "", ""
	for _, m := range s.Modifiers {
		switch m.Name {
		case gen.ModNullable:
			null = " NULL"
		case gen.ModDefault:
			def = " DEFAULT " + sqlValue(m.Value)
		case gen.ModUnique:
			unique = " UNIQUE"
		}
	}
	b.WriteString(null)
	b.WriteString(def)
	b.WriteString(unique)
	if s.Op == gen.OpEnum {
		fmt.Fprintf(&b, " CHECK (%q IN (%s))", s.Column, sqlList(s.Values))
	}
	return b.String()
}

// sqlType maps a column type tag onto its SQL type. Tags outside the
// known set pass through verbatim.
func sqlType(s *gen.Step) string {
	if s.Op == gen.OpEnum {
		return "text"
	}
	switch s.Type {
	case schema.TypeString:
		n := s.Length
		if n == 0 {
			n = 255
		}
		return fmt.Sprintf("varchar(%d)", n)
	case schema.TypeChar:
		n := s.Length
		if n == 0 {
			n = 1
		}
		return fmt.Sprintf("char(%d)", n)
	case schema.TypeText, schema.TypeMediumText, schema.TypeLongText:
		return "text"
	case schema.TypeInteger:
		return "integer"
	case schema.TypeTinyInteger, schema.TypeSmallInteger:
		return "smallint"
	case schema.TypeBigInteger:
		return "bigint"
	case schema.TypeUnsignedInt:
		return "integer"
	case schema.TypeBoolean:
		return "boolean"
	case schema.TypeDate:
		return "date"
	case schema.TypeDateTime:
		return "timestamp"
	case schema.TypeTime:
		return "time"
	case schema.TypeTimestamp:
		return "timestamptz"
	case schema.TypeDecimal:
		return numericType(s)
	case schema.TypeFloat:
		return "real"
	case schema.TypeDouble:
		return "double precision"
	case schema.TypeJSON:
		return "jsonb"
	case schema.TypeUUID:
		return "uuid"
	case schema.TypeBinary:
		return "bytea"
	case "":
		return "varchar(255)"
	}
	return string(s.Type)
}

// numericType renders numeric with the declared precision and scale. A
// scale without a precision borrows the default precision of 8, since the
// argument list is positional.
func numericType(s *gen.Step) string {
	switch {
	case s.Length > 0 && s.Scale > 0:
		return fmt.Sprintf("numeric(%d,%d)", s.Length, s.Scale)
	case s.Length > 0:
		return fmt.Sprintf("numeric(%d)", s.Length)
	case s.Scale > 0:
		return fmt.Sprintf("numeric(8,%d)", s.Scale)
	}
	return "numeric"
}

func foreignDef(table string, s *gen.Step) string {
	f := s.Foreign
	var b strings.Builder
	fmt.Fprintf(&b, "CONSTRAINT %q FOREIGN KEY (%q) REFERENCES %q (%q)",
		fmt.Sprintf("%s_%s_fkey", table, s.Column), s.Column, f.Table, f.Column)
	if f.OnDelete != "" {
		fmt.Fprintf(&b, " ON DELETE %s", strings.ToUpper(f.OnDelete))
	}
	if f.OnUpdate != "" {
		fmt.Fprintf(&b, " ON UPDATE %s", strings.ToUpper(f.OnUpdate))
	}
	return b.String()
}

func indexChange(table, column string) *migrate.Change {
	name := fmt.Sprintf("%s_%s_idx", table, column)
	return &migrate.Change{
		Cmd:     fmt.Sprintf("CREATE INDEX %q ON %q (%q)", name, table, column),
		Comment: fmt.Sprintf("create index %q on %q", name, table),
		Reverse: fmt.Sprintf("DROP INDEX %q", name),
	}
}

func commentChange(table, column string, value any) *migrate.Change {
	return &migrate.Change{
		Cmd:     fmt.Sprintf("COMMENT ON COLUMN %q.%q IS %s", table, column, sqlString(fmt.Sprint(value))),
		Comment: fmt.Sprintf("comment column %q.%q", table, column),
		Reverse: fmt.Sprintf("COMMENT ON COLUMN %q.%q IS NULL", table, column),
	}
}

// sqlValue renders a schema default as a SQL literal.
func sqlValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return sqlString(x)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	}
	return sqlString(fmt.Sprint(v))
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = sqlString(v)
	}
	return strings.Join(quoted, ", ")
}
