package introspect

import (
	"strconv"
	"strings"

	"github.com/syssam/faber/schema"
)

// mapType translates a raw SQL column type into the schema tag set. The
// raw form may carry arguments ("varchar(100)", "decimal(10,2)",
// "enum('a','b')") and an unsigned flag; anything unrecognized passes
// through verbatim, mirroring the engine's own unknown-tag rule.
func mapType(raw string) (schema.Type, schema.Length, []string) {
	var (
		none schema.Length
		norm = strings.ToLower(strings.TrimSpace(raw))
		base = norm
		args string
		tail string
	)
	if i := strings.IndexByte(norm, '('); i >= 0 {
		if j := strings.LastIndexByte(norm, ')'); j > i {
			base, args, tail = strings.TrimSpace(norm[:i]), norm[i+1:j], strings.TrimSpace(norm[j+1:])
		}
	}
	unsigned := strings.HasSuffix(base, " unsigned") || strings.HasPrefix(tail, "unsigned")
	base = strings.TrimSuffix(base, " unsigned")

	// size maps an explicit length argument, dropping the dialect default
	// so imported documents stay as terse as hand-written ones.
	size := func(def int) schema.Length {
		n, err := strconv.Atoi(strings.TrimSpace(args))
		if err != nil || n == def {
			return none
		}
		return schema.Length{Precision: n}
	}

	switch base {
	case "varchar", "character varying", "nvarchar", "varchar2":
		return schema.TypeString, size(255), nil
	case "char", "character", "bpchar", "nchar":
		return schema.TypeChar, size(1), nil
	case "text", "tinytext", "clob":
		return schema.TypeText, none, nil
	case "mediumtext":
		return schema.TypeMediumText, none, nil
	case "longtext":
		return schema.TypeLongText, none, nil
	case "tinyint":
		if args == "1" {
			return schema.TypeBoolean, none, nil
		}
		return schema.TypeTinyInteger, none, nil
	case "smallint", "int2":
		return schema.TypeSmallInteger, none, nil
	case "int", "integer", "int4", "mediumint":
		if unsigned {
			return schema.TypeUnsignedInt, none, nil
		}
		return schema.TypeInteger, none, nil
	case "bigint", "int8":
		return schema.TypeBigInteger, none, nil
	case "bool", "boolean":
		return schema.TypeBoolean, none, nil
	case "date":
		return schema.TypeDate, none, nil
	case "datetime":
		return schema.TypeDateTime, none, nil
	case "time", "time without time zone", "time with time zone":
		return schema.TypeTime, none, nil
	case "timestamp", "timestamptz", "timestamp without time zone", "timestamp with time zone":
		return schema.TypeTimestamp, none, nil
	case "decimal", "numeric":
		if l, err := schema.ParseLength(args); err == nil {
			return schema.TypeDecimal, l, nil
		}
		return schema.TypeDecimal, none, nil
	case "real", "float4", "float":
		return schema.TypeFloat, none, nil
	case "double", "double precision", "float8":
		return schema.TypeDouble, none, nil
	case "json", "jsonb":
		return schema.TypeJSON, none, nil
	case "uuid", "uniqueidentifier":
		return schema.TypeUUID, none, nil
	case "binary", "varbinary", "blob", "tinyblob", "mediumblob", "longblob", "bytea":
		return schema.TypeBinary, none, nil
	case "enum":
		return schema.TypeEnum, none, enumValues(args)
	case "":
		return schema.TypeString, none, nil
	}
	return schema.Type(base), none, nil
}

// enumValues parses the quoted list inside enum(...), honoring the ''
// escape.
func enumValues(args string) []string {
	var (
		vals []string
		cur  strings.Builder
		in   bool
	)
	for i := 0; i < len(args); i++ {
		switch c := args[i]; {
		case c == '\'':
			if in && i+1 < len(args) && args[i+1] == '\'' {
				cur.WriteByte('\'')
				i++
				continue
			}
			if in {
				vals = append(vals, cur.String())
				cur.Reset()
			}
			in = !in
		case in:
			cur.WriteByte(c)
		}
	}
	return vals
}

// parseDefault converts a raw default expression into the scalar a
// document would declare, or nil when the default has no document form
// (NULL, function calls, sequence references).
func parseDefault(raw string, typ schema.Type) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	// Postgres suffixes casts onto literals: 'draft'::character varying.
	if i := strings.Index(s, "::"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	switch strings.ToUpper(s) {
	case "NULL", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "NOW()":
		return nil
	}
	if strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") && len(s) >= 2 {
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	} else if strings.ContainsRune(s, '(') {
		return nil
	}
	if typ == schema.TypeBoolean {
		switch strings.ToLower(s) {
		case "1", "true", "t", "on":
			return true
		case "0", "false", "f", "off":
			return false
		}
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
