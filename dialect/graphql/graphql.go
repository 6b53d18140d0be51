// Package graphql emits GraphQL SDL type definitions, one file per table.
// It implements only the model surface of the generation interface, so
// builds with this dialect produce a schema fragment set the application
// merges into its server schema; migrations, controllers, views and routes
// are skipped entirely.
package graphql

import (
	"fmt"
	"path"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/dialect"
	"github.com/syssam/faber/schema"
)

func init() {
	dialect.Register(dialect.GraphQL, func(dialect.Options) gen.MinimalDialect {
		return New()
	})
}

const schemaDir = "graph"

// GraphQL renders SDL type definitions.
type GraphQL struct{}

// New returns a GraphQL dialect.
func New() *GraphQL { return &GraphQL{} }

// Name implements gen.MinimalDialect.
func (*GraphQL) Name() string { return "graphql" }

// GenModel renders the SDL type for t and parses it back before emission,
// so a column name SDL cannot express never reaches the sink. Temporal,
// JSON and UUID columns reference the Time, JSON and UUID scalars the
// application's base schema is expected to declare.
func (*GraphQL) GenModel(t *gen.Table) (*gen.Artifact, error) {
	var b strings.Builder
	for _, c := range t.Columns {
		if c.Type == schema.TypeEnum && len(c.Values) > 0 {
			writeEnum(&b, enumName(t, c), c.Values)
		}
	}
	fmt.Fprintf(&b, "\"\"\"%s is the %s data model.\"\"\"\n", t.Naming.Model, t.Name)
	fmt.Fprintf(&b, "type %s {\n", t.Naming.Model)
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "  %s: %s\n", gen.Camel(c.Name), fieldType(t, c))
	}
	for _, r := range t.BelongsTo {
		bang := "!"
		if c := t.Column(r.Column); c != nil && c.Nullable {
			bang = ""
		}
		fmt.Fprintf(&b, "  %s: %s%s\n", r.Method, r.Model, bang)
	}
	for _, r := range t.HasMany {
		fmt.Fprintf(&b, "  %s: [%s!]!\n", r.Method, r.Model)
	}
	if t.Timestamps {
		b.WriteString("  createdAt: Time!\n  updatedAt: Time!\n")
	}
	if t.SoftDeletes {
		b.WriteString("  deletedAt: Time\n")
	}
	b.WriteString("}\n")

	p := path.Join(schemaDir, gen.Snake(t.Naming.Model)+".graphqls")
	sdl := b.String()
	if _, err := parser.ParseSchema(&ast.Source{Name: p, Input: sdl}); err != nil {
		return nil, gen.NewEmitError(t.Name, gen.KindModel, "invalid SDL", err)
	}
	return &gen.Artifact{Kind: gen.KindModel, Path: p, Body: []byte(sdl)}, nil
}

func fieldType(t *gen.Table, c *schema.Column) string {
	base := scalar(t, c)
	if c.Nullable {
		return base
	}
	return base + "!"
}

func scalar(t *gen.Table, c *schema.Column) string {
	switch {
	case c.Type.Identity():
		return "ID"
	case c.Type == schema.TypeBoolean:
		return "Boolean"
	case c.Type.Numeric():
		return "Int"
	case c.Type.Fractional():
		return "Float"
	case c.Type.Temporal():
		return "Time"
	case c.Type == schema.TypeJSON:
		return "JSON"
	case c.Type == schema.TypeUUID:
		return "UUID"
	case c.Type == schema.TypeEnum && len(c.Values) > 0:
		return enumName(t, c)
	}
	return "String"
}

func enumName(t *gen.Table, c *schema.Column) string {
	return t.Naming.Model + gen.Pascal(c.Name)
}

func writeEnum(b *strings.Builder, name string, values []string) {
	fmt.Fprintf(b, "enum %s {\n", name)
	for _, v := range values {
		fmt.Fprintf(b, "  %s\n", enumValue(v))
	}
	b.WriteString("}\n\n")
}

// enumValue maps a declared value onto an SDL enum value name: upper-cased
// with unsupported characters replaced by underscores.
func enumValue(v string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(v) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := b.String()
	if s == "" || s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}
