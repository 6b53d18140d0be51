package laravel

import (
	"fmt"
	"strings"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/schema"
)

// migrationLines renders a table's emission plan as Blueprint calls, one
// statement per line, in plan order.
func migrationLines(p *gen.Plan) []string {
	lines := make([]string, 0, len(p.Steps))
	for _, s := range p.Steps {
		switch s.Op {
		case gen.OpIncrements:
			if s.Column == "id" {
				lines = append(lines, "$table->id();")
			} else {
				lines = append(lines, fmt.Sprintf("$table->id('%s');", s.Column))
			}
		case gen.OpTimestamps:
			lines = append(lines, "$table->timestamps();")
		case gen.OpSoftDeletes:
			lines = append(lines, "$table->softDeletes();")
		case gen.OpForeign:
			lines = append(lines, foreignLine(s))
		case gen.OpEnum:
			call := fmt.Sprintf("$table->enum('%s', [%s])", s.Column, phpList(s.Values))
			lines = append(lines, chain(call, s.Modifiers))
		case gen.OpDecimal:
			lines = append(lines, chain(decimalCall(s), s.Modifiers))
		default:
			lines = append(lines, chain(columnCall(s), s.Modifiers))
		}
	}
	return lines
}

// columnCall renders the base column declaration. The type tag doubles as
// the Blueprint method name, which is also how tags outside the known set
// reach the migration verbatim.
func columnCall(s *gen.Step) string {
	if s.Length > 0 && s.Type.Sized() {
		return fmt.Sprintf("$table->%s('%s', %d)", s.Type, s.Column, s.Length)
	}
	return fmt.Sprintf("$table->%s('%s')", s.Type, s.Column)
}

// decimalCall renders a fractional column. An unspecified precision or
// scale is left to Blueprint's own defaults; a scale without a precision
// borrows Blueprint's default precision of 8, since the argument list is
// positional.
func decimalCall(s *gen.Step) string {
	switch {
	case s.Length > 0 && s.Scale > 0:
		return fmt.Sprintf("$table->%s('%s', %d, %d)", s.Type, s.Column, s.Length, s.Scale)
	case s.Length > 0:
		return fmt.Sprintf("$table->%s('%s', %d)", s.Type, s.Column, s.Length)
	case s.Scale > 0:
		return fmt.Sprintf("$table->%s('%s', 8, %d)", s.Type, s.Column, s.Scale)
	}
	return fmt.Sprintf("$table->%s('%s')", s.Type, s.Column)
}

func foreignLine(s *gen.Step) string {
	f := s.Foreign
	var b strings.Builder
	fmt.Fprintf(&b, "$table->foreign('%s')->references('%s')->on('%s')", s.Column, f.Column, f.Table)
	if f.OnDelete != "" {
		fmt.Fprintf(&b, "->onDelete('%s')", f.OnDelete)
	}
	if f.OnUpdate != "" {
		fmt.Fprintf(&b, "->onUpdate('%s')", f.OnUpdate)
	}
	b.WriteString(";")
	return b.String()
}

// chain appends the modifier calls in their fixed plan order and closes
// the statement.
func chain(base string, mods []gen.Mod) string {
	var b strings.Builder
	b.WriteString(base)
	for _, m := range mods {
		switch m.Name {
		case gen.ModNullable:
			b.WriteString("->nullable()")
		case gen.ModUnique:
			b.WriteString("->unique()")
		case gen.ModIndex:
			b.WriteString("->index()")
		case gen.ModDefault:
			b.WriteString("->default(" + phpValue(m.Value) + ")")
		case gen.ModComment:
			b.WriteString("->comment(" + phpString(fmt.Sprint(m.Value)) + ")")
		}
	}
	b.WriteString(";")
	return b.String()
}

// phpValue renders a schema default as a PHP literal. Scalars keep their
// type; everything else degrades to a quoted string.
func phpValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return phpString(x)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x)
	}
	return phpString(fmt.Sprint(v))
}

func phpString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}

func phpList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = phpString(v)
	}
	return strings.Join(quoted, ", ")
}

// Rule is one entry of a controller's validate call.
type Rule struct {
	Column string
	Rule   string
}

// Rules derives request validation rules for the table's fillable columns.
// Every column gets a presence rule; the rest follows from its type and
// constraints.
func Rules(t *gen.Table) []Rule {
	out := make([]Rule, 0, len(t.Fillable))
	for _, name := range t.Fillable {
		c := t.Column(name)
		if c == nil {
			out = append(out, Rule{Column: name, Rule: "required"})
			continue
		}
		out = append(out, Rule{Column: name, Rule: strings.Join(ruleSet(t, c), "|")})
	}
	return out
}

func ruleSet(t *gen.Table, c *schema.Column) []string {
	rules := []string{"required"}
	if c.Nullable {
		rules[0] = "nullable"
	}
	switch {
	case c.Name == "email" || strings.HasSuffix(c.Name, "_email"):
		rules = append(rules, "email")
	case c.Type == schema.TypeEnum && len(c.Values) > 0:
		rules = append(rules, "in:"+strings.Join(c.Values, ","))
	case c.Type.Sized() || c.Type == "":
		max := c.Length.Precision
		if max == 0 {
			max = 255
		}
		rules = append(rules, "string", fmt.Sprintf("max:%d", max))
	case c.Type == schema.TypeText, c.Type == schema.TypeMediumText, c.Type == schema.TypeLongText:
		rules = append(rules, "string")
	case c.Type.Fractional():
		rules = append(rules, "numeric")
	case c.Type.Numeric():
		rules = append(rules, "integer")
	case c.Type == schema.TypeBoolean:
		rules = append(rules, "boolean")
	case c.Type.Temporal():
		rules = append(rules, "date")
	case c.Type == schema.TypeJSON:
		rules = append(rules, "array")
	case c.Type == schema.TypeUUID:
		rules = append(rules, "uuid")
	}
	if c.Unique {
		rules = append(rules, "unique:"+t.Name+","+c.Name)
	}
	if f := c.Foreign; f != nil {
		rules = append(rules, "exists:"+f.Table+","+f.Column)
	}
	return rules
}

// Def is one attribute line of a factory definition.
type Def struct {
	Column string
	Value  string
}

// Defs derives a faker expression per fillable column. Foreign keys chain
// to the related model's factory; otherwise the column name wins over its
// type, so an email column fakes an address however it is stored.
func Defs(t *gen.Table) []Def {
	out := make([]Def, 0, len(t.Fillable))
	for _, name := range t.Fillable {
		out = append(out, Def{Column: name, Value: fakerFor(t, name)})
	}
	return out
}

func fakerFor(t *gen.Table, name string) string {
	for _, r := range t.BelongsTo {
		if r.Column == name {
			return fmt.Sprintf("\\App\\Models\\%s::factory()", r.Model)
		}
	}
	switch {
	case name == "email" || strings.HasSuffix(name, "_email"):
		return "fake()->unique()->safeEmail()"
	case name == "name" || strings.HasSuffix(name, "_name"):
		return "fake()->name()"
	case name == "title":
		return "fake()->sentence(3)"
	case name == "slug":
		return "fake()->unique()->slug()"
	case name == "password":
		return "bcrypt('password')"
	case name == "phone" || strings.HasSuffix(name, "_phone"):
		return "fake()->phoneNumber()"
	case name == "address":
		return "fake()->address()"
	case name == "url" || name == "website":
		return "fake()->url()"
	case name == "description", name == "body", name == "content", name == "summary":
		return "fake()->paragraph()"
	}
	c := t.Column(name)
	if c == nil {
		return "fake()->word()"
	}
	switch {
	case c.Type == schema.TypeEnum && len(c.Values) > 0:
		return "fake()->randomElement([" + phpList(c.Values) + "])"
	case c.Type == schema.TypeBoolean:
		return "fake()->boolean()"
	case c.Type.Fractional():
		return "fake()->randomFloat(2, 1, 1000)"
	case c.Type.Numeric():
		return "fake()->numberBetween(1, 1000)"
	case c.Type == schema.TypeDate:
		return "fake()->date()"
	case c.Type == schema.TypeTime:
		return "fake()->time()"
	case c.Type.Temporal():
		return "fake()->dateTime()"
	case c.Type == schema.TypeUUID:
		return "fake()->uuid()"
	case c.Type == schema.TypeJSON:
		return "[]"
	case c.Type == schema.TypeText, c.Type == schema.TypeMediumText, c.Type == schema.TypeLongText:
		return "fake()->paragraph()"
	}
	return "fake()->word()"
}
