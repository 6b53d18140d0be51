package gen

import (
	"fmt"

	"github.com/syssam/faber/schema"
)

// Op identifies one instruction kind in a table's emission plan.
type Op string

const (
	// OpIncrements declares the auto-increment primary key.
	OpIncrements Op = "increments"
	// OpColumn declares a generic column from its base type.
	OpColumn Op = "column"
	// OpEnum declares an enum column with its allowed values.
	OpEnum Op = "enum"
	// OpDecimal declares a fractional column with precision and scale.
	OpDecimal Op = "decimal"
	// OpTimestamps declares the created_at/updated_at pair.
	OpTimestamps Op = "timestamps"
	// OpSoftDeletes declares the deleted_at column.
	OpSoftDeletes Op = "softDeletes"
	// OpForeign declares a foreign-key constraint.
	OpForeign Op = "foreign"
)

// Modifier identifies a chainable column modifier. Modifiers are emitted
// in the fixed order nullable, unique, index, default, comment, because
// dialects with chainable syntax are position-sensitive.
type Modifier string

const (
	ModNullable Modifier = "nullable"
	ModUnique   Modifier = "unique"
	ModIndex    Modifier = "index"
	ModDefault  Modifier = "default"
	ModComment  Modifier = "comment"
)

// Mod is one modifier application. Value carries the default value or
// comment text and is nil for the flag modifiers.
type Mod struct {
	Name  Modifier
	Value any
}

// Step is one instruction of an emission plan. Which fields are meaningful
// depends on Op: column steps carry Column/Type/Length, enum steps carry
// Values, decimal steps carry Length (precision) and Scale, and foreign
// steps carry the resolved constraint. A zero Length or Scale means
// unspecified; dialects fall back to their own defaults rather than
// emitting a guessed value.
type Step struct {
	Op        Op
	Column    string
	Type      schema.Type
	Length    int
	Scale     int
	Values    []string
	Modifiers []Mod
	Foreign   *schema.ForeignKey
}

// Plan is the ordered emission plan for one table's persistence artifact:
// column steps in declaration order, then the timestamps and soft-delete
// directives, then the foreign-key constraints.
type Plan struct {
	Table string
	Steps []*Step
}

// Step returns the first step for the named column, or nil.
func (p *Plan) Step(column string) *Step {
	for _, s := range p.Steps {
		if s.Column == column && s.Op != OpForeign {
			return s
		}
	}
	return nil
}

// ForeignKeys returns the foreign-key steps of the plan.
func (p *Plan) ForeignKeys() []*Step {
	var out []*Step
	for _, s := range p.Steps {
		if s.Op == OpForeign {
			out = append(out, s)
		}
	}
	return out
}

// CompileColumns compiles the table's columns into an emission plan. The
// compiler never fails: malformed columns are omitted and reported through
// the returned warnings, and the plan is always usable as-is.
func CompileColumns(t *Table) (*Plan, []string) {
	plan := &Plan{Table: t.Name}
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	var foreign []*Step
	for _, c := range t.Columns {
		// The timestamps directive already declares this pair.
		if t.Timestamps && (c.Name == "created_at" || c.Name == "updated_at") {
			warnf("column %q superseded by the timestamps directive", c.Name)
			continue
		}
		var step *Step
		switch {
		case c.Type.Identity():
			if c.Type != schema.TypeID {
				warnf("identity type %q on column %q ignored; declare the column type as %q", c.Type, c.Name, schema.TypeID)
				continue
			}
			plan.Steps = append(plan.Steps, &Step{Op: OpIncrements, Column: c.Name})
			continue
		case c.Type == schema.TypeEnum:
			if len(c.Values) == 0 {
				warnf("enum column %q has no values; column omitted", c.Name)
				continue
			}
			step = &Step{Op: OpEnum, Column: c.Name, Values: c.Values}
		case c.Type.Fractional():
			step = &Step{
				Op:     OpDecimal,
				Column: c.Name,
				Type:   columnType(c),
				Length: c.Length.Precision,
				Scale:  fractionalScale(c),
			}
		default:
			step = &Step{
				Op:     OpColumn,
				Column: c.Name,
				Type:   columnType(c),
				Length: c.Length.Precision,
			}
		}
		step.Modifiers = modifiers(c)
		plan.Steps = append(plan.Steps, step)
		if c.Foreign != nil {
			foreign = append(foreign, &Step{Op: OpForeign, Column: c.Name, Foreign: c.Foreign})
		}
	}
	if t.Timestamps {
		plan.Steps = append(plan.Steps, &Step{Op: OpTimestamps})
	}
	if t.SoftDeletes {
		plan.Steps = append(plan.Steps, &Step{Op: OpSoftDeletes})
	}
	plan.Steps = append(plan.Steps, foreign...)
	return plan, warnings
}

// columnType returns the column's base type, defaulting to string. Unknown
// types pass through untouched so dialects can apply their own fallback.
func columnType(c *schema.Column) schema.Type {
	if c.Type == "" {
		return schema.TypeString
	}
	return c.Type
}

// fractionalScale resolves the scale of a decimal/float column. The "P,S"
// length form wins over the separate scale field when both are present.
func fractionalScale(c *schema.Column) int {
	if c.Length.Scale != 0 {
		return c.Length.Scale
	}
	return c.Scale
}

func modifiers(c *schema.Column) []Mod {
	var mods []Mod
	if c.Nullable {
		mods = append(mods, Mod{Name: ModNullable})
	}
	if c.Unique {
		mods = append(mods, Mod{Name: ModUnique})
	}
	if c.Index {
		mods = append(mods, Mod{Name: ModIndex})
	}
	if c.Default != nil {
		mods = append(mods, Mod{Name: ModDefault, Value: c.Default})
	}
	if c.Comment != "" {
		mods = append(mods, Mod{Name: ModComment, Value: c.Comment})
	}
	return mods
}
