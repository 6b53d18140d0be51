package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table declares one database table and the artifacts derived from it.
// Views names the presentation templates to render for the table; when
// empty, no view artifacts are generated.
type Table struct {
	Name        string    `yaml:"name"`
	Columns     []*Column `yaml:"columns,omitempty"`
	Timestamps  bool      `yaml:"timestamps,omitempty"`
	SoftDeletes bool      `yaml:"soft_deletes,omitempty"`
	Views       []string  `yaml:"views,omitempty"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Column declares one table column. Values is consulted only for enum
// columns. Default holds the raw scalar from the source document; dialects
// decide how to render it.
type Column struct {
	Name     string      `yaml:"name"`
	Type     Type        `yaml:"type"`
	Length   Length      `yaml:"length,omitempty"`
	Scale    int         `yaml:"scale,omitempty"`
	Values   []string    `yaml:"values,omitempty"`
	Nullable bool        `yaml:"nullable,omitempty"`
	Unique   bool        `yaml:"unique,omitempty"`
	Index    bool        `yaml:"index,omitempty"`
	Default  any         `yaml:"default,omitempty"`
	Comment  string      `yaml:"comment,omitempty"`
	Foreign  *ForeignKey `yaml:"foreign,omitempty"`
}

// ForeignKey is a by-name reference to another table. The referenced table
// does not need to exist in the same document; resolution happens lazily at
// emission time. Column defaults to "id". Empty actions are omitted from
// emission, deferring to the target framework's default.
type ForeignKey struct {
	Table    string `yaml:"table"`
	Column   string `yaml:"column,omitempty"`
	OnDelete string `yaml:"on_delete,omitempty"`
	OnUpdate string `yaml:"on_update,omitempty"`
}

// Length is a column size. Plain integers decode as a precision; the
// "P,S" shorthand used by fractional types decodes into both parts.
type Length struct {
	Precision int
	Scale     int
}

// Zero reports whether no size was declared.
func (l Length) Zero() bool { return l.Precision == 0 && l.Scale == 0 }

// String returns the canonical source form.
func (l Length) String() string {
	if l.Scale != 0 {
		return fmt.Sprintf("%d,%d", l.Precision, l.Scale)
	}
	return strconv.Itoa(l.Precision)
}

// ParseLength parses "N" or "P,S" into a Length.
func ParseLength(s string) (Length, error) {
	var l Length
	head, tail, ok := strings.Cut(s, ",")
	p, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return l, fmt.Errorf("schema: invalid length %q: %w", s, err)
	}
	l.Precision = p
	if ok {
		sc, err := strconv.Atoi(strings.TrimSpace(tail))
		if err != nil {
			return l, fmt.Errorf("schema: invalid length scale %q: %w", s, err)
		}
		l.Scale = sc
	}
	return l, nil
}

// UnmarshalYAML accepts either an integer or the "P,S" string form.
func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	var n int
	if err := node.Decode(&n); err == nil {
		l.Precision, l.Scale = n, 0
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("schema: length must be an integer or \"P,S\": %w", err)
	}
	parsed, err := ParseLength(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML emits the most compact source form.
func (l Length) MarshalYAML() (any, error) {
	if l.Zero() {
		return nil, nil
	}
	if l.Scale != 0 {
		return l.String(), nil
	}
	return l.Precision, nil
}
