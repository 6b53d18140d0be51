package load

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/syssam/faber/schema"
)

// The compact form is line-oriented. A table directive opens a table and may
// carry its columns inline:
//
//	table: users name|string, email|string|unique
//
// or spread them over the following lines, one comma-separated group per
// line, until the next directive:
//
//	table: posts
//	title|string|len(120)
//	user_id|integer|rel(users,id,cascade)
//	timestamps
//
// A column entry is |-separated: the first segment is the column name, the
// rest are tokens. Recognized tokens are len(N) or len(P,S), unique,
// nullable, index, default(V), and rel(table,column,onDelete); any other
// token is taken as the column's base type, last one wins. The bare entries timestamps,
// soft_deletes and views(...) configure the table instead of declaring a
// column. Standalone artifacts use the same shape:
//
//	model: Tag table(tags) fillable(name,slug)
//	controller: HealthController resource
//	view: dashboard for(admin)

// ParseCompact decodes the compact line-oriented form.
func ParseCompact(src []byte) (*schema.Document, error) {
	doc := &schema.Document{}
	var cur *schema.Table
	sc := bufio.NewScanner(bytes.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, rest, ok := cutDirective(text)
		switch {
		case ok && key == "table":
			name, entries := cutTableName(rest)
			cur = &schema.Table{Name: name}
			doc.Tables = append(doc.Tables, cur)
			applyEntries(cur, entries)
		case ok && key == "model":
			doc.Models = append(doc.Models, parseModel(rest))
		case ok && key == "controller":
			doc.Controllers = append(doc.Controllers, parseController(rest))
		case ok && key == "view":
			doc.Views = append(doc.Views, parseView(rest))
		case cur != nil:
			applyEntries(cur, text)
		default:
			return nil, &ParseError{Line: line, Cause: fmt.Errorf("column declaration %q before any table directive", text)}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{Cause: err}
	}
	return doc, nil
}

// cutDirective splits "key: rest" and reports whether key is one of the
// compact directives.
func cutDirective(text string) (key, rest string, ok bool) {
	head, tail, found := strings.Cut(text, ":")
	if !found {
		return "", "", false
	}
	switch k := strings.TrimSpace(head); k {
	case "table", "model", "controller", "view":
		return k, strings.TrimSpace(tail), true
	}
	return "", "", false
}

// cutTableName splits a table directive's payload into the table name and
// the inline column entries. A first token that already looks like a column
// entry means the name was omitted; the empty name is kept so normalization
// can report it against the right table.
func cutTableName(rest string) (name, entries string) {
	name, entries, _ = strings.Cut(rest, " ")
	if strings.ContainsAny(name, "|(") {
		return "", rest
	}
	return name, strings.TrimSpace(entries)
}

// applyEntries parses a comma-separated group of column entries into t.
// Commas inside parentheses do not split, so rel(users,id,cascade) stays
// one token.
func applyEntries(t *schema.Table, entries string) {
	for _, entry := range splitTop(entries, ',') {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		switch {
		case entry == "timestamps":
			t.Timestamps = true
		case entry == "soft_deletes", entry == "softdeletes":
			t.SoftDeletes = true
		case hasArg(entry, "views"):
			for _, v := range splitTop(arg(entry, "views"), ',') {
				if v = strings.TrimSpace(v); v != "" {
					t.Views = append(t.Views, v)
				}
			}
		default:
			t.Columns = append(t.Columns, parseColumn(entry))
		}
	}
}

// parseColumn decodes one |-separated column entry.
func parseColumn(entry string) *schema.Column {
	segs := strings.Split(entry, "|")
	col := &schema.Column{Name: strings.TrimSpace(segs[0])}
	for _, tok := range segs[1:] {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
		case tok == "unique":
			col.Unique = true
		case tok == "nullable":
			col.Nullable = true
		case tok == "index":
			col.Index = true
		case hasArg(tok, "default"):
			col.Default = strings.TrimSpace(arg(tok, "default"))
		case hasArg(tok, "len"):
			l, err := schema.ParseLength(arg(tok, "len"))
			if err != nil {
				// Unrecognized token, falls back to a base type.
				col.Type = schema.Type(tok)
				continue
			}
			col.Length = l
		case hasArg(tok, "rel"):
			col.Foreign = parseRel(arg(tok, "rel"))
		default:
			col.Type = schema.Type(tok)
		}
	}
	return col
}

// parseRel decodes the positional rel(table,column,onDelete) arguments.
// Trailing positions may be omitted.
func parseRel(args string) *schema.ForeignKey {
	fk := &schema.ForeignKey{}
	for i, a := range splitTop(args, ',') {
		a = strings.TrimSpace(a)
		switch i {
		case 0:
			fk.Table = a
		case 1:
			fk.Column = a
		case 2:
			fk.OnDelete = a
		}
	}
	return fk
}

// parseModel decodes "Name table(x) fillable(a,b)".
func parseModel(rest string) *schema.Model {
	m := &schema.Model{}
	for i, tok := range splitTop(rest, ' ') {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
		case i == 0:
			m.Name = tok
		case hasArg(tok, "table"):
			m.Table = strings.TrimSpace(arg(tok, "table"))
		case hasArg(tok, "fillable"):
			for _, f := range splitTop(arg(tok, "fillable"), ',') {
				if f = strings.TrimSpace(f); f != "" {
					m.Fillable = append(m.Fillable, f)
				}
			}
		}
	}
	return m
}

// parseController decodes "Name model(X) resource".
func parseController(rest string) *schema.Controller {
	c := &schema.Controller{}
	for i, tok := range splitTop(rest, ' ') {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
		case i == 0:
			c.Name = tok
		case tok == "resource":
			c.Resource = true
		case hasArg(tok, "model"):
			c.Model = strings.TrimSpace(arg(tok, "model"))
		}
	}
	return c
}

// parseView decodes "name for(dir)".
func parseView(rest string) *schema.View {
	v := &schema.View{}
	for i, tok := range splitTop(rest, ' ') {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
		case i == 0:
			v.Name = tok
		case hasArg(tok, "for"):
			v.For = strings.TrimSpace(arg(tok, "for"))
		}
	}
	return v
}

// splitTop splits s on sep outside of parentheses.
func splitTop(s string, sep byte) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// hasArg reports whether tok has the shape name(...).
func hasArg(tok, name string) bool {
	return strings.HasPrefix(tok, name+"(") && strings.HasSuffix(tok, ")")
}

// arg returns the text between the parentheses of a name(...) token.
func arg(tok, name string) string {
	return tok[len(name)+1 : len(tok)-1]
}
