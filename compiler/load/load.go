// Package load parses schema documents into the in-memory form consumed by
// the generation engine. Two source forms are accepted: a YAML document with
// top-level tables/models/controllers/views sequences, and a compact
// line-oriented form for quick one-off scaffolding. Both normalize to the
// same schema.Document.
package load

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syssam/faber/schema"
)

// ParseError is the only fatal outcome of loading: the source cannot be
// understood as a schema document at all. Everything softer (a table with a
// missing name, a malformed column) is carried inside the document and
// surfaces as a per-table failure during generation.
type ParseError struct {
	Path  string // source path, empty for in-memory documents
	Line  int    // 1-based source line, 0 when unknown
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("faber: parse error")
	if e.Path != "" {
		b.WriteString(" in ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// IsParseError reports whether the error is a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// Parse decodes src into a schema document, sniffing the source form. A
// document whose first significant line is a compact directive (table:,
// model:, controller:, view:) is parsed as the compact form; anything else
// is parsed as YAML.
func Parse(src []byte) (*schema.Document, error) {
	if isCompact(src) {
		return ParseCompact(src)
	}
	return ParseYAML(src)
}

// ParseFile reads and parses the document at path.
func ParseFile(path string) (*schema.Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}
	doc, err := Parse(src)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// ParseYAML decodes a YAML schema document. Unknown fields are rejected so
// a typo in a document fails loudly instead of silently dropping a column
// property. An empty source decodes to an empty document.
func ParseYAML(src []byte) (*schema.Document, error) {
	doc := &schema.Document{}
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, &ParseError{Cause: err}
	}
	return doc, nil
}

// isCompact reports whether the first significant line of src is a compact
// directive. Blank lines and #-comments are skipped; they are legal in both
// forms.
func isCompact(src []byte) bool {
	sc := bufio.NewScanner(bytes.NewReader(src))
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		_, _, ok := cutDirective(text)
		return ok
	}
	return false
}
