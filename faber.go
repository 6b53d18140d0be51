package faber

import (
	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/compiler/load"
	"github.com/syssam/faber/schema"
)

// Version is stamped by release builds; the default marks a source
// build.
var Version = "devel"

// Generate loads the schema document at source and runs one build with
// the given options. Source may be a YAML document or the compact form;
// the loader sniffs which. Per-table failures do not surface here: they
// are aggregated on the report, and NewBuildError turns a failed report
// into an error when callers want one.
func Generate(source string, opts ...gen.Option) (*gen.Report, error) {
	doc, err := load.ParseFile(source)
	if err != nil {
		return nil, maskSource(source, err)
	}
	return gen.Generate(doc, opts...)
}

// GenerateBytes parses an in-memory schema document and runs one build.
func GenerateBytes(src []byte, opts ...gen.Option) (*gen.Report, error) {
	doc, err := load.Parse(src)
	if err != nil {
		return nil, err
	}
	return gen.Generate(doc, opts...)
}

// GenerateDocument runs one build over an already-parsed document.
func GenerateDocument(doc *schema.Document, opts ...gen.Option) (*gen.Report, error) {
	return gen.Generate(doc, opts...)
}
