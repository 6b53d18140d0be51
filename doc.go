// Package faber generates application scaffolding from declarative
// table schemas.
//
// A schema document names tables, their columns, and their foreign keys.
// One run turns every table into a fixed set of artifacts for the chosen
// target stack: a migration, a model, a controller, views, a factory,
// and an entry in a shared route registry that is merged, never
// rewritten. Runs are deterministic: the same document and options
// produce the same artifacts in the same order.
//
// # Quick Start
//
//	report, err := faber.Generate("schema.yaml",
//		gen.WithDialect(laravel.New()),
//		gen.WithSink(gen.NewDirSink("out")),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if report.Failed() {
//		log.Fatal(faber.NewBuildError(report))
//	}
//
// # Package Map
//
// The root package is a thin facade; the work happens below it:
//
//   - schema: the declarative document model
//   - compiler/load: YAML and compact-form parsing
//   - compiler/gen: the generation engine
//   - dialect: target-stack registry (laravel, golang, graphql)
//   - introspect: live database to schema document
//   - prompt: operator prompt providers
//   - watch: rebuild-on-save loop
//
// The faber command wraps all of this for the terminal; see cmd/faber.
package faber
