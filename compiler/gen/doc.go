// Package gen is the faber generation engine.
//
// It turns a parsed schema document into a coherent set of per-table
// artifacts (migration, model, controller, views) plus one shared route
// registry that stays consistent across repeated runs against an evolving
// schema and a partially generated target tree.
//
// # Architecture
//
// The generation pipeline follows this flow:
//
//	Schema Document (schema.Document)
//	        ↓
//	   Graph (naming derived, columns deduplicated, foreign keys resolved)
//	        ↓
//	   Plan (ordered emission instructions per table)
//	        ↓
//	   Dialect (laravel, golang, ... renders artifacts)
//	        ↓
//	   ConflictResolver → Sink (files written, skipped, or prompted)
//
// # Key Types
//
// The package provides several key types:
//
//   - Graph: compiled tables with naming, relations and plans
//   - Table: one table's IR, shared by every artifact emitter
//   - Naming: the derived name set all artifacts must agree on
//   - Plan: ordered, type-tagged emission instructions for one table
//   - Builder: drives one run and owns all run-scoped mutable state
//   - Report: the run summary (tables, written, skipped, warnings, failures)
//
// # Interface Hierarchy
//
// The dialect interfaces follow the Interface Segregation Principle:
//
//	MinimalDialect (basic dialect support)
//	├── Name() string
//	└── ModelGenerator (the one mandatory artifact)
//
//	Dialect (full interface, extends MinimalDialect)
//	├── MigrationGenerator (timestamped persistence artifacts)
//	├── ControllerGenerator (request handler artifacts)
//	├── ViewGenerator (template artifacts)
//	└── RegistryGenerator (shared route registry)
//
// FactoryGenerator and StandaloneGenerator are optional capabilities
// discovered by type assertion; a dialect that lacks one simply produces
// no artifacts of that kind.
//
// # Error Handling
//
// The package uses structured error types for better error handling:
//
//   - SchemaError: table or column declaration errors
//   - ConfigError: configuration errors
//   - StubError: missing artifact templates
//   - EmitError: artifact rendering failures
//   - WriteError: storage sink failures
//
// Failures never abort a run: a SchemaError or EmitError abandons the
// affected table, a WriteError abandons the affected artifact, and the
// builder aggregates everything on the Report.
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	report, err := gen.Generate(doc,
//	    gen.WithDialect(laravel.New()),
//	    gen.WithSink(gen.NewDirSink(".")),
//	    gen.WithPrompter(prompt.NewTerminal(os.Stdin, os.Stdout)),
//	)
//
// Interactive conflict resolution, the reprocess confirmation, and the
// registry update decision all flow through the configured Prompter, so
// the whole engine runs against a scripted provider in tests.
package gen
