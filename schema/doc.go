// Package schema defines the declarative schema document consumed by the
// faber generation engine.
//
// A Document describes database tables (columns, types, modifiers, foreign
// keys) together with optional standalone model, controller, and view
// declarations that are not tied to a table. Documents are usually decoded
// from YAML or from the compact line form by the compiler/load package,
// but they can also be constructed programmatically or recovered from a
// live database by the introspect package.
//
// # Shape
//
// The YAML form mirrors the struct tags in this package:
//
//	tables:
//	  - name: posts
//	    timestamps: true
//	    columns:
//	      - name: title
//	        type: string
//	        length: 120
//	      - name: price
//	        type: decimal
//	        length: "8,2"
//	      - name: user_id
//	        type: integer
//	        foreign:
//	          table: users
//	          on_delete: cascade
//	controllers:
//	  - name: ReportController
//	    resource: false
//
// # Immutability
//
// A Document is treated as immutable once parsed: the engine derives its
// own working representation (compiler/gen.Graph) and never writes back
// into these structs, so one Document can safely feed multiple runs.
//
// # Open column types
//
// Column types are open: a tag this package does not recognize is carried
// verbatim to the emitting dialect rather than rejected. The Type
// predicates (Identity, Fractional, Temporal, Known) only answer for the
// known tag set.
package schema
