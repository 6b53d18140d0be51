// Package dialect names the bundled target stacks and holds the factory
// registry that resolves a dialect name to a configured emitter.
//
// # Bundled Dialects
//
// Three stacks ship with faber:
//
//   - Laravel: PHP migrations, Eloquent models, resource controllers,
//     blade views and factories (the default)
//   - Golang: Go model structs, chi-style handlers, SQL migration pairs
//     with an atlas.sum index
//   - GraphQL: SDL type definitions, model surface only
//
// Each is identified by a constant string:
//
//	dialect.Laravel = "laravel"
//	dialect.Golang  = "golang"
//	dialect.GraphQL = "graphql"
//
// # Registration
//
// Dialect packages register a Factory from init, the same way database
// drivers do, so importing a package is what enables its stack:
//
//	import (
//	    "github.com/syssam/faber/dialect"
//	    _ "github.com/syssam/faber/dialect/laravel"
//	)
//
//	f, err := dialect.Lookup(dialect.Laravel)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := f(dialect.Options{})
//
// Options carries the stack-independent knobs: the module path generated
// imports are rooted at and an optional stub override directory. A stack
// ignores the fields it has no use for.
//
// # Capability Surface
//
// A factory returns a gen.MinimalDialect; the build engine discovers
// anything beyond the model surface by type assertion and skips artifact
// kinds a dialect does not produce. The laravel and golang packages
// implement the full gen.Dialect surface, graphql deliberately only the
// minimum.
package dialect
