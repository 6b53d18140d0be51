package gen

import (
	"time"

	"github.com/syssam/faber/schema"
)

// =============================================================================
// Interface Segregation: Split Dialect into smaller, focused interfaces
// =============================================================================

// ModelGenerator generates the model artifact for a table. It is the one
// capability every dialect must provide.
type ModelGenerator interface {
	// GenModel generates the model file for t.
	GenModel(t *Table) (*Artifact, error)
}

// MigrationGenerator generates timestamped schema migrations. The at value
// is assigned by the sequencer, one second apart per table, so that files
// sort in processing order. Dialects with paired up/down files return one
// artifact per file.
type MigrationGenerator interface {
	// MigrationsDir returns the directory migrations are written to,
	// relative to the project root.
	MigrationsDir() string
	// GenMigration generates the migration artifacts for t.
	GenMigration(t *Table, at time.Time) ([]*Artifact, error)
	// IsMigrationFor reports whether an existing file name is a create
	// migration for t, regardless of its ordering key. A match makes the
	// builder regenerate in place instead of adding a second migration
	// for the same table.
	IsMigrationFor(name string, t *Table) bool
	// MigrationTime extracts the ordering key from an existing file name.
	MigrationTime(name string) (time.Time, bool)
}

// ControllerGenerator generates the request handler artifact. The api flag
// selects the JSON resource variant over the HTML one.
type ControllerGenerator interface {
	// GenController generates the controller file for t.
	GenController(t *Table, api bool) (*Artifact, error)
}

// ViewGenerator generates template artifacts, one per view slot requested
// by the table.
type ViewGenerator interface {
	// GenViews generates the view files for t.
	GenViews(t *Table) ([]*Artifact, error)
}

// FactoryGenerator generates test data factory artifacts. Dialects without
// a factory story simply do not implement it.
type FactoryGenerator interface {
	// GenFactory generates the factory file for t.
	GenFactory(t *Table) (*Artifact, error)
}

// RegistrySpec locates a shared route registry file and its marker block.
type RegistrySpec struct {
	// Path of the registry file relative to the project root.
	Path string
	// Begin and End are the exact marker lines delimiting the managed
	// block. Content outside the pair is never touched.
	Begin, End string
	// Skeleton is the full content used when the file does not exist yet.
	// It must already contain the marker pair.
	Skeleton []byte
}

// RegistryGenerator contributes route lines to a shared registry file that
// is merged, not overwritten, across runs.
type RegistryGenerator interface {
	// Registry describes the registry targeted for the given mode.
	Registry(api bool) RegistrySpec
	// GenRoute returns the single registration line for t.
	GenRoute(t *Table, api bool) string
}

// Finalizer is an optional dialect capability invoked exactly once at the
// end of a build, after every artifact write. Root is the scope-prefixed
// project root inside the sink, empty without a scope. The golang dialect
// uses it to refresh the checksum index over its migration directory.
type Finalizer interface {
	Finalize(sink Sink, root string) error
}

// StandaloneGenerator renders the document declarations that are not bound
// to a table. The builder synthesizes a Table carrying the derived naming,
// so dialects can reuse their table rendering; the extra parameters carry
// what a bare Table cannot.
type StandaloneGenerator interface {
	// GenStandaloneModel generates a model declared without a table.
	GenStandaloneModel(t *Table, m *schema.Model) (*Artifact, error)
	// GenStandaloneController generates a declared controller. Only
	// resource controllers carry the full action set.
	GenStandaloneController(t *Table, c *schema.Controller, api bool) (*Artifact, error)
	// GenStandaloneView generates a view declared without a table.
	GenStandaloneView(v *schema.View) (*Artifact, error)
}

// MinimalDialect is the minimum interface a dialect must implement.
// The builder discovers every further capability by type assertion and
// quietly skips artifact kinds the dialect does not produce.
type MinimalDialect interface {
	// Name returns the dialect name (e.g. "laravel", "golang").
	Name() string
	ModelGenerator
}

// =============================================================================
// Full Dialect interface
// =============================================================================

// Dialect is the complete generation surface: one migration, one model,
// one controller, and the requested views per table, plus route lines for
// the shared registry. The bundled laravel and golang dialects implement
// it in full.
type Dialect interface {
	MinimalDialect
	MigrationGenerator
	ControllerGenerator
	ViewGenerator
	RegistryGenerator
}
