package gen

// Kind identifies one generated output unit.
type Kind string

const (
	KindMigration  Kind = "migration"
	KindModel      Kind = "model"
	KindController Kind = "controller"
	KindView       Kind = "view"
	KindFactory    Kind = "factory"
	KindRegistry   Kind = "registry"
)

// Artifact is one rendered output file. The engine treats Body as opaque
// text computed by the dialect: it is written verbatim after conflict
// resolution.
type Artifact struct {
	Kind Kind
	Path string
	Body []byte
}
