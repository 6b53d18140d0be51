package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/faber/schema"
)

// Interface compliance for the in-package test dialect.
var (
	_ Dialect             = (*fakeDialect)(nil)
	_ FactoryGenerator    = (*fakeDialect)(nil)
	_ StandaloneGenerator = (*fakeDialect)(nil)
)

// modelOnlyDialect implements nothing beyond MinimalDialect. The builder
// must discover the missing capabilities and skip those artifact kinds
// without complaint.
type modelOnlyDialect struct{}

func (*modelOnlyDialect) Name() string { return "model-only" }

func (*modelOnlyDialect) GenModel(t *Table) (*Artifact, error) {
	return &Artifact{
		Kind: KindModel,
		Path: "models/" + t.Naming.Model + ".txt",
		Body: []byte("model " + t.Naming.Model + "\n"),
	}, nil
}

func TestMinimalDialectCapabilities(t *testing.T) {
	sink := NewMemSink()
	rep, err := Generate(scenarioDoc(),
		WithDialect(&modelOnlyDialect{}), WithSink(sink),
		WithFeatures(FeatureFactory), atBase(buildBase))
	require.NoError(t, err)
	require.False(t, rep.Failed(), "failures: %v", rep.Failures)

	assert.True(t, sink.Exists("models/User.txt"))
	assert.True(t, sink.Exists("models/Post.txt"))
	assert.Len(t, rep.Written, 2, "only the model capability produces artifacts")

	// No migrations directory, no registry, and the factory feature has
	// nothing to bind to.
	names, err := sink.List("migrations")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.False(t, sink.Exists("routes.txt"))
	names, err = sink.List("factories")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMinimalDialectSkipsStandalone(t *testing.T) {
	doc := scenarioDoc()
	doc.Controllers = []*schema.Controller{{Name: "HealthController", Resource: true}}

	sink := NewMemSink()
	rep, err := Generate(doc, WithDialect(&modelOnlyDialect{}), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)
	require.False(t, rep.Failed())
	assert.False(t, sink.Exists("controllers/HealthController.txt"),
		"declared controllers need the standalone capability")
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "skips standalone declarations")
}
