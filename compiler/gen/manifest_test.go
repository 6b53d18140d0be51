package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRoundTrip(t *testing.T) {
	sink := NewMemSink()

	m, err := LoadManifest(sink)
	require.NoError(t, err)
	assert.Empty(t, m.Artifacts, "missing manifest loads empty")

	m.RunID = "2f1c2b34-0000-4000-8000-000000000000"
	m.CreatedAt = time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	m.Record(&Artifact{Kind: KindModel, Path: "app/Models/User.php", Body: []byte("<?php\n")}, "users")
	m.Record(&Artifact{Kind: KindRegistry, Path: "routes/web.php", Body: []byte("routes\n")}, "")
	require.NoError(t, m.Save(sink))

	loaded, err := LoadManifest(sink)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, loaded.RunID)
	assert.True(t, m.CreatedAt.Equal(loaded.CreatedAt))
	require.Len(t, loaded.Artifacts, 2)
	assert.Equal(t, "users", loaded.Artifacts["app/Models/User.php"].Table)
	assert.Equal(t, KindModel, loaded.Artifacts["app/Models/User.php"].Kind)
	assert.Equal(t, Checksum([]byte("<?php\n")), loaded.Artifacts["app/Models/User.php"].Sum)
}

func TestManifestCorrupt(t *testing.T) {
	sink := NewMemSink()
	require.NoError(t, sink.Write(ManifestPath, []byte("not msgpack")))
	_, err := LoadManifest(sink)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode manifest")
}

func TestManifestStatus(t *testing.T) {
	sink := NewMemSink()
	require.NoError(t, sink.Write("app/Models/User.php", []byte("original")))
	require.NoError(t, sink.Write("app/Models/Post.php", []byte("original")))

	m, err := LoadManifest(sink)
	require.NoError(t, err)
	// routes/web.php is recorded but never lands in the sink: deleted.
	for _, p := range []string{"app/Models/User.php", "app/Models/Post.php", "routes/web.php"} {
		m.Record(&Artifact{Kind: KindModel, Path: p, Body: []byte("original")}, "")
	}

	// And one file edited behind the engine's back.
	require.NoError(t, sink.Write("app/Models/Post.php", []byte("edited by hand")))

	status := m.Status(sink)
	require.Len(t, status, 3)

	byPath := make(map[string]DriftState, len(status))
	for _, d := range status {
		byPath[d.Path] = d.State
	}
	assert.Equal(t, DriftModified, byPath["app/Models/Post.php"])
	assert.Equal(t, DriftClean, byPath["app/Models/User.php"])
	assert.Equal(t, DriftMissing, byPath["routes/web.php"])

	// Output is path-ordered for stable reports.
	assert.Equal(t, "app/Models/Post.php", status[0].Path)
	assert.Equal(t, "routes/web.php", status[2].Path)
}
