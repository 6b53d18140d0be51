package gen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/exp/maps"
)

// ManifestPath is where the run manifest lives, relative to the project
// root.
const ManifestPath = ".faber/manifest"

// Manifest records the artifacts written by generation runs, so the status
// command can report what changed underneath the engine since. It is a
// reporting surface only: conflict resolution never consults it, and a
// corrupt or deleted manifest costs nothing but the report.
type Manifest struct {
	RunID     string                   `msgpack:"run_id"`
	CreatedAt time.Time                `msgpack:"created_at"`
	Artifacts map[string]ManifestEntry `msgpack:"artifacts"`
}

// ManifestEntry describes one written artifact.
type ManifestEntry struct {
	Sum   string `msgpack:"sum"`
	Kind  Kind   `msgpack:"kind"`
	Table string `msgpack:"table,omitempty"`
}

// LoadManifest reads the manifest through the sink. A missing manifest
// loads as an empty one.
func LoadManifest(s Sink) (*Manifest, error) {
	if !s.Exists(ManifestPath) {
		return &Manifest{Artifacts: make(map[string]ManifestEntry)}, nil
	}
	body, err := s.Read(ManifestPath)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := msgpack.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("faber: decode manifest: %w", err)
	}
	if m.Artifacts == nil {
		m.Artifacts = make(map[string]ManifestEntry)
	}
	return &m, nil
}

// Save writes the manifest through the sink.
func (m *Manifest) Save(s Sink) error {
	body, err := msgpack.Marshal(m)
	if err != nil {
		return fmt.Errorf("faber: encode manifest: %w", err)
	}
	return s.Write(ManifestPath, body)
}

// Record upserts the entry for one written artifact.
func (m *Manifest) Record(a *Artifact, table string) {
	m.Artifacts[a.Path] = ManifestEntry{
		Sum:   Checksum(a.Body),
		Kind:  a.Kind,
		Table: table,
	}
}

// Checksum returns the hex-encoded sha256 of body.
func Checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// DriftState classifies one recorded artifact against the sink.
type DriftState string

const (
	// DriftClean means the file still matches its recorded checksum.
	DriftClean DriftState = "clean"
	// DriftModified means the file exists with different content.
	DriftModified DriftState = "modified"
	// DriftMissing means the file is gone.
	DriftMissing DriftState = "missing"
)

// Drift is the status of one recorded artifact.
type Drift struct {
	Path  string
	Kind  Kind
	Table string
	State DriftState
}

// Status compares every recorded artifact against the sink's current
// content, in path order.
func (m *Manifest) Status(s Sink) []Drift {
	paths := maps.Keys(m.Artifacts)
	slices.Sort(paths)
	out := make([]Drift, 0, len(paths))
	for _, p := range paths {
		e := m.Artifacts[p]
		d := Drift{Path: p, Kind: e.Kind, Table: e.Table, State: DriftClean}
		switch body, err := s.Read(p); {
		case err != nil:
			d.State = DriftMissing
		case Checksum(body) != e.Sum:
			d.State = DriftModified
		}
		out = append(out, d)
	}
	return out
}
