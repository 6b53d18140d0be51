package gen

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// Sink is the artifact destination. Paths are slash-separated and relative
// to the project root; the sink maps them onto its own storage. A Sink
// implementation must be safe for use from a single build at a time.
type Sink interface {
	// Exists reports whether path holds a previously written file.
	Exists(path string) bool
	// Read returns the current content of path.
	Read(path string) ([]byte, error)
	// Write stores body at path, creating parents as needed and replacing
	// any previous content.
	Write(path string, body []byte) error
	// List returns the base names of the files directly under dir, sorted.
	// A missing directory lists as empty.
	List(dir string) ([]string, error)
}

// DirSink writes artifacts under a root directory on the local filesystem.
type DirSink struct {
	root string
}

// NewDirSink returns a sink rooted at dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{root: dir}
}

// Root returns the sink root directory.
func (s *DirSink) Root() string { return s.root }

func (s *DirSink) abs(path string) string {
	return filepath.Join(s.root, filepath.FromSlash(path))
}

// Exists implements Sink.
func (s *DirSink) Exists(path string) bool {
	info, err := os.Stat(s.abs(path))
	return err == nil && !info.IsDir()
}

// Read implements Sink.
func (s *DirSink) Read(path string) ([]byte, error) {
	buf, err := os.ReadFile(s.abs(path))
	if err != nil {
		return nil, NewWriteError(path, err)
	}
	return buf, nil
}

// Write implements Sink.
func (s *DirSink) Write(path string, body []byte) error {
	target := s.abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return NewWriteError(path, err)
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return NewWriteError(path, err)
	}
	return nil
}

// List implements Sink.
func (s *DirSink) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(s.abs(dir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, NewWriteError(dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// MemSink is an in-memory Sink. It backs dry runs and tests.
type MemSink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemSink returns an empty in-memory sink.
func NewMemSink() *MemSink {
	return &MemSink{files: make(map[string][]byte)}
}

// Exists implements Sink.
func (s *MemSink) Exists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[path]
	return ok
}

// Read implements Sink.
func (s *MemSink) Read(path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.files[path]
	if !ok {
		return nil, NewWriteError(path, os.ErrNotExist)
	}
	return slices.Clone(body), nil
}

// Write implements Sink.
func (s *MemSink) Write(path string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = slices.Clone(body)
	return nil
}

// List implements Sink.
func (s *MemSink) List(dir string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var names []string
	for path := range s.files {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		names = append(names, rest)
	}
	slices.Sort(names)
	return names, nil
}

// Paths returns every stored path, sorted.
func (s *MemSink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := maps.Keys(s.files)
	slices.Sort(paths)
	return paths
}
