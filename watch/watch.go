// Package watch rebuilds generated artifacts whenever a schema source
// changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// BuildFunc runs one regeneration pass. Run calls it once at startup and
// again after every quiet period that follows a schema change.
type BuildFunc func(ctx context.Context) error

// DefaultDebounce is the quiet period between the last file event and
// the rebuild it triggers. Editors fire several events per save; waiting
// out the burst yields one rebuild per save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher schedules rebuilds from filesystem events on a schema source.
type Watcher struct {
	source   string
	build    BuildFunc
	debounce time.Duration
	log      *log.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet period between the last event and the
// rebuild. Non-positive durations keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger rebuild results and watch errors are
// reported on.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// New returns a Watcher rebuilding through build whenever source
// changes. Source may be a schema file of either form, or a directory
// whose .yaml/.yml documents are watched together. It panics if build is
// nil.
func New(source string, build BuildFunc, opts ...Option) *Watcher {
	if build == nil {
		panic("watch: New called with nil build")
	}
	w := &Watcher{
		source:   filepath.Clean(source),
		build:    build,
		debounce: DefaultDebounce,
		log:      log.New(os.Stderr, "faber: ", 0),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run builds once, then blocks rebuilding on every change until ctx is
// canceled. Rebuild failures are logged, not fatal: a schema mid-edit is
// allowed to be broken, and the next save gets another chance.
func (w *Watcher) Run(ctx context.Context) error {
	info, err := os.Stat(w.source)
	if err != nil {
		return fmt.Errorf("faber: watch %s: %w", w.source, err)
	}
	// Watching the directory survives the remove/rename dance editors
	// perform on save; a watch on the file itself would be dropped with
	// the old inode.
	dir, match := w.source, w.matchDir
	if !info.IsDir() {
		dir, match = filepath.Dir(w.source), w.matchFile
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("faber: watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("faber: watch %s: %w", dir, err)
	}

	w.fire(ctx)

	kick := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.collect(ctx, fw, match, kick)
	})
	g.Go(func() error {
		return w.settle(ctx, kick)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// collect filters filesystem events down to schema changes and coalesces
// them into kicks. The kick channel holds one pending kick at most;
// anything beyond that is already covered by it.
func (w *Watcher) collect(ctx context.Context, fw *fsnotify.Watcher, match func(string) bool, kick chan<- struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !match(ev.Name) {
				continue
			}
			select {
			case kick <- struct{}{}:
			default:
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Printf("watch: %v", err)
		}
	}
}

// settle waits out event bursts: every kick re-arms the quiet timer, and
// only its expiry triggers a rebuild.
func (w *Watcher) settle(ctx context.Context, kick <-chan struct{}) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-kick:
			timer.Reset(w.debounce)
		case <-timer.C:
			w.fire(ctx)
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	start := time.Now()
	if err := w.build(ctx); err != nil {
		if ctx.Err() == nil {
			w.log.Printf("watch: rebuild failed: %v", err)
		}
		return
	}
	w.log.Printf("watch: rebuilt in %s", time.Since(start).Round(time.Millisecond))
}

func (w *Watcher) matchFile(name string) bool {
	return filepath.Clean(name) == w.source
}

// matchDir accepts schema documents directly inside the watched
// directory. Dotfiles and editor droppings do not count; compact-form
// documents are watched by naming the file itself.
func (w *Watcher) matchDir(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
