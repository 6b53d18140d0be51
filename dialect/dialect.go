package dialect

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/syssam/faber/compiler/gen"
)

// Names of the bundled target stacks.
const (
	Laravel = "laravel"
	Golang  = "golang"
	GraphQL = "graphql"
)

// Options carries the cross-stack knobs a caller can set without
// importing a concrete dialect package. Stacks ignore fields they have
// no use for.
type Options struct {
	// Module is the module path generated imports are rooted at.
	Module string
	// Stubs points at a directory of user-maintained stub templates
	// overriding the embedded set.
	Stubs string
}

// Factory builds a configured dialect.
type Factory func(Options) gen.MinimalDialect

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a dialect available to Lookup under the given name.
// Dialect packages call it from init, so a blank import is enough to
// enable a stack. Register panics if f is nil or the name is already
// taken.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		panic("dialect: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("dialect: Register called twice for " + name)
	}
	factories[name] = f
}

// Lookup returns the factory registered under name. Unknown names error
// with the registered set so a mistyped flag stays actionable.
func Lookup(name string) (Factory, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dialect: unknown dialect %q (registered: %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns the registered dialect names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
