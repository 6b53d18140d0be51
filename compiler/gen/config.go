package gen

import (
	"log"
	"os"
	"time"
)

// CollisionPolicy picks the materialization when a standalone controller
// declaration collides with a table-derived controller of the same name.
type CollisionPolicy string

const (
	// CollisionAsk prompts the operator to choose.
	CollisionAsk CollisionPolicy = "ask"
	// CollisionDeclared keeps only the standalone declaration.
	CollisionDeclared CollisionPolicy = "declared"
	// CollisionDerived keeps only the table-derived controller.
	CollisionDerived CollisionPolicy = "derived"
	// CollisionBoth materializes both; the second write goes through
	// regular conflict resolution.
	CollisionBoth CollisionPolicy = "both"
)

func (p CollisionPolicy) valid() bool {
	switch p {
	case CollisionAsk, CollisionDeclared, CollisionDerived, CollisionBoth:
		return true
	}
	return false
}

// Config holds the global configuration for one or more generation runs.
// Run-scoped mutable state (blanket policy flags, processed tables) does
// not live here; it belongs to the Builder so that concurrent or repeated
// runs cannot leak decisions into each other.
type Config struct {
	// Dialect renders artifacts. Required.
	Dialect MinimalDialect

	// Sink receives artifact reads and writes. Required.
	Sink Sink

	// Prompter resolves interactive decisions. Defaults to a provider that
	// answers every question with its default.
	Prompter Prompter

	// Scope prefixes every artifact path, isolating a run into a module
	// subtree. Empty means the sink root.
	Scope string

	// Collision selects the controller name-collision behavior.
	// Defaults to CollisionAsk.
	Collision CollisionPolicy

	// Force overwrites existing files without prompting. It corresponds to
	// an externally supplied non-interactive "always overwrite".
	Force bool

	// SkipAll starts the run with the skip-all blanket already latched:
	// nothing is written, nothing is asked. Force wins when both are set.
	SkipAll bool

	// Features holds the enabled feature flags.
	Features []Feature

	// Now supplies the sequencer base timestamp. Defaults to time.Now.
	Now func() time.Time

	// Log receives warnings and per-table failure messages.
	Log *log.Logger
}

// FeatureEnabled reports if the given feature name is enabled.
func (c *Config) FeatureEnabled(name string) bool {
	for _, f := range c.Features {
		if f.Name == name {
			return true
		}
	}
	return false
}

// defaults fills optional fields and validates required ones.
func (c *Config) defaults() error {
	if c.Dialect == nil {
		return NewConfigError("Dialect", nil, "dialect cannot be nil")
	}
	if c.Sink == nil {
		return NewConfigError("Sink", nil, "sink cannot be nil")
	}
	if c.Prompter == nil {
		c.Prompter = Defaults{}
	}
	if c.Collision == "" {
		c.Collision = CollisionAsk
	}
	if !c.Collision.valid() {
		return NewConfigError("Collision", c.Collision, "unsupported policy; use ask, declared, derived, or both")
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Log == nil {
		c.Log = log.New(os.Stderr, "faber: ", 0)
	}
	for _, f := range AllFeatures {
		if f.Default && !c.FeatureEnabled(f.Name) {
			c.Features = append(c.Features, f)
		}
	}
	return nil
}

// warnf records a warning on the run log.
func (c *Config) warnf(format string, args ...any) {
	c.Log.Printf("warning: "+format, args...)
}
