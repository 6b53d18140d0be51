package gen

import (
	"errors"
	"log"
	"time"
)

// Option configures a generation run.
type Option func(*Config) error

// WithDialect sets the artifact-rendering dialect.
// The dialect decides how a normalized table becomes target source text.
func WithDialect(d MinimalDialect) Option {
	return func(c *Config) error {
		if d == nil {
			return NewConfigError("Dialect", nil, "dialect cannot be nil")
		}
		c.Dialect = d
		return nil
	}
}

// WithSink sets the storage sink artifacts are written to.
func WithSink(s Sink) Option {
	return func(c *Config) error {
		if s == nil {
			return NewConfigError("Sink", nil, "sink cannot be nil")
		}
		c.Sink = s
		return nil
	}
}

// WithPrompter sets the operator prompt provider.
// Conflict and merge decisions flow through it; tests usually install a
// scripted provider.
func WithPrompter(p Prompter) Option {
	return func(c *Config) error {
		if p == nil {
			return NewConfigError("Prompter", nil, "prompter cannot be nil")
		}
		c.Prompter = p
		return nil
	}
}

// WithScope sets the module scope prefix.
// Every artifact path is computed under it.
func WithScope(scope string) Option {
	return func(c *Config) error {
		c.Scope = scope
		return nil
	}
}

// WithCollision sets the controller name-collision policy.
// Supported policies: "ask", "declared", "derived", "both".
func WithCollision(p CollisionPolicy) Option {
	return func(c *Config) error {
		if !p.valid() {
			return NewConfigError("Collision", p, "unsupported policy; use ask, declared, derived, or both")
		}
		c.Collision = p
		return nil
	}
}

// WithForce enables non-interactive overwriting of existing files.
func WithForce(force bool) Option {
	return func(c *Config) error {
		c.Force = force
		return nil
	}
}

// WithSkipAll starts the run with the skip-all blanket latched, so
// existing and pending files alike are left untouched.
func WithSkipAll(skip bool) Option {
	return func(c *Config) error {
		c.SkipAll = skip
		return nil
	}
}

// WithFeatures enables specific features.
// Features control optional generation capabilities.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithNow sets the clock used to capture the sequencer base timestamp.
// Tests install a fixed clock to make ordering keys reproducible.
func WithNow(now func() time.Time) Option {
	return func(c *Config) error {
		if now == nil {
			return NewConfigError("Now", nil, "clock cannot be nil")
		}
		c.Now = now
		return nil
	}
}

// WithLogger sets the run logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Log", nil, "logger cannot be nil")
		}
		c.Log = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
