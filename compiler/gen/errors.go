package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a table or column declaration error.
	ErrInvalidSchema = errors.New("faber: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("faber: missing configuration")
	// ErrStubMissing indicates an artifact template the dialect cannot provide.
	ErrStubMissing = errors.New("faber: stub not available")
	// ErrEmitFailed indicates an artifact rendering failure.
	ErrEmitFailed = errors.New("faber: emit failed")
	// ErrWriteFailed indicates a storage sink failure.
	ErrWriteFailed = errors.New("faber: write failed")
	// ErrRegistryMarker indicates a route registry whose generated block
	// has a begin marker but no matching end marker.
	ErrRegistryMarker = errors.New("faber: route block end marker not found")
)

// SchemaError represents a table or column declaration error.
type SchemaError struct {
	Table   string // table name, possibly empty when the name itself is missing
	Column  string // column name, if applicable
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("faber: schema error")
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(table, column, message string, cause error) *SchemaError {
	return &SchemaError{
		Table:   table,
		Column:  column,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("faber: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("faber: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// StubError represents a missing or broken artifact template. It aborts the
// affected table, never the run.
type StubError struct {
	Dialect string
	Slot    string // template slot name, e.g. "model" or "views/index"
	Cause   error
}

// Error implements the error interface.
func (e *StubError) Error() string {
	var b strings.Builder
	b.WriteString("faber: stub error")
	if e.Dialect != "" {
		b.WriteString(" in dialect ")
		b.WriteString(e.Dialect)
	}
	if e.Slot != "" {
		b.WriteString(" (slot: ")
		b.WriteString(e.Slot)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *StubError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for StubError.
func (e *StubError) Is(target error) bool {
	return target == ErrStubMissing
}

// NewStubError creates a new StubError.
func NewStubError(dialect, slot string, cause error) *StubError {
	return &StubError{
		Dialect: dialect,
		Slot:    slot,
		Cause:   cause,
	}
}

// EmitError represents an artifact rendering failure.
type EmitError struct {
	Table   string
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *EmitError) Error() string {
	var b strings.Builder
	b.WriteString("faber: emit error")
	if e.Kind != "" {
		b.WriteString(" for ")
		b.WriteString(string(e.Kind))
	}
	if e.Table != "" {
		b.WriteString(" of table ")
		b.WriteString(e.Table)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *EmitError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for EmitError.
func (e *EmitError) Is(target error) bool {
	return target == ErrEmitFailed
}

// NewEmitError creates a new EmitError.
func NewEmitError(table string, kind Kind, message string, cause error) *EmitError {
	return &EmitError{
		Table:   table,
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// WriteError represents a storage sink failure for one artifact. Sibling
// artifacts of the same table still proceed.
type WriteError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	var b strings.Builder
	b.WriteString("faber: write error")
	if e.Path != "" {
		b.WriteString(" (path: ")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for WriteError.
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFailed
}

// NewWriteError creates a new WriteError.
func NewWriteError(path string, cause error) *WriteError {
	return &WriteError{
		Path:  path,
		Cause: cause,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsStubError reports whether the error is a StubError.
func IsStubError(err error) bool {
	var stubErr *StubError
	return errors.As(err, &stubErr)
}

// IsEmitError reports whether the error is an EmitError.
func IsEmitError(err error) bool {
	var emitErr *EmitError
	return errors.As(err, &emitErr)
}

// IsWriteError reports whether the error is a WriteError.
func IsWriteError(err error) bool {
	var writeErr *WriteError
	return errors.As(err, &writeErr)
}
