package faber

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/syssam/faber/compiler/gen"
)

// ErrFailed is the sentinel matched by every BuildError.
var ErrFailed = errors.New("faber: build finished with failures")

// BuildError turns a failed report into an error. The engine never
// aborts a run for a per-table failure; callers that want error-shaped
// failure wrap the report through NewBuildError.
type BuildError struct {
	Report *gen.Report
}

// Error returns the error string, one numbered line per failure.
func (e *BuildError) Error() string {
	if e.Report == nil || len(e.Report.Failures) == 0 {
		return "faber: build finished with failures"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "faber: build finished with %d failure(s):", len(e.Report.Failures))
	for i, f := range e.Report.Failures {
		if f.Table != "" {
			fmt.Fprintf(&sb, "\n  [%d] table %s: %v", i+1, f.Table, f.Err)
		} else {
			fmt.Fprintf(&sb, "\n  [%d] %v", i+1, f.Err)
		}
	}
	return sb.String()
}

// Is reports whether the target error matches ErrFailed.
// This allows errors.Is(buildErr, ErrFailed) to return true.
func (e *BuildError) Is(err error) bool {
	return err == ErrFailed
}

// Unwrap returns the per-failure errors, so errors.Is and errors.As
// reach the underlying schema and emit errors.
func (e *BuildError) Unwrap() []error {
	if e.Report == nil {
		return nil
	}
	errs := make([]error, 0, len(e.Report.Failures))
	for _, f := range e.Report.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Tables returns the distinct tables that failed, in report order.
// Failures not bound to a table are not listed.
func (e *BuildError) Tables() []string {
	if e.Report == nil {
		return nil
	}
	var tables []string
	for _, f := range e.Report.Failures {
		if f.Table != "" && !slices.Contains(tables, f.Table) {
			tables = append(tables, f.Table)
		}
	}
	return tables
}

// NewBuildError returns a BuildError for a failed report, or nil when
// the report carries no failures.
func NewBuildError(r *gen.Report) error {
	if r == nil || !r.Failed() {
		return nil
	}
	return &BuildError{Report: r}
}

// IsBuildError returns true if the error carries a failed build report.
func IsBuildError(err error) bool {
	if err == nil {
		return false
	}
	var e *BuildError
	return errors.As(err, &e)
}

// NotFoundError reports a schema source that does not exist on disk.
type NotFoundError struct {
	Path string
	err  error
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("faber: schema source %s not found", e.Path)
}

// Unwrap returns the underlying error.
func (e *NotFoundError) Unwrap() error {
	return e.err
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e)
}

// MaskNotFound returns nil when err only says the schema source is
// missing, and err unchanged otherwise.
func MaskNotFound(err error) error {
	if IsNotFound(err) {
		return nil
	}
	return err
}

// maskSource converts a missing-file load error into a NotFoundError.
func maskSource(source string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &NotFoundError{Path: source, err: err}
	}
	return err
}
