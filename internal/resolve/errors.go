// Package resolve expands a normalized Config and an acquired source table
// into an ordered, fully resolved lock artifact.
package resolve

import "github.com/cockroachdb/errors"

// Error tags classifying why resolving a plugin failed.
var (
	ErrNoMatches   = errors.New("resolve: no matching files")
	ErrPathEscape  = errors.New("resolve: dir escapes source tree")
	ErrNoTemplate  = errors.New("resolve: missing template")
	ErrNotAcquired = errors.New("resolve: plugin was not acquired")
)

// PluginError records a resolution failure isolated to one plugin.
type PluginError struct {
	Plugin string
	Err    error
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return e.Plugin + ": " + e.Err.Error()
}

// Unwrap allows errors.Is/As to reach the underlying tag.
func (e *PluginError) Unwrap() error {
	return e.Err
}

// AggregateError collects every PluginError from one Resolve call.
type AggregateError struct {
	Errors []*PluginError
}

// Error implements the error interface, joining every offending plugin.
func (e *AggregateError) Error() string {
	msg := ""

	for i, pe := range e.Errors {
		if i > 0 {
			msg += "; "
		}

		msg += pe.Error()
	}

	return msg
}

// Unwrap exposes the underlying plugin errors for errors.Is/As traversal.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}

	return errs
}
