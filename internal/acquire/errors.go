package acquire

import "github.com/cockroachdb/errors"

// Error tags identifying which acquisition stage failed.
var (
	ErrClone     = errors.New("acquire: clone failed")
	ErrFetch     = errors.New("acquire: fetch failed")
	ErrCheckout  = errors.New("acquire: checkout failed")
	ErrDownload  = errors.New("acquire: download failed")
	ErrNotFound  = errors.New("acquire: local source not found")
	ErrCorrupted = errors.New("acquire: path is corrupted")

	errNoSuchKind = errors.New("acquire: source has no kind set")
)

// PluginError records an acquisition failure isolated to one plugin, so the
// Acquirer can continue sibling work and the caller can report every
// failure at once.
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

// AggregateError collects every PluginError from one Acquire call.
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
