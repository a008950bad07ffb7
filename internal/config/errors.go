// Package config parses, normalizes, and validates shoelace's configuration
// file into a pluginconfig.Config.
package config

import "github.com/cockroachdb/errors"

// Error tags classifying why a config failed to load: parse, unknown
// field, conflicting fields, duplicate plugin name, missing source,
// invalid URL, or an insecure file mode.
var (
	ErrParse             = errors.New("config: parse error")
	ErrUnknownField      = errors.New("config: unknown field")
	ErrConflictingFields = errors.New("config: conflicting fields")
	ErrDuplicateName     = errors.New("config: duplicate plugin name")
	ErrMissingSource     = errors.New("config: missing source")
	ErrInvalidURL        = errors.New("config: invalid url")
	ErrNotFound          = errors.New("config: file not found")
	ErrInvalidPermission = errors.New("config: file has insecure permissions")
)

// FieldError is a single structured configuration failure, citing the
// offending plugin name (or line/column for parse errors) and a one-line
// human message.
type FieldError struct {
	Tag    error
	Plugin string
	Field  string
	Line   int
	Column int
	Msg    string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Plugin != "" {
		return e.Plugin + ": " + e.Msg
	}

	return e.Msg
}

// Unwrap allows errors.Is(err, ErrConflictingFields) etc. to succeed.
func (e *FieldError) Unwrap() error {
	return e.Tag
}

// AggregateError collects every FieldError found while normalizing a
// Config so the caller sees all problems at once rather than the first.
type AggregateError struct {
	Errors []*FieldError
}

// Error implements the error interface, joining every offending field.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	msg := ""

	for i, fe := range e.Errors {
		if i > 0 {
			msg += "; "
		}

		msg += fe.Error()
	}

	return msg
}

// Unwrap exposes the underlying field errors for errors.Is/As traversal.
func (e *AggregateError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, fe := range e.Errors {
		errs[i] = fe
	}

	return errs
}
