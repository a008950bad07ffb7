// Package render implements shoelace's small templating language and
// evaluates it against a resolved lock artifact to produce a shell script.
//
// The language is hand-rolled rather than built on text/template: its
// surface syntax (`{% for x in xs %}…{% endfor %}` block tags and
// `foo?.bar` optional chaining) has no clean expression in text/template's
// grammar, and these templates are user-facing config content whose syntax
// needs to stay exactly what users write. Tokenization uses text/scanner;
// everything above the token stream (the AST, evaluator, and filters) is
// project-specific.
package render

import "github.com/cockroachdb/errors"

// Error tags classifying why rendering failed.
var (
	ErrSyntax         = errors.New("render: template syntax error")
	ErrMissingFilter  = errors.New("render: unknown filter")
	ErrMissingTemplate = errors.New("render: missing template")
)
