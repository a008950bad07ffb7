package render

import (
	"strings"
	"text/scanner"

	"github.com/cockroachdb/errors"
)

// segment is one step of a dotted path access.
type segment struct {
	name string
	// optional marks that this segment was reached via `?.`. Evaluation
	// does not consult it: an absent value yields an empty string whether
	// or not the segment is optional.
	optional bool
}

// Expr is a parsed `{{ expr }}` substitution: a dotted path followed by a
// `|`-separated filter chain.
type Expr struct {
	path    []segment
	filters []string
}

// parseExpr tokenizes raw (the text between `{{`/`}}`) with text/scanner
// and builds an Expr: a leading identifier path with optional `?.`
// chaining, optionally followed by `| filter` stages.
func parseExpr(raw string) (*Expr, error) {
	parts := strings.Split(raw, "|")

	pathPart := strings.TrimSpace(parts[0])

	path, err := parsePath(pathPart)
	if err != nil {
		return nil, err
	}

	expr := &Expr{path: path}

	for _, f := range parts[1:] {
		expr.filters = append(expr.filters, strings.TrimSpace(f))
	}

	return expr, nil
}

func parsePath(pathPart string) ([]segment, error) {
	var sc scanner.Scanner

	sc.Init(strings.NewReader(pathPart))
	sc.Mode = scanner.ScanIdents
	sc.Error = func(*scanner.Scanner, string) {}

	var (
		path         []segment
		pendingOpt   bool
		expectIdent  = true
	)

	for tok := sc.Scan(); tok != scanner.EOF; tok = sc.Scan() {
		text := sc.TokenText()

		switch {
		case tok == scanner.Ident:
			if !expectIdent {
				return nil, errors.Wrapf(ErrSyntax, "unexpected identifier %q in %q", text, pathPart)
			}

			path = append(path, segment{name: text, optional: pendingOpt})
			pendingOpt = false
			expectIdent = false
		case text == ".":
			expectIdent = true
		case text == "?":
			// Lookahead handled by next '.' (the scanner yields '?' and '.'
			// as separate rune tokens).
			pendingOpt = true
		default:
			return nil, errors.Wrapf(ErrSyntax, "unexpected token %q in %q", text, pathPart)
		}
	}

	if len(path) == 0 {
		return nil, errors.Wrapf(ErrSyntax, "empty expression %q", pathPart)
	}

	return path, nil
}

// splitForClause parses `x in xs` into the loop variable name and the list
// expression.
func splitForClause(clause string) (string, *Expr, error) {
	const sep = " in "

	idx := strings.Index(clause, sep)
	if idx < 0 {
		return "", nil, errors.Wrapf(ErrSyntax, "malformed for clause %q, want \"x in xs\"", clause)
	}

	varName := strings.TrimSpace(clause[:idx])

	listExpr, err := parseExpr(strings.TrimSpace(clause[idx+len(sep):]))
	if err != nil {
		return "", nil, err
	}

	return varName, listExpr, nil
}
