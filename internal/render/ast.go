package render

import "github.com/cockroachdb/errors"

// Node is one element of a parsed template body.
type Node interface{ isNode() }

// TextNode is a run of literal text emitted verbatim.
type TextNode struct{ Text string }

func (TextNode) isNode() {}

// ExprNode is a `{{ expr }}` substitution.
type ExprNode struct{ Expr *Expr }

func (ExprNode) isNode() {}

// ForNode is a `{% for Var in List %} Body {% endfor %}` block.
type ForNode struct {
	Var  string
	List *Expr
	Body []Node
}

func (ForNode) isNode() {}

// Template is a parsed template body, ready for repeated evaluation.
type Template struct {
	nodes []Node
}

// Parse lexes and parses body into a Template.
func Parse(body string) (*Template, error) {
	tags, err := lex(body)
	if err != nil {
		return nil, err
	}

	nodes, rest, err := parseNodes(tags)
	if err != nil {
		return nil, err
	}

	if len(rest) > 0 {
		return nil, errors.Wrap(ErrSyntax, "unexpected {% endfor %} without matching {% for %}")
	}

	return &Template{nodes: nodes}, nil
}

// parseNodes consumes tags until it either runs out or hits a tagForEnd,
// returning the unconsumed remainder (so the caller can detect a matching
// endfor for a for-block it's assembling).
func parseNodes(tags []rawTag) ([]Node, []rawTag, error) {
	var nodes []Node

	for len(tags) > 0 {
		tag := tags[0]
		tags = tags[1:]

		switch tag.kind {
		case tagText:
			nodes = append(nodes, TextNode{Text: tag.text})
		case tagExpr:
			expr, err := parseExpr(tag.text)
			if err != nil {
				return nil, nil, err
			}

			nodes = append(nodes, ExprNode{Expr: expr})
		case tagForStart:
			varName, listExpr, err := splitForClause(tag.text)
			if err != nil {
				return nil, nil, err
			}

			body, remainder, err := parseNodes(tags)
			if err != nil {
				return nil, nil, err
			}

			if len(remainder) == 0 {
				return nil, nil, errors.Wrap(ErrSyntax, "unterminated {% for %}: missing {% endfor %}")
			}

			nodes = append(nodes, ForNode{Var: varName, List: listExpr, Body: body})
			tags = remainder[1:] // drop the consumed tagForEnd

			continue
		case tagForEnd:
			// Put it back for the enclosing call to consume.
			return nodes, append([]rawTag{tag}, tags...), nil
		}
	}

	return nodes, nil, nil
}
