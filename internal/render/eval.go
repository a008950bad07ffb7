package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Context is the variable bindings a Template is evaluated against:
// string, []string, and map[string]string values are supported, covering
// the `file`/`name`/`dir`/`files`/`hooks` variables templates reference.
type Context map[string]any

// Eval renders t against ctx, returning the produced text.
func (t *Template) Eval(ctx Context) (string, error) {
	var buf strings.Builder

	if err := evalNodes(t.nodes, ctx, &buf); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func evalNodes(nodes []Node, ctx Context, buf *strings.Builder) error {
	for _, n := range nodes {
		switch node := n.(type) {
		case TextNode:
			buf.WriteString(node.Text)
		case ExprNode:
			val, err := evalExpr(node.Expr, ctx)
			if err != nil {
				return err
			}

			buf.WriteString(val)
		case ForNode:
			items, err := evalPathToAny(node.List.path, ctx)
			if err != nil {
				return err
			}

			list, ok := items.([]string)
			if !ok {
				if items == nil {
					continue
				}

				return errors.Wrapf(ErrSyntax, "%q is not a list", node.Var)
			}

			for _, item := range list {
				sub := make(Context, len(ctx)+1)
				for k, v := range ctx {
					sub[k] = v
				}

				sub[node.Var] = item

				if err := evalNodes(node.Body, sub, buf); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// evalExpr resolves a path, applies the filter chain, and stringifies the
// result.
func evalExpr(e *Expr, ctx Context) (string, error) {
	val, err := evalPathToAny(e.path, ctx)
	if err != nil {
		return "", err
	}

	s := stringify(val)

	for _, name := range e.filters {
		s, err = applyFilter(name, s)
		if err != nil {
			return "", err
		}
	}

	return s, nil
}

// evalPathToAny walks path against ctx. A missing value at any step
// (absent map key, nil context entry) yields nil without error — `?.`
// exists to make emptiness-on-missing explicit, but in practice an
// ordinary missing variable renders empty too, matching the built-in
// templates' tolerant style.
func evalPathToAny(path []segment, ctx Context) (any, error) {
	if len(path) == 0 {
		return nil, nil
	}

	cur, ok := ctx[path[0].name]
	if !ok {
		return nil, nil
	}

	for _, seg := range path[1:] {
		if cur == nil {
			return nil, nil
		}

		m, ok := cur.(map[string]string)
		if !ok {
			return nil, errors.Wrapf(ErrSyntax, "cannot access field %q on non-map value", seg.name)
		}

		v, ok := m[seg.name]
		if !ok {
			cur = nil

			continue
		}

		cur = v
	}

	return cur, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, " ")
	default:
		return fmt.Sprint(val)
	}
}

func applyFilter(name, s string) (string, error) {
	switch name {
	case "nl":
		if s == "" {
			return s, nil
		}

		return s + "\n", nil
	case "trim":
		return strings.TrimSpace(s), nil
	case "quote":
		return shellQuote(s), nil
	default:
		return "", errors.Wrapf(ErrMissingFilter, "%q", name)
	}
}

// shellQuote wraps s in double quotes, escaping characters the shell would
// otherwise treat specially inside a double-quoted string.
func shellQuote(s string) string {
	quoted := strconv.Quote(s)

	return `"` + quoted[1:len(quoted)-1] + `"`
}
