package render

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// tagKind identifies what kind of tag a raw token carries.
type tagKind int

const (
	tagText tagKind = iota
	tagExpr
	tagForStart
	tagForEnd
)

// rawTag is one lexed unit: either a run of literal text, or the trimmed
// content between a pair of `{{ }}`/`{% %}` delimiters.
type rawTag struct {
	kind tagKind
	text string
}

// lex splits body into an ordered sequence of text and tag units. It does
// not parse expressions or validate `for`/`endfor` balance; parse does
// that.
func lex(body string) ([]rawTag, error) {
	var tags []rawTag

	rest := body

	for {
		exprIdx := strings.Index(rest, "{{")
		blockIdx := strings.Index(rest, "{%")

		start := firstIndex(exprIdx, blockIdx)
		if start < 0 {
			if rest != "" {
				tags = append(tags, rawTag{kind: tagText, text: rest})
			}

			return tags, nil
		}

		if start > 0 {
			tags = append(tags, rawTag{kind: tagText, text: rest[:start]})
		}

		isExpr := exprIdx == start

		open, closeDelim := "{{", "}}"
		if !isExpr {
			open, closeDelim = "{%", "%}"
		}

		afterOpen := rest[start+len(open):]

		end := strings.Index(afterOpen, closeDelim)
		if end < 0 {
			return nil, errors.Wrapf(ErrSyntax, "unterminated %q", open)
		}

		content := strings.TrimSpace(afterOpen[:end])

		if isExpr {
			tags = append(tags, rawTag{kind: tagExpr, text: content})
		} else {
			switch {
			case content == "endfor":
				tags = append(tags, rawTag{kind: tagForEnd})
			case strings.HasPrefix(content, "for "):
				tags = append(tags, rawTag{kind: tagForStart, text: strings.TrimSpace(strings.TrimPrefix(content, "for "))})
			default:
				return nil, errors.Wrapf(ErrSyntax, "unknown block tag %q", content)
			}
		}

		rest = afterOpen[end+len(closeDelim):]
	}
}

func firstIndex(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}
