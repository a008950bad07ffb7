package render

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/shoelace/internal/resolve"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// Renderer evaluates a lock artifact's templates against its resolved
// plugins and concatenates the output.
type Renderer struct {
	cache map[string]*Template
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{cache: make(map[string]*Template)}
}

// Render evaluates every plugin's applied templates, in declaration order,
// and returns the concatenated shell script. A plugin's `hooks.pre`/
// `hooks.post` wrap its own output regardless of which templates it
// applies: pre runs before the first applied template's output, post after
// the last.
func (r *Renderer) Render(art *resolve.Artifact) (string, error) {
	var out strings.Builder

	for _, p := range art.Plugins {
		if p.Inline != "" {
			out.WriteString(p.Inline)
			out.WriteString("\n")

			continue
		}

		if pre := p.Hooks["pre"]; pre != "" {
			out.WriteString(pre)
			out.WriteString("\n")
		}

		for _, name := range p.Apply {
			tmpl, ok := art.Templates[name]
			if !ok {
				return "", errors.Wrapf(ErrMissingTemplate, "plugin %q: template %q", p.Name, name)
			}

			rendered, err := r.renderOne(p, tmpl)
			if err != nil {
				return "", errors.Wrapf(err, "plugin %q, template %q", p.Name, name)
			}

			out.WriteString(rendered)
		}

		if post := p.Hooks["post"]; post != "" {
			out.WriteString(post)
			out.WriteString("\n")
		}
	}

	return out.String(), nil
}

func (r *Renderer) renderOne(p resolve.ResolvedPlugin, tmpl pluginconfig.Template) (string, error) {
	parsed, err := r.parsed(tmpl)
	if err != nil {
		return "", err
	}

	var out strings.Builder

	if tmpl.Kind == pluginconfig.TemplateOnce {
		ctx := Context{
			"dir":   p.Dir(),
			"files": p.Files,
			"hooks": p.Hooks,
		}

		s, err := parsed.Eval(ctx)
		if err != nil {
			return "", err
		}

		out.WriteString(s)
		out.WriteString("\n")

		return out.String(), nil
	}

	for _, file := range p.Files {
		ctx := Context{
			"file": file,
			"name": p.Name,
			"dir":  p.Dir(),
		}

		s, err := parsed.Eval(ctx)
		if err != nil {
			return "", err
		}

		out.WriteString(s)
		out.WriteString("\n")
	}

	return out.String(), nil
}

func (r *Renderer) parsed(tmpl pluginconfig.Template) (*Template, error) {
	if cached, ok := r.cache[tmpl.Name]; ok {
		return cached, nil
	}

	parsed, err := Parse(tmpl.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "template %q", tmpl.Name)
	}

	r.cache[tmpl.Name] = parsed

	return parsed, nil
}
