package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smykla-skalski/shoelace/internal/render"
)

func TestEval_VariableSubstitution(t *testing.T) {
	tmpl, err := render.Parse(`source "{{ file }}"`)
	require.NoError(t, err)

	out, err := tmpl.Eval(render.Context{"file": "/a/b.zsh"})
	require.NoError(t, err)
	assert.Equal(t, `source "/a/b.zsh"`, out)
}

func TestEval_DottedAccess(t *testing.T) {
	tmpl, err := render.Parse(`{{ hooks.pre }}`)
	require.NoError(t, err)

	out, err := tmpl.Eval(render.Context{"hooks": map[string]string{"pre": "echo hi"}})
	require.NoError(t, err)
	assert.Equal(t, "echo hi", out)
}

func TestEval_OptionalChainingYieldsEmpty(t *testing.T) {
	tmpl, err := render.Parse(`[{{ hooks?.pre }}]`)
	require.NoError(t, err)

	out, err := tmpl.Eval(render.Context{})
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestEval_ForBlock(t *testing.T) {
	tmpl, err := render.Parse(`{% for f in files %}source "{{ f }}"
{% endfor %}`)
	require.NoError(t, err)

	out, err := tmpl.Eval(render.Context{"files": []string{"/a.zsh", "/b.zsh"}})
	require.NoError(t, err)
	assert.Equal(t, "source \"/a.zsh\"\nsource \"/b.zsh\"\n", out)
}

func TestEval_NlFilter(t *testing.T) {
	tmpl, err := render.Parse(`{{ pre | nl }}source "{{ file }}"`)
	require.NoError(t, err)

	out, err := tmpl.Eval(render.Context{"pre": "echo hi", "file": "/a.zsh"})
	require.NoError(t, err)
	assert.Equal(t, "echo hi\nsource \"/a.zsh\"", out)

	out, err = tmpl.Eval(render.Context{"file": "/a.zsh"})
	require.NoError(t, err)
	assert.Equal(t, `source "/a.zsh"`, out)
}

func TestEval_TrimAndQuoteFilters(t *testing.T) {
	tmpl, err := render.Parse(`{{ dir | trim | quote }}`)
	require.NoError(t, err)

	out, err := tmpl.Eval(render.Context{"dir": "  /a/b  "})
	require.NoError(t, err)
	assert.Equal(t, `"/a/b"`, out)
}

func TestEval_UnknownFilterErrors(t *testing.T) {
	tmpl, err := render.Parse(`{{ file | bogus }}`)
	require.NoError(t, err)

	_, err = tmpl.Eval(render.Context{"file": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrMissingFilter)
}

func TestParse_UnterminatedForIsSyntaxError(t *testing.T) {
	_, err := render.Parse(`{% for f in files %}no end`)
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrSyntax)
}

func TestParse_UnterminatedExprIsSyntaxError(t *testing.T) {
	_, err := render.Parse(`{{ file`)
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrSyntax)
}
