package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smykla-skalski/shoelace/internal/render"
	"github.com/smykla-skalski/shoelace/internal/resolve"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

func TestRenderer_Render_EachFileAndOnceTemplates(t *testing.T) {
	art := &resolve.Artifact{
		Plugins: []resolve.ResolvedPlugin{
			{
				Name:      "p",
				SourceDir: "/data/p",
				Files:     []string{"/data/p/a.zsh", "/data/p/b.zsh"},
				Apply:     []string{"PATH", "source"},
			},
			{Name: "inline", Inline: "echo inline"},
		},
		Templates: map[string]pluginconfig.Template{
			"PATH":   {Name: "PATH", Kind: pluginconfig.TemplateOnce, Body: `export PATH="{{ dir }}:$PATH"`},
			"source": {Name: "source", Kind: pluginconfig.TemplateEachFile, Body: `source "{{ file }}"`},
		},
	}

	out, err := render.New().Render(art)
	require.NoError(t, err)
	assert.Equal(t, `export PATH="/data/p:$PATH"
source "/data/p/a.zsh"
source "/data/p/b.zsh"
echo inline
`, out)
}

func TestRenderer_Render_MissingTemplate(t *testing.T) {
	art := &resolve.Artifact{
		Plugins:   []resolve.ResolvedPlugin{{Name: "p", Apply: []string{"nope"}}},
		Templates: map[string]pluginconfig.Template{},
	}

	_, err := render.New().Render(art)
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrMissingTemplate)
}

func TestRenderer_Render_HooksWrapEachFileOutput(t *testing.T) {
	art := &resolve.Artifact{
		Plugins: []resolve.ResolvedPlugin{
			{
				Name:      "example",
				SourceDir: "/data/example",
				Files:     []string{"/data/example/a.zsh"},
				Apply:     []string{"source"},
				Hooks:     map[string]string{"pre": "echo a", "post": "echo b"},
			},
		},
		Templates: map[string]pluginconfig.Template{
			"source": {Name: "source", Kind: pluginconfig.TemplateEachFile, Body: `source "{{ file }}"`},
		},
	}

	out, err := render.New().Render(art)
	require.NoError(t, err)
	assert.Equal(t, "echo a\nsource \"/data/example/a.zsh\"\necho b\n", out)
}

func TestRenderer_Render_NoHooksOmitsWrapping(t *testing.T) {
	art := &resolve.Artifact{
		Plugins: []resolve.ResolvedPlugin{
			{Name: "p", SourceDir: "/d", Files: []string{"/d/a.zsh"}, Apply: []string{"source"}},
		},
		Templates: map[string]pluginconfig.Template{
			"source": {Name: "source", Kind: pluginconfig.TemplateEachFile, Body: `source "{{ file }}"`},
		},
	}

	out, err := render.New().Render(art)
	require.NoError(t, err)
	assert.Equal(t, "source \"/d/a.zsh\"\n", out)
}

func TestRenderer_Render_HooksInOnceTemplate(t *testing.T) {
	art := &resolve.Artifact{
		Plugins: []resolve.ResolvedPlugin{
			{Name: "p", SourceDir: "/d", Apply: []string{"withhooks"}, Hooks: map[string]string{"pre": "echo before"}},
		},
		Templates: map[string]pluginconfig.Template{
			"withhooks": {Name: "withhooks", Kind: pluginconfig.TemplateOnce, Body: `{{ hooks.pre | nl }}# done`},
		},
	}

	// The pre hook is emitted once by Render's hook wrapping and once more by
	// the template body that reads hooks.pre.
	out, err := render.New().Render(art)
	require.NoError(t, err)
	assert.Equal(t, "echo before\necho before\n# done\n", out)
}
