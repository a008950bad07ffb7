package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smykla-skalski/shoelace/internal/acquire"
	"github.com/smykla-skalski/shoelace/internal/resolve"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

func writePluginFiles(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("# "+name+"\n"), 0o600))
	}
}

func baseConfig() *pluginconfig.Config {
	return &pluginconfig.Config{
		Shell: pluginconfig.ShellZsh,
		Templates: map[string]pluginconfig.Template{
			"source": {Name: "source", Kind: pluginconfig.TemplateEachFile, Body: `source "{{ file }}"`},
			"PATH":   {Name: "PATH", Kind: pluginconfig.TemplateOnce, Body: `export PATH="{{ dir }}:$PATH"`},
		},
		DefaultApply: []string{"source"},
		DefaultMatch: []string{"{{name}}.plugin.zsh", "{*.plugin.zsh,*.zsh,*.sh}"},
	}
}

func TestResolve_UsePatterns(t *testing.T) {
	dir := t.TempDir()
	writePluginFiles(t, dir, "a.zsh", "b.zsh", "c.txt")

	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{
		{Name: "p", Source: pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://example.com/p"}, Uses: []string{"*.zsh"}},
	}

	mat := map[string]acquire.Materialized{"p": {RootDir: dir}}

	resolved, err := resolve.New().Resolve(cfg, mat, nil)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Len(t, resolved[0].Files, 2)
}

func TestResolve_DefaultMatchFallback(t *testing.T) {
	dir := t.TempDir()
	writePluginFiles(t, dir, "p.plugin.zsh")

	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{
		{Name: "p", Source: pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://example.com/p"}},
	}

	mat := map[string]acquire.Materialized{"p": {RootDir: dir}}

	resolved, err := resolve.New().Resolve(cfg, mat, nil)
	require.NoError(t, err)
	require.Len(t, resolved[0].Files, 1)
	assert.Contains(t, resolved[0].Files[0], "p.plugin.zsh")
}

func TestResolve_NoMatchesWithEachFileTemplate(t *testing.T) {
	dir := t.TempDir()

	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{
		{Name: "p", Source: pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://example.com/p"}, Uses: []string{"*.zsh"}},
	}

	mat := map[string]acquire.Materialized{"p": {RootDir: dir}}

	_, err := resolve.New().Resolve(cfg, mat, nil)
	require.Error(t, err)

	var aggErr *resolve.AggregateError

	require.ErrorAs(t, err, &aggErr)
	assert.ErrorIs(t, aggErr.Errors[0], resolve.ErrNoMatches)
}

func TestResolve_OnceTemplateToleratesNoMatches(t *testing.T) {
	dir := t.TempDir()

	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{
		{
			Name:   "p",
			Source: pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://example.com/p"},
			Uses:   []string{"*.zsh"},
			Apply:  []string{"PATH"},
		},
	}

	mat := map[string]acquire.Materialized{"p": {RootDir: dir}}

	resolved, err := resolve.New().Resolve(cfg, mat, nil)
	require.NoError(t, err)
	assert.Empty(t, resolved[0].Files)
}

func TestResolve_ProfileFiltering(t *testing.T) {
	dir := t.TempDir()
	writePluginFiles(t, dir, "p.plugin.zsh")

	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{
		{Name: "work", Source: pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://example.com/p"}, Profiles: []string{"work"}},
		{Name: "always", Source: pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://example.com/p"}},
	}

	mat := map[string]acquire.Materialized{
		"work":   {RootDir: dir},
		"always": {RootDir: dir},
	}

	resolved, err := resolve.New().Resolve(cfg, mat, nil)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "always", resolved[0].Name)
}

func TestResolve_InlinePluginPassesThrough(t *testing.T) {
	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{{Name: "snippet", Inline: "echo hi"}}

	resolved, err := resolve.New().Resolve(cfg, nil, nil)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, "echo hi", resolved[0].Inline)
}

func TestResolve_DirPathEscapeRejected(t *testing.T) {
	dir := t.TempDir()

	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{
		{Name: "p", Source: pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://example.com/p"}, Dir: "../../etc"},
	}

	mat := map[string]acquire.Materialized{"p": {RootDir: dir}}

	_, err := resolve.New().Resolve(cfg, mat, nil)
	require.Error(t, err)

	var aggErr *resolve.AggregateError

	require.ErrorAs(t, err, &aggErr)
	assert.ErrorIs(t, aggErr.Errors[0], resolve.ErrPathEscape)
}

func TestResolve_ApplyingUndefinedTemplateErrors(t *testing.T) {
	dir := t.TempDir()
	writePluginFiles(t, dir, "p.plugin.zsh")

	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{
		{Name: "p", Source: pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://example.com/p"}, Apply: []string{"nope"}},
	}

	mat := map[string]acquire.Materialized{"p": {RootDir: dir}}

	_, err := resolve.New().Resolve(cfg, mat, nil)
	require.Error(t, err)

	var aggErr *resolve.AggregateError

	require.ErrorAs(t, err, &aggErr)
	assert.ErrorIs(t, aggErr.Errors[0], resolve.ErrNoTemplate)
}

func TestResolve_RemoteSourceUsesDownloadedFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "x.zsh")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	cfg := baseConfig()
	cfg.Plugins = []pluginconfig.Plugin{
		{Name: "p", Source: pluginconfig.Source{Kind: pluginconfig.SourceRemote, URL: "https://example.com/x.zsh"}},
	}

	mat := map[string]acquire.Materialized{"p": {RootDir: file}}

	resolved, err := resolve.New().Resolve(cfg, mat, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{file}, resolved[0].Files)
}
