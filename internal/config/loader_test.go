package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smykla-skalski/shoelace/internal/config"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "plugins.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_SinglePlugin(t *testing.T) {
	path := writeConfig(t, `
shell = "zsh"

[plugins.test]
github = "owner/repo"
use = ["*.plugin.zsh"]
`)

	cfg, err := config.NewLoader().Load(path, nil)
	require.NoError(t, err)
	require.Len(t, cfg.Plugins, 1)

	p := cfg.Plugins[0]
	assert.Equal(t, "test", p.Name)
	assert.Equal(t, pluginconfig.SourceGit, p.Source.Kind)
	assert.Equal(t, "https://github.com/owner/repo", p.Source.URL)
	assert.Equal(t, []string{"source"}, p.Apply)
	assert.True(t, p.Source.Submodules)
}

func TestLoad_PreservesDeclarationOrder(t *testing.T) {
	path := writeConfig(t, `
shell = "zsh"

[plugins.zeta]
local = "/tmp/zeta"

[plugins.alpha]
local = "/tmp/alpha"

[plugins.mid]
local = "/tmp/mid"
`)

	cfg, err := config.NewLoader().Load(path, nil)
	require.NoError(t, err)
	require.Len(t, cfg.Plugins, 3)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, []string{
		cfg.Plugins[0].Name, cfg.Plugins[1].Name, cfg.Plugins[2].Name,
	})
}

func TestLoad_ConflictingReferenceFields(t *testing.T) {
	path := writeConfig(t, `
[plugins.test]
github = "owner/repo"
branch = "main"
tag = "v1"
`)

	_, err := config.NewLoader().Load(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConflictingFields)
}

func TestLoad_InlineExclusivity(t *testing.T) {
	path := writeConfig(t, `
[plugins.test]
inline = "echo hi"
github = "owner/repo"
`)

	_, err := config.NewLoader().Load(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConflictingFields)
}

func TestLoad_MissingSource(t *testing.T) {
	path := writeConfig(t, `
[plugins.test]
use = ["*.zsh"]
`)

	_, err := config.NewLoader().Load(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingSource)
}

func TestLoad_RemoteSource(t *testing.T) {
	path := writeConfig(t, `
[plugins.x]
remote = "https://example.com/x.zsh"
`)

	cfg, err := config.NewLoader().Load(path, nil)
	require.NoError(t, err)
	require.Len(t, cfg.Plugins, 1)
	assert.Equal(t, pluginconfig.SourceRemote, cfg.Plugins[0].Source.Kind)
}

func TestLoad_TemplateOverride(t *testing.T) {
	path := writeConfig(t, `
[templates]
source = "my-source \"{{ file }}\""

[plugins.x]
local = "/tmp/x"
`)

	cfg, err := config.NewLoader().Load(path, nil)
	require.NoError(t, err)
	assert.Contains(t, cfg.Templates["source"].Body, "my-source")
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, `
[plugins.x]
local = "/tmp/x"
bogus = "nope"
`)

	_, err := config.NewLoader().Load(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnknownField)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := config.NewLoader().Load(filepath.Join(t.TempDir(), "missing.toml"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNotFound)
}
