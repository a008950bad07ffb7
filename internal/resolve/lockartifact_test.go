package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smykla-skalski/shoelace/internal/resolve"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec // test-controlled path
}

func TestWriteReadArtifact_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.lock")

	art := &resolve.Artifact{
		Version:    resolve.ArtifactVersion,
		HomeDir:    "/home/u",
		ConfigDir:  "/home/u/.config/shoelace",
		DataDir:    "/home/u/.local/share/shoelace",
		ConfigFile: "/home/u/.config/shoelace/plugins.toml",
		Plugins: []resolve.ResolvedPlugin{
			{
				Name:      "alpha",
				SourceDir: "/data/repos/github.com/a/b",
				Files:     []string{"/data/repos/github.com/a/b/a.zsh"},
				Apply:     []string{"source"},
				Hooks:     map[string]string{"pre": "echo hi"},
			},
			{Name: "snippet", Inline: "echo inline"},
		},
		Templates: map[string]pluginconfig.Template{
			"source": {Name: "source", Kind: pluginconfig.TemplateEachFile, Body: `source "{{ file }}"`},
		},
	}

	require.NoError(t, resolve.WriteArtifact(path, art))

	got, err := resolve.ReadArtifact(path, art.HomeDir, art.ConfigDir, art.DataDir)
	require.NoError(t, err)

	assert.Equal(t, art.Version, got.Version)
	assert.Equal(t, art.HomeDir, got.HomeDir)
	require.Len(t, got.Plugins, 2)
	assert.Equal(t, "alpha", got.Plugins[0].Name)
	assert.Equal(t, []string{"/data/repos/github.com/a/b/a.zsh"}, got.Plugins[0].Files)
	assert.Equal(t, "echo hi", got.Plugins[0].Hooks["pre"])
	assert.Equal(t, "echo inline", got.Plugins[1].Inline)
	assert.Equal(t, pluginconfig.TemplateEachFile, got.Templates["source"].Kind)
}

func TestWriteReadArtifact_PathsSurviveRootRelocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.lock")

	art := &resolve.Artifact{
		Version:    resolve.ArtifactVersion,
		HomeDir:    "/home/u",
		ConfigDir:  "/home/u/.config/shoelace",
		DataDir:    "/home/u/.local/share/shoelace",
		ConfigFile: "/home/u/.config/shoelace/plugins.toml",
		Plugins: []resolve.ResolvedPlugin{
			{
				Name:      "alpha",
				SourceDir: "/home/u/.local/share/shoelace/repos/github.com/a/b",
				PluginDir: "/home/u/.local/share/shoelace/repos/github.com/a/b/sub",
				Files:     []string{"/home/u/.local/share/shoelace/repos/github.com/a/b/sub/a.zsh"},
				Apply:     []string{"source"},
			},
		},
		Templates: map[string]pluginconfig.Template{
			"source": {Name: "source", Kind: pluginconfig.TemplateEachFile, Body: `source "{{ file }}"`},
		},
	}

	require.NoError(t, resolve.WriteArtifact(path, art))

	raw, err := readFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "${data}/repos/github.com/a/b")
	assert.NotContains(t, string(raw), "/home/u/.local/share/shoelace/repos")

	// Read back under a relocated data directory: the placeholder resolves
	// against the new root, not the one the artifact was written under.
	got, err := resolve.ReadArtifact(path, "/home/other", "/mnt/cfg", "/mnt/data")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/data/repos/github.com/a/b", got.Plugins[0].SourceDir)
	assert.Equal(t, "/mnt/data/repos/github.com/a/b/sub", got.Plugins[0].PluginDir)
	assert.Equal(t, []string{"/mnt/data/repos/github.com/a/b/sub/a.zsh"}, got.Plugins[0].Files)
}

func TestWriteArtifact_DeterministicOutput(t *testing.T) {
	path1 := filepath.Join(t.TempDir(), "a.lock")
	path2 := filepath.Join(t.TempDir(), "b.lock")

	art := &resolve.Artifact{
		Version: resolve.ArtifactVersion,
		Plugins: []resolve.ResolvedPlugin{{Name: "p", SourceDir: "/d", Files: []string{"/d/f"}, Apply: []string{"source"}}},
		Templates: map[string]pluginconfig.Template{
			"source": {Name: "source", Kind: pluginconfig.TemplateEachFile, Body: "x"},
		},
	}

	require.NoError(t, resolve.WriteArtifact(path1, art))
	require.NoError(t, resolve.WriteArtifact(path2, art))

	b1, err := readFile(path1)
	require.NoError(t, err)
	b2, err := readFile(path2)
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}
