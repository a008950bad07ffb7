package source_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smykla-skalski/shoelace/internal/source"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

func TestLayout_RepoDir(t *testing.T) {
	l := source.NewLayout("/data")

	dir := l.RepoDir(pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://github.com/owner/repo.git"})
	assert.Equal(t, filepath.Join("/data", "repos", "github.com", "owner/repo"), dir)
}

func TestLayout_RepoDir_SharedAcrossEquivalentURLs(t *testing.T) {
	l := source.NewLayout("/data")

	a := l.RepoDir(pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://github.com/owner/repo"})
	b := l.RepoDir(pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://github.com/owner/repo.git/"})
	assert.Equal(t, a, b)
}

func TestLayout_DownloadPath(t *testing.T) {
	l := source.NewLayout("/data")

	p := l.DownloadPath(pluginconfig.Source{Kind: pluginconfig.SourceRemote, URL: "https://example.com/a/b/plugin.zsh"})
	assert.Equal(t, filepath.Join("/data", "downloads", "example.com", "a/b", "plugin.zsh"), p)
}

func TestLayout_MetaPath(t *testing.T) {
	l := source.NewLayout("/data")

	src := pluginconfig.Source{Kind: pluginconfig.SourceRemote, URL: "https://example.com/x.zsh"}
	assert.Equal(t, l.DownloadPath(src)+".meta", l.MetaPath(src))
}
