// Package source computes the content-addressed on-disk layout the
// Acquirer materializes sources under, keyed by canonicalized source URL,
// so two plugins sharing a source share one clone or download.
package source

import (
	"path/filepath"

	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// Layout resolves storage paths for sources under a single data directory.
type Layout struct {
	dataDir string
}

// NewLayout creates a Layout rooted at dataDir (typically $XDG_DATA_HOME/shoelace).
func NewLayout(dataDir string) *Layout {
	return &Layout{dataDir: dataDir}
}

// RepoDir returns the directory a Git source is cloned into:
// "<data_dir>/repos/<host>/<path>".
func (l *Layout) RepoDir(src pluginconfig.Source) string {
	host, path := pluginconfig.HostAndPath(pluginconfig.CanonicalizeURL(src.URL))

	return filepath.Join(l.dataDir, "repos", host, filepath.FromSlash(path))
}

// DownloadPath returns the file a Remote source is downloaded to:
// "<data_dir>/downloads/<host>/<path>/<filename>".
func (l *Layout) DownloadPath(src pluginconfig.Source) string {
	host, path := pluginconfig.HostAndPath(pluginconfig.CanonicalizeURL(src.URL))
	filename := filepath.Base(path)

	return filepath.Join(l.dataDir, "downloads", host, filepath.FromSlash(filepath.Dir(path)), filename)
}

// MetaPath returns the sidecar file a Remote source's ETag/Last-Modified
// conditional-GET state is persisted to, alongside its downloaded file.
func (l *Layout) MetaPath(src pluginconfig.Source) string {
	return l.DownloadPath(src) + ".meta"
}

// MarkerPath returns the path to the marker file the Git source algorithm
// writes after a successful clone and checkout. A repo directory without it
// is treated as an interrupted clone and recloned.
func (l *Layout) MarkerPath(src pluginconfig.Source) string {
	return filepath.Join(l.RepoDir(src), ".shoelace-marker")
}
