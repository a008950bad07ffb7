package resolve

import "github.com/smykla-skalski/shoelace/pkg/pluginconfig"

// ArtifactVersion is the lock artifact format version stamp, bumped when
// the schema below changes incompatibly.
const ArtifactVersion = 1

// ResolvedPlugin is one plugin's fully resolved state as persisted in the
// lock artifact.
type ResolvedPlugin struct {
	Name string

	// Inline holds the raw snippet for an Inline Plugin; when non-empty the
	// remaining External Plugin fields below are meaningless.
	Inline string

	// SourceDir is the absolute materialized source root.
	SourceDir string

	// PluginDir is SourceDir joined with the plugin's `dir`, when set.
	PluginDir string

	// Files is the absolute, ordered, deduplicated file list.
	Files []string

	Apply []string
	Hooks map[string]string
}

// Dir returns PluginDir if set, else SourceDir.
func (p ResolvedPlugin) Dir() string {
	if p.PluginDir != "" {
		return p.PluginDir
	}

	return p.SourceDir
}

// Artifact is the persisted, fully resolved snapshot the Renderer consumes
// on the warm path, without needing to re-run acquisition or resolution.
type Artifact struct {
	Version int

	HomeDir   string
	ConfigDir string
	DataDir   string

	ConfigFile string

	Plugins []ResolvedPlugin

	Templates map[string]pluginconfig.Template
}
