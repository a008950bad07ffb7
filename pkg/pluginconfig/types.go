// Package pluginconfig defines the declarative plugin graph shoelace reads
// from a user's configuration file: sources, plugins, templates, and the
// profile-gated activation rules that tie them together.
package pluginconfig

import "time"

// Shell identifies the target shell a Config renders for.
type Shell string

const (
	// ShellBash targets bash.
	ShellBash Shell = "bash"

	// ShellZsh targets zsh.
	ShellZsh Shell = "zsh"
)

// Duration wraps time.Duration so it can be parsed from a TOML string like
// "10s", matching the teacher's config.Duration convention.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML/koanf decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = 0

		return nil
	}

	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}

	*d = Duration(dur)

	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML serialization.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// SourceKind identifies which Source variant is populated.
type SourceKind int

const (
	// SourceUnknown is the zero value, indicating no source fields were set.
	SourceUnknown SourceKind = iota

	// SourceGit is a remote git repository.
	SourceGit

	// SourceRemote is a single remote file fetched over HTTP(S).
	SourceRemote

	// SourceLocal is a directory already present on the local filesystem.
	SourceLocal
)

// RefKind identifies which reference selector a Git source is pinned to.
type RefKind int

const (
	// RefNone means no explicit reference was given; HEAD of the remote's
	// default branch is used.
	RefNone RefKind = iota

	// RefBranch pins to a branch name.
	RefBranch

	// RefTag pins to a tag name, or a semver constraint matched against tags.
	RefTag

	// RefRev pins to a commit hash (full or abbreviated).
	RefRev
)

// Source is the tagged variant describing where a plugin's content comes
// from. Exactly one of Kind's corresponding fields is meaningful.
type Source struct {
	Kind SourceKind

	// Git / Remote URL, or Local directory path (may contain ~).
	URL string

	// Git reference selection. RefKind is RefNone when Ref is empty.
	RefKind RefKind
	Ref     string

	// Submodules controls whether git submodules are checked out.
	// Defaults to true.
	Submodules bool
}

// CanonicalKey returns the string two Sources share storage under iff they
// are the same variant with the same canonicalized URL/path. The
// reference selector is deliberately excluded.
func (s Source) CanonicalKey() string {
	kind := "unknown"

	switch s.Kind {
	case SourceGit:
		kind = "git"
	case SourceRemote:
		kind = "remote"
	case SourceLocal:
		kind = "local"
	case SourceUnknown:
	}

	return kind + ":" + CanonicalizeURL(s.URL)
}

// Plugin is either an External Plugin (references a Source) or an Inline
// Plugin (carries a literal shell snippet).
type Plugin struct {
	// Name is unique within a Config.
	Name string

	// Inline, when non-empty, makes this an Inline Plugin; Source-related
	// fields below are then meaningless (enforced by normalization rule 3).
	Inline string

	Source Source

	// Dir is an optional subdirectory within the source tree.
	Dir string

	// Uses overrides the shell-specific default match patterns.
	Uses []string

	// Apply overrides the global default template list.
	Apply []string

	// Profiles gates whether this plugin is enabled for the active profile
	// set (empty means always enabled).
	Profiles []string

	// Hooks is the per-plugin string->string rendering hook map.
	Hooks map[string]string
}

// IsInline reports whether this is an Inline Plugin.
func (p Plugin) IsInline() bool {
	return p.Inline != ""
}

// Enabled reports whether p is active given the current profile set: true
// iff Profiles is empty or intersects the active set.
func (p Plugin) Enabled(active map[string]struct{}) bool {
	if len(p.Profiles) == 0 {
		return true
	}

	for _, want := range p.Profiles {
		if _, ok := active[want]; ok {
			return true
		}
	}

	return false
}

// TemplateKind distinguishes each-file templates from once templates.
type TemplateKind int

const (
	// TemplateEachFile is iterated once per resolved file.
	TemplateEachFile TemplateKind = iota

	// TemplateOnce is expanded a single time per plugin.
	TemplateOnce
)

// Template is a named string in shoelace's small templating language
// (internal/render), tagged as each-file or once.
type Template struct {
	Name string
	Kind TemplateKind
	Body string
}

// Config is the ordered sequence of plugins, the templates map, optional
// global defaults, and the target shell.
type Config struct {
	Shell Shell

	// Plugins preserves declaration order; it is the shell source order.
	Plugins []Plugin

	// Templates may be overridden by user definitions with the same name.
	Templates map[string]Template

	// DefaultApply is the global default `apply` list.
	DefaultApply []string

	// DefaultMatch is the global default `match` patterns, chosen for Shell;
	// populated from built-ins unless the user overrides them.
	DefaultMatch []string

	// Timeout is the optional global network-operation timeout covering
	// acquisition; zero means no timeout.
	Timeout Duration
}

// PluginByName returns the plugin with the given name, or false if absent.
func (c *Config) PluginByName(name string) (Plugin, bool) {
	for _, p := range c.Plugins {
		if p.Name == name {
			return p, true
		}
	}

	return Plugin{}, false
}
