package config

// rawConfig mirrors the user-facing TOML document shape exactly, for
// koanf/go-toml decoding before normalization.
type rawConfig struct {
	Shell     string               `koanf:"shell"`
	Apply     []string             `koanf:"apply"`
	Match     []string             `koanf:"match"`
	Timeout   string               `koanf:"timeout"`
	Templates map[string]string    `koanf:"templates"`
	Plugins   map[string]rawPlugin `koanf:"plugins"`
}

// rawPlugin mirrors a single `[plugins.<name>]` table.
type rawPlugin struct {
	// Source shorthand / explicit forms (mutually exclusive, rule 1).
	GitHub string `koanf:"github"`
	Gist   string `koanf:"gist"`
	Git    string `koanf:"git"`
	Remote string `koanf:"remote"`
	Local  string `koanf:"local"`
	Inline string `koanf:"inline"`

	// Reference selection (mutually exclusive, rule 2).
	Branch string `koanf:"branch"`
	Tag    string `koanf:"tag"`
	Rev    string `koanf:"rev"`

	Submodules *bool  `koanf:"submodules"`
	Dir        string `koanf:"dir"`

	Use      []string          `koanf:"use"`
	Apply    []string          `koanf:"apply"`
	Profiles []string          `koanf:"profiles"`
	Hooks    map[string]string `koanf:"hooks"`
}

// knownTopLevelFields and knownPluginFields back the unknown-field check in
// normalize.go.
var (
	knownTopLevelFields = map[string]bool{
		"shell": true, "apply": true, "match": true, "timeout": true,
		"templates": true, "plugins": true,
	}

	knownPluginFields = map[string]bool{
		"github": true, "gist": true, "git": true, "remote": true, "local": true, "inline": true,
		"branch": true, "tag": true, "rev": true, "submodules": true, "dir": true,
		"use": true, "apply": true, "profiles": true, "hooks": true,
	}
)
