package resolve

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// rawArtifact mirrors WriteArtifact's on-disk shape for decoding.
type rawArtifact struct {
	Version    int               `toml:"version"`
	HomeDir    string            `toml:"home_dir"`
	ConfigDir  string            `toml:"config_dir"`
	DataDir    string            `toml:"data_dir"`
	ConfigFile string            `toml:"config_file"`
	Plugin     []rawPlugin       `toml:"plugin"`
	Templates  map[string]rawTpl `toml:"templates"`
}

type rawPlugin struct {
	Name      string            `toml:"name"`
	Inline    string            `toml:"inline"`
	SourceDir string            `toml:"source_dir"`
	PluginDir string            `toml:"plugin_dir"`
	Files     []string          `toml:"files"`
	Apply     []string          `toml:"apply"`
	Hooks     map[string]string `toml:"hooks"`
}

type rawTpl struct {
	Kind string `toml:"kind"`
	Body string `toml:"body"`
}

// ReadArtifact reads and decodes the lock artifact at path, the sole input
// the Renderer needs on the warm path. homeDir/configDir/dataDir are this
// invocation's current roots, substituted back into any `${home}`/
// `${config}`/`${data}` placeholder WriteArtifact left in absolute paths —
// so a lock written under one data directory still resolves correctly if
// SHOELACE_DATA_DIR (or the other root overrides) changed before this read.
func ReadArtifact(path, homeDir, configDir, dataDir string) (*Artifact, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read lock artifact %s", path)
	}

	var raw rawArtifact
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse lock artifact %s", path)
	}

	interp := func(value string) string {
		return interpolate(value, homeDir, configDir, dataDir)
	}

	art := &Artifact{
		Version:    raw.Version,
		HomeDir:    raw.HomeDir,
		ConfigDir:  raw.ConfigDir,
		DataDir:    raw.DataDir,
		ConfigFile: interp(raw.ConfigFile),
		Templates:  make(map[string]pluginconfig.Template, len(raw.Templates)),
	}

	for name, t := range raw.Templates {
		kind := pluginconfig.TemplateEachFile
		if t.Kind == "once" {
			kind = pluginconfig.TemplateOnce
		}

		art.Templates[name] = pluginconfig.Template{Name: name, Kind: kind, Body: t.Body}
	}

	for _, p := range raw.Plugin {
		files := make([]string, len(p.Files))
		for i, f := range p.Files {
			files[i] = interp(f)
		}

		art.Plugins = append(art.Plugins, ResolvedPlugin{
			Name:      p.Name,
			Inline:    p.Inline,
			SourceDir: interp(p.SourceDir),
			PluginDir: interp(p.PluginDir),
			Files:     files,
			Apply:     p.Apply,
			Hooks:     p.Hooks,
		})
	}

	return art, nil
}

// interpolate replaces a leading `${home}`/`${config}`/`${data}` placeholder
// in value with the corresponding current root, leaving value unchanged if
// it carries none.
func interpolate(value, homeDir, configDir, dataDir string) string {
	switch {
	case strings.HasPrefix(value, "${data}"):
		return dataDir + strings.TrimPrefix(value, "${data}")
	case strings.HasPrefix(value, "${config}"):
		return configDir + strings.TrimPrefix(value, "${config}")
	case strings.HasPrefix(value, "${home}"):
		return homeDir + strings.TrimPrefix(value, "${home}")
	default:
		return value
	}
}
