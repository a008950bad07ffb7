package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// Loader loads shoelace's configuration from a single TOML file, layering
// in environment variables and CLI flag overrides.
type Loader struct {
	k *koanf.Koanf
}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{k: koanf.New(".")}
}

// Load reads path, applying env var and flag overrides, and returns a
// validated Config or a *AggregateError citing every offending field.
func (l *Loader) Load(path string, flags map[string]any) (*pluginconfig.Config, error) {
	raw, err := l.loadRaw(path, flags)
	if err != nil {
		return nil, err
	}

	rawBytes, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, errors.Wrap(ErrNotFound, err.Error())
	}

	rawMap := l.k.Raw()

	order := pluginDeclarationOrder(rawBytes)

	return normalize(raw, order, rawMap)
}

// loadRaw loads the TOML file, env vars, and flags into koanf and decodes
// into rawConfig, without normalization or validation. Built-in defaults
// are not loaded here; normalize applies them.
func (l *Loader) loadRaw(path string, flags map[string]any) (*rawConfig, error) {
	l.k = koanf.New(".")

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(ErrNotFound, "%s: %s", path, err)
	}

	if info.Mode().Perm()&0o002 != 0 {
		return nil, errors.Wrapf(ErrInvalidPermission, "%s is world-writable (mode: %s)", path, info.Mode().Perm())
	}

	if err := l.k.Load(file.Provider(path), tomlparser.Parser()); err != nil {
		return nil, errors.Wrapf(ErrParse, "%s: %s", path, err)
	}

	envOpt := env.Opt{
		Prefix:        "SHOELACE_",
		TransformFunc: envTransform,
	}

	if err := l.k.Load(env.Provider(".", envOpt), nil); err != nil {
		return nil, errors.Wrap(err, "failed to load env vars")
	}

	if len(flags) > 0 {
		if err := l.k.Load(confmap.Provider(flags, "."), nil); err != nil {
			return nil, errors.Wrap(err, "failed to load flags")
		}
	}

	var raw rawConfig

	tomlOpts := koanf.UnmarshalConf{Tag: "koanf", FlatPaths: false}
	if err := l.k.UnmarshalWithConf("", &raw, tomlOpts); err != nil {
		return nil, errors.Wrapf(ErrParse, "%s: %s", path, err)
	}

	return &raw, nil
}

// envTransform transforms SHOELACE_SHELL -> shell, matching the teacher's
// KoanfLoader.envTransform convention. Variables that don't name a
// top-level config field (SHOELACE_DATA_DIR, SHOELACE_PROFILE, ...) get an
// empty key, which the env provider skips.
func envTransform(key, value string) (string, any) {
	key = strings.TrimPrefix(key, "SHOELACE_")
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", ".")

	if !knownTopLevelFields[key] {
		return "", nil
	}

	return key, value
}
