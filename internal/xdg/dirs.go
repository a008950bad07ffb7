// Package xdg resolves the directories and files shoelace reads and
// writes, in precedence order: explicit CLI flag, then environment
// variable, then OS default.
package xdg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const appName = "shoelace"

func userHome() (string, error) {
	return os.UserHomeDir()
}

// ConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func ConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}

	home, err := userHome()
	if err != nil {
		return filepath.Join("~", ".config")
	}

	return filepath.Join(home, ".config")
}

// DataHome returns $XDG_DATA_HOME or ~/.local/share.
func DataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}

	home, err := userHome()
	if err != nil {
		return filepath.Join("~", ".local", "share")
	}

	return filepath.Join(home, ".local", "share")
}

// Dirs is the resolved set of paths a single shoelace invocation operates
// against, captured once at startup.
type Dirs struct {
	ConfigDir  string
	DataDir    string
	ConfigFile string
	LockFile   string
}

// Overrides carries the explicit CLI flag values for directory discovery.
// Empty fields fall through to the environment variable, then the OS
// default.
type Overrides struct {
	ConfigDir  string
	DataDir    string
	ConfigFile string
	LockFile   string
}

// Discover resolves Dirs using the precedence chain: Overrides field,
// then the matching SHOELACE_* environment variable, then the OS default.
func Discover(o Overrides) Dirs {
	configDir := firstNonEmpty(o.ConfigDir, os.Getenv("SHOELACE_CONFIG_DIR"), filepath.Join(ConfigHome(), appName))
	dataDir := firstNonEmpty(o.DataDir, os.Getenv("SHOELACE_DATA_DIR"), filepath.Join(DataHome(), appName))
	configFile := firstNonEmpty(o.ConfigFile, os.Getenv("SHOELACE_CONFIG_FILE"), filepath.Join(configDir, "plugins.toml"))
	lockFile := firstNonEmpty(o.LockFile, os.Getenv("SHOELACE_LOCK_FILE"), filepath.Join(dataDir, "plugins.lock"))

	return Dirs{
		ConfigDir:  configDir,
		DataDir:    dataDir,
		ConfigFile: configFile,
		LockFile:   lockFile,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

// ActiveProfiles returns the comma-separated SHOELACE_PROFILE env var split
// into a set, or an empty set if unset.
func ActiveProfiles() map[string]struct{} {
	raw := os.Getenv("SHOELACE_PROFILE")
	profiles := make(map[string]struct{})

	if raw == "" {
		return profiles
	}

	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			profiles[p] = struct{}{}
		}
	}

	return profiles
}

// ExpandPath resolves a leading ~ to the user's home directory. Returns the
// path unchanged if it doesn't start with ~.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := userHome()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	switch {
	case path == "~":
		return home, nil
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:]), nil
	default:
		return "", errors.Newf("paths starting with ~ must be either ~ or ~/subdir, got %q", path)
	}
}

// EnsureDir creates a directory with 0700 permissions if it doesn't exist,
// tightening permissions on an existing directory that is too open.
func EnsureDir(path string) error {
	const dirMode = 0o700

	if err := os.MkdirAll(path, dirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat directory %s", path)
	}

	if info.Mode().Perm() != dirMode {
		if err := os.Chmod(path, dirMode); err != nil {
			return errors.Wrapf(err, "failed to set permissions on %s", path)
		}
	}

	return nil
}
