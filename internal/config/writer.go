package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/shoelace/internal/atomicfile"
)

// ConfigFileMode is the permission mode for written config files.
const ConfigFileMode = 0o600

// ConfigDirMode is the permission mode for the config file's directory.
const ConfigDirMode = 0o700

// Writer mutates the on-disk config file text directly. It backs the
// `add`/`remove`/`edit` CLI subcommands, which stay thin glue around the
// Config model — they rewrite the file, they don't carry business logic
// of their own.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// EnsureFile creates an empty config file with the given default shell if
// path doesn't already exist.
func (*Writer) EnsureFile(path string, shell string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), ConfigDirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", filepath.Dir(path))
	}

	body := fmt.Sprintf("shell = %q\napply = [\"source\"]\n", shell)

	return atomicfile.Write(path, []byte(body), ConfigFileMode)
}

// AddPlugin appends a new `[plugins.<name>]` table built from fields (in
// caller-specified key order) to the config file.
func (*Writer) AddPlugin(path, name string, fields [][2]string) error {
	existing, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	var buf bytes.Buffer

	buf.Write(existing)

	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}

	fmt.Fprintf(&buf, "\n[plugins.%s]\n", name)

	for _, kv := range fields {
		fmt.Fprintf(&buf, "%s = %s\n", kv[0], kv[1])
	}

	return atomicfile.Write(path, buf.Bytes(), ConfigFileMode)
}

// pluginTableHeaderFor matches any header belonging to plugin name (the
// table itself or a nested sub-table like `.hooks`).
func pluginTableHeaderFor(name string) *regexp.Regexp {
	return regexp.MustCompile(`^\[plugins\.` + regexp.QuoteMeta(name) + `(\.[^\]]+)?\]`)
}

// RemovePlugin deletes the `[plugins.<name>]` table (and any nested
// sub-tables) from the config file.
func (*Writer) RemovePlugin(path, name string) error {
	existing, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}

	header := pluginTableHeaderFor(name)
	anyHeader := regexp.MustCompile(`^\[`)

	var out bytes.Buffer

	skipping := false

	scanner := bufio.NewScanner(bytes.NewReader(existing))
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case header.MatchString(line):
			skipping = true

			continue
		case skipping && anyHeader.MatchString(line):
			skipping = false
		}

		if skipping {
			continue
		}

		out.WriteString(line)
		out.WriteByte('\n')
	}

	return atomicfile.Write(path, out.Bytes(), ConfigFileMode)
}

// sortedKeys returns m's keys in sorted order, for building the fields
// slice for AddPlugin from a map. Nothing in the repository calls it.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
