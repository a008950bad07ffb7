package resolve

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/smykla-skalski/shoelace/internal/atomicfile"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// rootPlaceholders, longest prefix first, interpolated into absolute paths
// written to the lock artifact so the artifact stays usable after the
// home/config/data roots move between the `lock` and `source` CLI
// invocations (e.g. a SHOELACE_DATA_DIR override changes between runs).
func rootPlaceholders(art *Artifact) []struct{ prefix, token string } {
	roots := []struct{ prefix, token string }{
		{art.DataDir, "${data}"},
		{art.ConfigDir, "${config}"},
		{art.HomeDir, "${home}"},
	}

	sort.Slice(roots, func(i, j int) bool { return len(roots[i].prefix) > len(roots[j].prefix) })

	return roots
}

// placeholderize rewrites the longest matching root prefix in value with
// its placeholder token, leaving value unchanged if no root matches.
func placeholderize(value string, art *Artifact) string {
	for _, r := range rootPlaceholders(art) {
		if r.prefix != "" && strings.HasPrefix(value, r.prefix) {
			return r.token + strings.TrimPrefix(value, r.prefix)
		}
	}

	return value
}

// LockFileMode is the permission mode for the written lock artifact.
const LockFileMode = 0o600

// WriteArtifact serializes art to path with stable, deterministic key
// order. Plain `toml.Marshal` of the Go struct is not used for the
// top-level and per-plugin sections because map/slice field order from
// reflection is not guaranteed stable — the same reasoning
// internal/config/writer.go applies to config files. Only leaf
// scalar/slice values within a single plugin table are delegated to
// go-toml's encoder. Absolute paths under the home/config/data roots are
// rewritten to `${home}`/`${config}`/`${data}` placeholders so the
// artifact survives those roots moving before the next read. The write is
// atomic: serialize to a temp file in the same directory, then rename into
// place.
func WriteArtifact(path string, art *Artifact) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "version = %d\n", art.Version)
	fmt.Fprintf(&buf, "home_dir = %q\n", art.HomeDir)
	fmt.Fprintf(&buf, "config_dir = %q\n", art.ConfigDir)
	fmt.Fprintf(&buf, "data_dir = %q\n", art.DataDir)
	fmt.Fprintf(&buf, "config_file = %q\n", placeholderize(art.ConfigFile, art))

	for _, p := range art.Plugins {
		buf.WriteString("\n[[plugin]]\n")
		fmt.Fprintf(&buf, "name = %q\n", p.Name)

		if p.Inline != "" {
			fmt.Fprintf(&buf, "inline = %q\n", p.Inline)

			continue
		}

		fmt.Fprintf(&buf, "source_dir = %q\n", placeholderize(p.SourceDir, art))

		if p.PluginDir != "" {
			fmt.Fprintf(&buf, "plugin_dir = %q\n", placeholderize(p.PluginDir, art))
		}

		files := make([]string, len(p.Files))
		for i, f := range p.Files {
			files[i] = placeholderize(f, art)
		}

		if err := encodeLeaf(&buf, "files", files); err != nil {
			return err
		}

		if err := encodeLeaf(&buf, "apply", p.Apply); err != nil {
			return err
		}

		if len(p.Hooks) > 0 {
			if err := encodeLeaf(&buf, "hooks", sortedMap(p.Hooks)); err != nil {
				return err
			}
		}
	}

	names := make([]string, 0, len(art.Templates))
	for name := range art.Templates {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		t := art.Templates[name]
		buf.WriteString("\n[templates." + tomlBareOrQuoted(name) + "]\n")
		fmt.Fprintf(&buf, "kind = %q\n", templateKindString(t.Kind))
		fmt.Fprintf(&buf, "body = %q\n", t.Body)
	}

	return atomicfile.Write(path, buf.Bytes(), LockFileMode)
}

func encodeLeaf(buf *bytes.Buffer, key string, value any) error {
	// Tables are emitted inline so a map value (hooks) stays a key of the
	// current [[plugin]] entry instead of opening a top-level [key] table.
	enc := toml.NewEncoder(buf).SetTablesInline(true)
	if err := enc.Encode(map[string]any{key: value}); err != nil {
		return errors.Wrapf(err, "failed to encode %s", key)
	}

	return nil
}

func sortedMap(m map[string]string) map[string]string {
	// go-toml encodes map keys in sorted order already; this helper exists
	// so the intent reads explicitly at the call site.
	return m
}

func templateKindString(k pluginconfig.TemplateKind) string {
	if k == pluginconfig.TemplateOnce {
		return "once"
	}

	return "each-file"
}

func tomlBareOrQuoted(name string) string {
	bare := true

	for _, r := range name {
		if !(r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			bare = false

			break
		}
	}

	if bare && name != "" {
		return name
	}

	return fmt.Sprintf("%q", name)
}
