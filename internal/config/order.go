package config

import (
	"bufio"
	"bytes"
	"regexp"
)

// pluginHeader matches a top-level `[plugins.<name>]` table header (not a
// nested `[plugins.<name>.hooks]` one).
var pluginHeader = regexp.MustCompile(`^\[plugins\.([^.\]]+)\]\s*(#.*)?$`)

// pluginDeclarationOrder scans the raw TOML bytes and returns plugin names
// in the order their `[plugins.<name>]` header first appears.
//
// koanf/go-toml decode plugins into a Go map, which loses the file's
// declaration order — and that order is semantically significant (it's
// the shell source order). Rather than pull in an order-preserving map
// type, the order is recovered directly from the source text, which is
// the only place it still exists after parsing.
func pluginDeclarationOrder(raw []byte) []string {
	var order []string

	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())

		m := pluginHeader.FindSubmatch(line)
		if m == nil {
			continue
		}

		name := unquoteTOMLKey(string(m[1]))
		if !seen[name] {
			seen[name] = true

			order = append(order, name)
		}
	}

	return order
}

// unquoteTOMLKey strips surrounding quotes a bare or quoted TOML key may
// carry, e.g. `"my plugin"` -> `my plugin`.
func unquoteTOMLKey(key string) string {
	if len(key) >= 2 {
		if (key[0] == '"' && key[len(key)-1] == '"') || (key[0] == '\'' && key[len(key)-1] == '\'') {
			return key[1 : len(key)-1]
		}
	}

	return key
}
