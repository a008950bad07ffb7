package resolve

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/shoelace/internal/acquire"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// Resolver expands a normalized Config and an acquired source table into an
// ordered list of ResolvedPlugin records.
type Resolver struct{}

// New creates a Resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve profile-filters plugins, then resolves each enabled plugin in
// declaration order. Per-plugin failures are isolated and returned
// together as an *AggregateError.
func (r *Resolver) Resolve(
	cfg *pluginconfig.Config,
	materialized map[string]acquire.Materialized,
	activeProfiles map[string]struct{},
) ([]ResolvedPlugin, error) {
	var (
		resolved []ResolvedPlugin
		errs     []*PluginError
	)

	for _, p := range cfg.Plugins {
		if !p.Enabled(activeProfiles) {
			continue
		}

		if p.IsInline() {
			resolved = append(resolved, ResolvedPlugin{Name: p.Name, Inline: p.Inline})

			continue
		}

		rp, err := r.resolvePlugin(p, materialized, cfg)
		if err != nil {
			errs = append(errs, &PluginError{Plugin: p.Name, Err: err})

			continue
		}

		resolved = append(resolved, rp)
	}

	if len(errs) > 0 {
		return resolved, &AggregateError{Errors: errs}
	}

	return resolved, nil
}

func (r *Resolver) resolvePlugin(
	p pluginconfig.Plugin,
	materialized map[string]acquire.Materialized,
	cfg *pluginconfig.Config,
) (ResolvedPlugin, error) {
	mat, ok := materialized[p.Name]
	if !ok {
		return ResolvedPlugin{}, ErrNotAcquired
	}

	// Step 1: root directory, with path-escape containment.
	root := mat.RootDir

	var pluginDir string

	if p.Dir != "" {
		joined := filepath.Join(root, p.Dir)

		rel, err := filepath.Rel(root, joined)
		if err != nil || strings.HasPrefix(rel, "..") {
			return ResolvedPlugin{}, errors.Wrapf(ErrPathEscape, "dir %q escapes source tree", p.Dir)
		}

		pluginDir = joined
	}

	searchRoot := root
	if pluginDir != "" {
		searchRoot = pluginDir
	}

	// Step 2: file discovery.
	var files []string

	switch p.Source.Kind {
	case pluginconfig.SourceRemote:
		files = []string{mat.RootDir}
	default:
		var err error

		files, err = discoverFiles(searchRoot, p.Uses, effectiveMatch(p, cfg))
		if err != nil {
			return ResolvedPlugin{}, err
		}
	}

	apply := p.Apply
	if len(apply) == 0 {
		apply = cfg.DefaultApply
	}

	// Step 3: validation. A plugin applying a template the Config doesn't
	// define is caught here, at resolve time, rather than deferred until
	// the Renderer hits the same gap.
	for _, name := range apply {
		if _, ok := cfg.Templates[name]; !ok {
			return ResolvedPlugin{}, errors.Wrapf(ErrNoTemplate, "plugin %q: template %q", p.Name, name)
		}
	}

	// No-matches only matters for each-file templates.
	if len(files) == 0 && appliesEachFile(apply, cfg.Templates) {
		return ResolvedPlugin{}, errors.Wrapf(ErrNoMatches, "plugin %q matched no files", p.Name)
	}

	return ResolvedPlugin{
		Name:      p.Name,
		SourceDir: root,
		PluginDir: pluginDir,
		Files:     files,
		Apply:     apply,
		Hooks:     p.Hooks,
	}, nil
}

func effectiveMatch(p pluginconfig.Plugin, cfg *pluginconfig.Config) []string {
	match := make([]string, len(cfg.DefaultMatch))
	for i, pat := range cfg.DefaultMatch {
		match[i] = strings.ReplaceAll(pat, "{{name}}", p.Name)
	}

	return match
}

// discoverFiles evaluates `use` patterns in order with first-seen-position
// dedup, falling back to the first default `match` pattern that yields any
// result.
func discoverFiles(root string, uses, defaultMatch []string) ([]string, error) {
	if len(uses) > 0 {
		return globPatternsUnion(root, uses)
	}

	for _, pattern := range defaultMatch {
		matches, err := globOne(root, pattern)
		if err != nil {
			return nil, err
		}

		if len(matches) > 0 {
			return matches, nil
		}
	}

	return nil, nil
}

// globPatternsUnion evaluates each pattern in order, appending its
// lexicographically sorted matches, suppressing duplicates while
// preserving first-seen position.
func globPatternsUnion(root string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)

	var out []string

	for _, pattern := range patterns {
		matches, err := globOne(root, pattern)
		if err != nil {
			return nil, err
		}

		for _, m := range matches {
			if seen[m] {
				continue
			}

			seen[m] = true

			out = append(out, m)
		}
	}

	return out, nil
}

func globOne(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern)
	if err != nil {
		return nil, errors.Wrapf(ErrNoMatches, "invalid pattern %q: %s", pattern, err)
	}

	sort.Strings(matches)

	abs := make([]string, len(matches))
	for i, m := range matches {
		abs[i] = filepath.Join(root, filepath.FromSlash(m))
	}

	return abs, nil
}

func appliesEachFile(apply []string, templates map[string]pluginconfig.Template) bool {
	for _, name := range apply {
		if t, ok := templates[name]; ok && t.Kind == pluginconfig.TemplateEachFile {
			return true
		}
	}

	return false
}
