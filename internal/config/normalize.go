package config

import (
	"net/url"
	"strings"

	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// normalize applies the six normalization rules to raw, in order,
// producing a validated Config or an AggregateError describing every
// offending plugin/field.
func normalize(raw *rawConfig, order []string, rawMap map[string]any) (*pluginconfig.Config, error) {
	var fieldErrs []*FieldError

	fieldErrs = append(fieldErrs, checkUnknownFields(rawMap)...)

	shell := pluginconfig.ShellZsh
	if raw.Shell != "" {
		shell = pluginconfig.Shell(raw.Shell)
		if shell != pluginconfig.ShellBash && shell != pluginconfig.ShellZsh {
			fieldErrs = append(fieldErrs, &FieldError{
				Tag: ErrInvalidURL, Field: "shell",
				Msg: "shell must be \"bash\" or \"zsh\", got " + raw.Shell,
			})
		}
	}

	// Rule 4: template defaults. Built-ins are inserted first so any
	// user-defined template with the same name silently overrides them.
	templates := make(map[string]pluginconfig.Template, len(builtinTemplateNames)+len(raw.Templates))
	for name, tmpl := range builtinTemplates() {
		templates[name] = tmpl
	}

	for name, body := range raw.Templates {
		templates[name] = pluginconfig.Template{Name: name, Kind: inferTemplateKind(body), Body: body}
	}

	// Rule 5: global apply default.
	globalApply := raw.Apply
	if len(globalApply) == 0 {
		globalApply = defaultApply
	}

	// Rule 6: global match default.
	globalMatch := raw.Match
	if len(globalMatch) == 0 {
		globalMatch = defaultMatch(shell)
	}

	plugins := make([]pluginconfig.Plugin, 0, len(raw.Plugins))
	seenNames := make(map[string]bool, len(raw.Plugins))

	names := order
	// Any plugin present in the map but missed by the order scan (should
	// not happen for well-formed TOML) is appended so nothing is silently
	// dropped.
	for name := range raw.Plugins {
		found := false

		for _, n := range names {
			if n == name {
				found = true

				break
			}
		}

		if !found {
			names = append(names, name)
		}
	}

	for _, name := range names {
		rp, ok := raw.Plugins[name]
		if !ok {
			continue
		}

		if seenNames[name] {
			fieldErrs = append(fieldErrs, &FieldError{
				Tag: ErrDuplicateName, Plugin: name,
				Msg: "duplicate plugin name " + name,
			})

			continue
		}

		seenNames[name] = true

		plugin, errs := normalizePlugin(name, rp, globalApply)
		fieldErrs = append(fieldErrs, errs...)
		plugins = append(plugins, plugin)
	}

	if len(fieldErrs) > 0 {
		return nil, &AggregateError{Errors: fieldErrs}
	}

	var timeout pluginconfig.Duration
	if raw.Timeout != "" {
		if err := timeout.UnmarshalText([]byte(raw.Timeout)); err != nil {
			return nil, &AggregateError{Errors: []*FieldError{{
				Tag: ErrParse, Field: "timeout", Msg: "invalid timeout: " + err.Error(),
			}}}
		}
	}

	return &pluginconfig.Config{
		Shell:        shell,
		Plugins:      plugins,
		Templates:    templates,
		DefaultApply: globalApply,
		DefaultMatch: globalMatch,
		Timeout:      timeout,
	}, nil
}

// normalizePlugin applies rules 1-3 to a single plugin table.
func normalizePlugin(name string, rp rawPlugin, globalApply []string) (pluginconfig.Plugin, []*FieldError) {
	var errs []*FieldError

	sourceFields := map[string]string{
		"github": rp.GitHub, "gist": rp.Gist, "git": rp.Git,
		"remote": rp.Remote, "local": rp.Local,
	}

	var setSourceFields []string

	for field, val := range sourceFields {
		if val != "" {
			setSourceFields = append(setSourceFields, field)
		}
	}

	// Rule 3: inline exclusivity.
	if rp.Inline != "" {
		if len(setSourceFields) > 0 || rp.Branch != "" || rp.Tag != "" || rp.Rev != "" || rp.Dir != "" {
			errs = append(errs, &FieldError{
				Tag: ErrConflictingFields, Plugin: name,
				Msg: "inline plugin must not carry source-related fields",
			})
		}

		return pluginconfig.Plugin{
			Name:     name,
			Inline:   rp.Inline,
			Profiles: rp.Profiles,
		}, errs
	}

	// Rule 1: source shorthand exclusivity.
	if len(setSourceFields) > 1 {
		errs = append(errs, &FieldError{
			Tag: ErrConflictingFields, Plugin: name,
			Msg: "conflicting source fields: " + strings.Join(setSourceFields, ", "),
		})

		return pluginconfig.Plugin{Name: name}, errs
	}

	if len(setSourceFields) == 0 {
		errs = append(errs, &FieldError{
			Tag: ErrMissingSource, Plugin: name,
			Msg: "plugin has no source (one of github/gist/git/remote/local/inline required)",
		})

		return pluginconfig.Plugin{Name: name}, errs
	}

	source, err := buildSource(setSourceFields[0], sourceFields[setSourceFields[0]])
	if err != nil {
		errs = append(errs, &FieldError{
			Tag: ErrInvalidURL, Plugin: name, Field: setSourceFields[0],
			Msg: err.Error(),
		})

		return pluginconfig.Plugin{Name: name}, errs
	}

	// Rule 2: reference selection.
	var refFields []string
	if rp.Branch != "" {
		refFields = append(refFields, "branch")
	}

	if rp.Tag != "" {
		refFields = append(refFields, "tag")
	}

	if rp.Rev != "" {
		refFields = append(refFields, "rev")
	}

	if len(refFields) > 1 {
		errs = append(errs, &FieldError{
			Tag: ErrConflictingFields, Plugin: name,
			Msg: "conflicting reference fields: " + strings.Join(refFields, ", "),
		})
	} else if source.Kind == pluginconfig.SourceGit {
		switch {
		case rp.Rev != "":
			source.RefKind, source.Ref = pluginconfig.RefRev, rp.Rev
		case rp.Tag != "":
			source.RefKind, source.Ref = pluginconfig.RefTag, rp.Tag
		case rp.Branch != "":
			source.RefKind, source.Ref = pluginconfig.RefBranch, rp.Branch
		}
	}

	source.Submodules = true
	if rp.Submodules != nil {
		source.Submodules = *rp.Submodules
	}

	apply := rp.Apply
	if len(apply) == 0 {
		apply = globalApply
	}

	return pluginconfig.Plugin{
		Name:     name,
		Source:   source,
		Dir:      rp.Dir,
		Uses:     rp.Use,
		Apply:    apply,
		Profiles: rp.Profiles,
		Hooks:    rp.Hooks,
	}, errs
}

func buildSource(field, value string) (pluginconfig.Source, error) {
	switch field {
	case "github":
		return pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://github.com/" + value}, nil
	case "gist":
		return pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: "https://gist.github.com/" + value}, nil
	case "git":
		if _, err := url.Parse(value); err != nil || value == "" {
			return pluginconfig.Source{}, errParseURL(value)
		}

		return pluginconfig.Source{Kind: pluginconfig.SourceGit, URL: value}, nil
	case "remote":
		u, err := url.Parse(value)
		if err != nil || u.Scheme != "http" && u.Scheme != "https" {
			return pluginconfig.Source{}, errParseURL(value)
		}

		return pluginconfig.Source{Kind: pluginconfig.SourceRemote, URL: value}, nil
	case "local":
		if value == "" {
			return pluginconfig.Source{}, errParseURL(value)
		}

		return pluginconfig.Source{Kind: pluginconfig.SourceLocal, URL: value}, nil
	default:
		return pluginconfig.Source{}, errParseURL(value)
	}
}

func errParseURL(value string) error {
	return &FieldError{Tag: ErrInvalidURL, Msg: "invalid url or path: " + value}
}

// inferTemplateKind classifies a template body as each-file or once based
// on which context variables it references. User templates are plain
// strings with no explicit kind marker, so shoelace infers it: a body that
// mentions `files` or `hooks` and has no `{{ file }}` expression is once;
// every other body is each-file, including one that references only
// `dir` (so a user template with the built-in PATH body renders once per
// file).
func inferTemplateKind(body string) pluginconfig.TemplateKind {
	if strings.Contains(body, "files") || strings.Contains(body, "hooks") {
		if !strings.Contains(body, "{{ file ") && !strings.Contains(body, "{{file ") &&
			!strings.Contains(body, "{{ file}}") && !strings.Contains(body, "{{file}}") {
			return pluginconfig.TemplateOnce
		}
	}

	return pluginconfig.TemplateEachFile
}

func checkUnknownFields(rawMap map[string]any) []*FieldError {
	var errs []*FieldError

	for key := range rawMap {
		if !knownTopLevelFields[key] {
			errs = append(errs, &FieldError{
				Tag: ErrUnknownField, Field: key,
				Msg: "unknown top-level field " + key,
			})
		}
	}

	plugins, _ := rawMap["plugins"].(map[string]any)
	for name, v := range plugins {
		table, ok := v.(map[string]any)
		if !ok {
			continue
		}

		for key := range table {
			if !knownPluginFields[key] {
				errs = append(errs, &FieldError{
					Tag: ErrUnknownField, Plugin: name, Field: key,
					Msg: "unknown field " + key,
				})
			}
		}
	}

	return errs
}
