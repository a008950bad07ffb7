package config

import "github.com/smykla-skalski/shoelace/pkg/pluginconfig"

// builtinTemplateNames are the four templates inserted when the user has
// not defined one of these names themselves.
var builtinTemplateNames = []string{"PATH", "path", "fpath", "source"}

// builtinTemplates returns the four built-in templates with their fixed
// kind: PATH/path/fpath only ever need the plugin directory and so are
// "once" templates; source needs the individual file and is "each-file".
func builtinTemplates() map[string]pluginconfig.Template {
	return map[string]pluginconfig.Template{
		"PATH":   {Name: "PATH", Kind: pluginconfig.TemplateOnce, Body: `export PATH="{{ dir }}:$PATH"`},
		"path":   {Name: "path", Kind: pluginconfig.TemplateOnce, Body: `export PATH="{{ dir }}:$PATH"`},
		"fpath":  {Name: "fpath", Kind: pluginconfig.TemplateOnce, Body: `fpath=( "{{ dir }}" $fpath )`},
		"source": {Name: "source", Kind: pluginconfig.TemplateEachFile, Body: `source "{{ file }}"`},
	}
}

// defaultMatch returns the shell-specific ordered default match patterns.
func defaultMatch(shell pluginconfig.Shell) []string {
	switch shell {
	case pluginconfig.ShellBash:
		return []string{
			"{{name}}.plugin.bash",
			"{*.plugin.bash,*.bash,*.sh}",
		}
	case pluginconfig.ShellZsh:
		return []string{
			"{{name}}.plugin.zsh",
			"{*.plugin.zsh,*.zsh,*.sh}",
			"{*.zsh-theme}",
		}
	default:
		return []string{
			"{{name}}.plugin.zsh",
			"{*.plugin.zsh,*.zsh,*.sh}",
			"{*.zsh-theme}",
		}
	}
}

// defaultApply is the global default `apply` list used when neither the
// plugin nor the Config declares one.
var defaultApply = []string{"source"}
