package main

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	internalconfig "github.com/smykla-skalski/shoelace/internal/config"
)

var (
	addGitHub   string
	addGit      string
	addRemote   string
	addLocal    string
	addInline   string
	addBranch   string
	addTag      string
	addRev      string
	addDir      string
	addUse      []string
	addApply    []string
	addProfiles []string
)

var addCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a plugin to the config file",
	Long: `add appends a new [plugins.<name>] table to the config file. It
performs no acquisition or validation of its own — run "shoelace lock"
afterward to acquire and resolve the new plugin.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addGitHub, "github", "", `source shorthand, "owner/repo"`)
	addCmd.Flags().StringVar(&addGit, "git", "", "source: git URL")
	addCmd.Flags().StringVar(&addRemote, "remote", "", "source: remote file URL")
	addCmd.Flags().StringVar(&addLocal, "local", "", "source: local directory path")
	addCmd.Flags().StringVar(&addInline, "inline", "", "inline shell snippet (mutually exclusive with the source flags)")
	addCmd.Flags().StringVar(&addBranch, "branch", "", "pin to a branch")
	addCmd.Flags().StringVar(&addTag, "tag", "", "pin to a tag or semver constraint")
	addCmd.Flags().StringVar(&addRev, "rev", "", "pin to a commit revision")
	addCmd.Flags().StringVar(&addDir, "dir", "", "subdirectory within the source tree")
	addCmd.Flags().StringSliceVar(&addUse, "use", nil, "override default match patterns")
	addCmd.Flags().StringSliceVar(&addApply, "apply", nil, "override the template apply list")
	addCmd.Flags().StringSliceVar(&addProfiles, "profiles", nil, "gate this plugin to the given profiles")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	name := args[0]

	fields, err := addPluginFields()
	if err != nil {
		return err
	}

	d := dirs()

	return internalconfig.NewWriter().AddPlugin(d.ConfigFile, name, fields)
}

func addPluginFields() ([][2]string, error) {
	var fields [][2]string

	sourceCount := 0

	appendString := func(key, val string) {
		if val == "" {
			return
		}

		sourceCount++

		fields = append(fields, [2]string{key, quoteTOML(val)})
	}

	appendString("github", addGitHub)
	appendString("git", addGit)
	appendString("remote", addRemote)
	appendString("local", addLocal)

	if addInline != "" {
		sourceCount++

		fields = append(fields, [2]string{"inline", quoteTOML(addInline)})
	}

	if sourceCount == 0 {
		return nil, errors.New("add: one of --github, --git, --remote, --local, or --inline is required")
	}

	if sourceCount > 1 {
		return nil, errors.New("add: only one source flag may be set")
	}

	refCount := 0

	appendRef := func(key, val string) {
		if val == "" {
			return
		}

		refCount++

		fields = append(fields, [2]string{key, quoteTOML(val)})
	}

	appendRef("branch", addBranch)
	appendRef("tag", addTag)
	appendRef("rev", addRev)

	if refCount > 1 {
		return nil, errors.New("add: only one of --branch, --tag, --rev may be set")
	}

	if addDir != "" {
		fields = append(fields, [2]string{"dir", quoteTOML(addDir)})
	}

	if len(addUse) > 0 {
		fields = append(fields, [2]string{"use", arrayTOML(addUse)})
	}

	if len(addApply) > 0 {
		fields = append(fields, [2]string{"apply", arrayTOML(addApply)})
	}

	if len(addProfiles) > 0 {
		fields = append(fields, [2]string{"profiles", arrayTOML(addProfiles)})
	}

	return fields, nil
}

func quoteTOML(s string) string {
	return fmt.Sprintf("%q", s)
}

func arrayTOML(vals []string) string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = quoteTOML(v)
	}

	return "[" + strings.Join(quoted, ", ") + "]"
}
