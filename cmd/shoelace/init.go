package main

import (
	"github.com/spf13/cobra"

	internalconfig "github.com/smykla-skalski/shoelace/internal/config"
)

var initShell string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty config file",
	Long: `init creates an empty config file at the discovered or overridden
config path, if one doesn't already exist. It is a thin, flag-driven
command — there is no interactive setup wizard.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initShell, "shell", "zsh", "default shell for the new config (bash|zsh)")
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	d := dirs()

	return internalconfig.NewWriter().EnsureFile(d.ConfigFile, initShell)
}
