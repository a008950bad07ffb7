package main

import (
	"github.com/spf13/cobra"

	internalconfig "github.com/smykla-skalski/shoelace/internal/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a plugin from the config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(_ *cobra.Command, args []string) error {
	d := dirs()

	return internalconfig.NewWriter().RemovePlugin(d.ConfigFile, args[0])
}
