package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Print the rendered shell script for this config",
	Long: `source prints the shell script a user's rc file should eval. If the
lock artifact is missing or older than the config file, it is regenerated
first.`,
	RunE: runSource,
}

func init() {
	rootCmd.AddCommand(sourceCmd)
}

func runSource(cmd *cobra.Command, _ []string) error {
	d := dirs()

	stale, err := lockIsStale(d)
	if err != nil {
		return err
	}

	if stale {
		cfg, err := loadConfig(d)
		if err != nil {
			return err
		}

		resolved, pipelineErr := acquireAndResolve(cmd.Context(), d, cfg)
		if err := writeLock(d, cfg, resolved); err != nil {
			return err
		}

		if pipelineErr != nil {
			return pipelineErr
		}
	}

	out, err := renderFromLock(d)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), out)

	return nil
}
