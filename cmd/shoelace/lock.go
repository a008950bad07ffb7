package main

import (
	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Acquire and resolve every plugin, writing the lock artifact",
	Long: `lock runs the Acquirer and Resolver over the config file and writes
the fully resolved lock artifact, without rendering a shell script.`,
	RunE: runLock,
}

func init() {
	rootCmd.AddCommand(lockCmd)
}

func runLock(cmd *cobra.Command, _ []string) error {
	d := dirs()

	cfg, err := loadConfig(d)
	if err != nil {
		return err
	}

	resolved, pipelineErr := acquireAndResolve(cmd.Context(), d, cfg)

	// Per-plugin failures don't block writing the lock for whatever did
	// resolve; the aggregated error still propagates so the process exits
	// nonzero.
	if err := writeLock(d, cfg, resolved); err != nil {
		return err
	}

	return pipelineErr
}
