// Package main provides the CLI entry point for shoelace.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes: 0 success, 1 user/config error, 2 I/O or network error, other
// nonzero reserved for unexpected crashes.
const (
	ExitSuccess     = 0
	ExitConfigError = 1
	ExitIOError     = 2
	ExitCrash       = 3
)

var (
	flagConfigDir  string
	flagDataDir    string
	flagConfigFile string
	flagLockFile   string
	flagNoColor    bool
	flagDebug      bool
	flagTrace      bool
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "shoelace: unexpected error: %v\n", r)

			exitCode = ExitCrash
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		return exitCodeFor(err)
	}

	return ExitSuccess
}

var rootCmd = &cobra.Command{
	Use:   "shoelace",
	Short: "A declarative shell plugin manager",
	Long: `shoelace reads a declarative plugin manifest, acquires each plugin's
source (git, remote file, or local directory), resolves which files apply,
and renders the shell script that sources them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "override the config directory")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the data directory")
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config-file", "", "override the config file path")
	rootCmd.PersistentFlags().StringVar(&flagLockFile, "lock-file", "", "override the lock file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagTrace, "trace", false, "enable trace logging")
}
