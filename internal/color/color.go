// Package color provides terminal color detection and the small set of
// ANSI helpers shoelace's CLI uses to highlight its one-time lock-wait
// message and aggregated error report.
package color

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Profile detects the current color profile based on environment variables
// and flags. Returns true if color output should be enabled.
//
// Color is disabled when any of:
//   - NO_COLOR env is set (any value, per https://no-color.org)
//   - CLICOLOR=0
//   - TERM=dumb
//   - noColorFlag is true (--no-color CLI flag)
func Profile(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if os.Getenv("CLICOLOR") == "0" {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	return true
}

// IsTerminal returns true if the given file descriptor is a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Bold, Red, and Yellow wrap s in the matching ANSI attribute, bypassing
// fatih/color's own TTY autodetection — callers gate on Profile themselves,
// since shoelace's notion of "should colorize" also accounts for NO_COLOR/
// CLICOLOR/--no-color, not just whether stderr is a terminal.
func Bold(s string) string {
	return sprint(s, color.Bold)
}

// Red renders s in red, used for the aggregated error report.
func Red(s string) string {
	return sprint(s, color.FgRed)
}

// Yellow renders s in yellow, used for the lock-wait message.
func Yellow(s string) string {
	return sprint(s, color.FgYellow)
}

func sprint(s string, attr color.Attribute) string {
	c := color.New(attr)
	c.EnableColor()

	return c.Sprint(s)
}
