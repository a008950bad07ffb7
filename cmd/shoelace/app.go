package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/smykla-skalski/shoelace/internal/acquire"
	"github.com/smykla-skalski/shoelace/internal/color"
	internalconfig "github.com/smykla-skalski/shoelace/internal/config"
	"github.com/smykla-skalski/shoelace/internal/lockfile"
	"github.com/smykla-skalski/shoelace/internal/render"
	"github.com/smykla-skalski/shoelace/internal/resolve"
	"github.com/smykla-skalski/shoelace/internal/source"
	"github.com/smykla-skalski/shoelace/internal/xdg"
	"github.com/smykla-skalski/shoelace/pkg/logger"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// lockPollInterval is how often Global.Acquire retries while another
// process holds the lock.
const lockPollInterval = 200 * time.Millisecond

// dirs resolves the XDG locations this invocation operates against, honoring
// the explicit CLI flags set on rootCmd.
func dirs() xdg.Dirs {
	return xdg.Discover(xdg.Overrides{
		ConfigDir:  flagConfigDir,
		DataDir:    flagDataDir,
		ConfigFile: flagConfigFile,
		LockFile:   flagLockFile,
	})
}

// appLogger builds the process-wide logger, writing to stderr at the level
// implied by --debug/--trace, matching the teacher's debug/trace flag
// convention.
func appLogger() logger.Logger {
	return logger.NewFileLoggerWithWriter(os.Stderr, flagDebug, flagTrace)
}

func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	fmt.Fprintln(os.Stderr, formatError(err))

	switch {
	case errors.Is(err, internalconfig.ErrParse),
		errors.Is(err, internalconfig.ErrUnknownField),
		errors.Is(err, internalconfig.ErrConflictingFields),
		errors.Is(err, internalconfig.ErrDuplicateName),
		errors.Is(err, internalconfig.ErrMissingSource),
		errors.Is(err, internalconfig.ErrInvalidURL),
		errors.Is(err, internalconfig.ErrInvalidPermission),
		errors.Is(err, resolve.ErrNoMatches),
		errors.Is(err, resolve.ErrPathEscape),
		errors.Is(err, resolve.ErrNoTemplate),
		errors.Is(err, render.ErrSyntax),
		errors.Is(err, render.ErrMissingFilter),
		errors.Is(err, render.ErrMissingTemplate):
		return ExitConfigError
	default:
		return ExitIOError
	}
}

// formatError names the offending plugin (if any), the stage, and a
// one-line cause — per-plugin aggregate errors are expanded one line per
// failure; everything else is a single line. Colorized in red when the
// terminal supports it.
func formatError(err error) string {
	useColor := color.Profile(flagNoColor)

	var lines []string

	switch agg := unwrapAggregate(err); {
	case agg != nil:
		lines = agg
	default:
		lines = []string{err.Error()}
	}

	prefix := "Error: "
	if useColor {
		prefix = color.Bold(color.Red("Error: "))
	}

	out := ""

	for i, line := range lines {
		if i > 0 {
			out += "\n"
		}

		if useColor && i > 0 {
			line = color.Red(line)
		}

		out += prefix + line

		if i == 0 {
			prefix = ""
		}
	}

	return out
}

// unwrapAggregate flattens acquire/resolve's *AggregateError shapes into
// one line per offending plugin, or returns nil if err isn't one.
func unwrapAggregate(err error) []string {
	switch e := err.(type) { //nolint:errorlint // deliberate type switch over the two known aggregate shapes
	case *acquire.AggregateError:
		lines := make([]string, 0, len(e.Errors))
		for _, pe := range e.Errors {
			lines = append(lines, pe.Error())
		}

		return lines
	case *resolve.AggregateError:
		lines := make([]string, 0, len(e.Errors))
		for _, pe := range e.Errors {
			lines = append(lines, pe.Error())
		}

		return lines
	default:
		return nil
	}
}

// loadConfig loads and validates the config file at d.ConfigFile.
func loadConfig(d xdg.Dirs) (*pluginconfig.Config, error) {
	return internalconfig.NewLoader().Load(d.ConfigFile, nil)
}

// acquireAndResolve runs the Acquirer then the Resolver over cfg, acquiring
// the global cross-process lock for the duration and printing a one-time
// informational message if another instance already holds it.
func acquireAndResolve(ctx context.Context, d xdg.Dirs, cfg *pluginconfig.Config) ([]resolve.ResolvedPlugin, error) {
	// An optional global timeout covering the whole acquisition phase. There
	// is no per-plugin override today — the Acquirer has no per-source
	// context to thread it through.
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Timeout))
		defer cancel()
	}

	lock := lockfile.NewGlobal(d.LockFile + ".global")

	onWait := func() {
		// Only worth announcing on an interactive terminal; a scripted
		// invocation piping stderr elsewhere gets no benefit from it.
		if !color.IsTerminal(os.Stderr) {
			return
		}

		msg := "waiting for another shoelace instance to finish…"
		if color.Profile(flagNoColor) {
			msg = color.Yellow(msg)
		}

		fmt.Fprintln(os.Stderr, msg)
	}

	if err := lock.Acquire(ctx, lockPollInterval, onWait); err != nil {
		return nil, errors.Wrap(err, "failed to acquire lock")
	}

	defer func() {
		_ = lock.Release()
	}()

	log := appLogger()
	start := time.Now()

	layout := source.NewLayout(d.DataDir)
	acquirer := acquire.New(layout)

	materialized, acqErr := acquirer.Acquire(ctx, cfg.Plugins)
	if acqErr != nil && materialized == nil {
		return nil, acqErr
	}

	log.Info("acquisition complete",
		"plugins", len(cfg.Plugins),
		"sources", len(materialized),
		"started", humanize.Time(start),
	)

	resolved, resErr := resolve.New().Resolve(cfg, materialized, xdg.ActiveProfiles())

	switch {
	case acqErr != nil:
		return resolved, acqErr
	case resErr != nil:
		return resolved, resErr
	default:
		return resolved, nil
	}
}

// writeLock serializes cfg's resolved plugins into the lock artifact at
// d.LockFile.
func writeLock(d xdg.Dirs, cfg *pluginconfig.Config, resolved []resolve.ResolvedPlugin) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return errors.Wrap(err, "failed to get home directory")
	}

	art := &resolve.Artifact{
		Version:    resolve.ArtifactVersion,
		HomeDir:    homeDir,
		ConfigDir:  d.ConfigDir,
		DataDir:    d.DataDir,
		ConfigFile: d.ConfigFile,
		Plugins:    resolved,
		Templates:  cfg.Templates,
	}

	return resolve.WriteArtifact(d.LockFile, art)
}

// lockIsStale reports whether the lock artifact at d.LockFile is missing or
// older than the config file, meaning source must re-lock before rendering.
func lockIsStale(d xdg.Dirs) (bool, error) {
	lockInfo, err := os.Stat(d.LockFile)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, errors.Wrapf(err, "failed to stat %s", d.LockFile)
	}

	cfgInfo, err := os.Stat(d.ConfigFile)
	if err != nil {
		return false, errors.Wrapf(err, "failed to stat %s", d.ConfigFile)
	}

	return lockInfo.ModTime().Before(cfgInfo.ModTime()), nil
}

// renderFromLock reads the lock artifact and renders it without touching
// the network — the fast path used when the lock is already fresh.
func renderFromLock(d xdg.Dirs) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}

	art, err := resolve.ReadArtifact(d.LockFile, homeDir, d.ConfigDir, d.DataDir)
	if err != nil {
		return "", err
	}

	return render.New().Render(art)
}
