// Package acquire materializes every plugin's Source on the local
// filesystem in parallel, under per-source locks. The cross-process lock
// is taken by the caller around the whole acquisition.
package acquire

// Materialized is the result of acquiring a single Source: the absolute
// path its content now lives at, and (for Git sources) the concrete commit
// hash checked out.
type Materialized struct {
	// RootDir is the absolute path to the source on disk: a repo clone
	// directory, the downloaded file itself for a Remote source, or the
	// Local source's own path.
	RootDir string

	// CommitHash is the resolved commit hash for Git sources; empty for
	// Remote and Local sources.
	CommitHash string
}
