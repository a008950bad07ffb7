// Package lockfile implements two layers of mutual exclusion: a
// cross-process global advisory lock on a well-known path under the data
// directory, and an in-memory per-source lock keyed by canonical source
// identity so two plugins sharing a source don't race within one process.
package lockfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrHeld is returned by TryAcquire when another process already holds the
// global lock.
var ErrHeld = errors.New("lockfile: already held by another process")

// Global is a cross-process advisory lock backed by the atomic creation of a
// well-known file via O_CREATE|O_EXCL, the same primitive the teacher uses
// for its first-run migration guard. There is no flock-style library
// anywhere in the dependency set this project draws from, so the lock is
// built directly on the one guarantee every OS gives for free: exclusive
// file creation is atomic.
type Global struct {
	path string
	file *os.File
}

// NewGlobal creates a Global lock bound to path (the CLI uses
// "<lock_file>.global", i.e. "<data_dir>/plugins.lock.global" by default).
func NewGlobal(path string) *Global {
	return &Global{path: path}
}

// TryAcquire attempts to take the lock without blocking, returning ErrHeld
// if another process holds it.
func (g *Global) TryAcquire() error {
	if err := os.MkdirAll(filepath.Dir(g.path), 0o700); err != nil {
		return errors.Wrapf(err, "failed to create directory for lock file %s", g.path)
	}

	f, err := os.OpenFile(g.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return ErrHeld
		}

		return errors.Wrapf(err, "failed to create lock file %s", g.path)
	}

	g.file = f

	return nil
}

// Acquire blocks until the lock is obtained or ctx is done, polling at the
// given interval. onWait, if non-nil, is invoked exactly once the first time
// acquisition blocks, so the caller can print a one-time informational
// message.
func (g *Global) Acquire(ctx context.Context, pollInterval time.Duration, onWait func()) error {
	err := g.TryAcquire()
	if err == nil {
		return nil
	}

	if !errors.Is(err, ErrHeld) {
		return err
	}

	if onWait != nil {
		onWait()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "timed out waiting for lock")
		case <-ticker.C:
			err := g.TryAcquire()
			if err == nil {
				return nil
			}

			if !errors.Is(err, ErrHeld) {
				return err
			}
		}
	}
}

// Release closes and removes the lock file. It is safe to call on a Global
// that never successfully acquired the lock.
func (g *Global) Release() error {
	if g.file == nil {
		return nil
	}

	if err := g.file.Close(); err != nil {
		return errors.Wrap(err, "failed to close lock file")
	}

	g.file = nil

	if err := os.Remove(g.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove lock file")
	}

	return nil
}

// Sources is the in-memory, per-process lock over individual source
// acquisitions, keyed by canonical source identity (pluginconfig.Source's
// CanonicalKey). It ensures two plugins declared against the same
// repository or remote URL never clone/fetch/download concurrently, even
// though the worker pool may schedule them on different goroutines.
type Sources struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSources creates an empty Sources lock table.
func NewSources() *Sources {
	return &Sources{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the per-source lock for key is held.
func (s *Sources) Lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]

	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()

	return l.Unlock
}
