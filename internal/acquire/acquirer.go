package acquire

import (
	"context"
	"net/http"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/smykla-skalski/shoelace/internal/lockfile"
	"github.com/smykla-skalski/shoelace/internal/source"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// Acquirer materializes every plugin's Source on disk in parallel.
type Acquirer struct {
	layout  *source.Layout
	sources *lockfile.Sources
	jobs    int
	git     *gitSource
	remote  *remoteSource
	local   *localSource
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithJobs overrides the worker pool width (default runtime.NumCPU()).
func WithJobs(n int) Option {
	return func(a *Acquirer) {
		if n > 0 {
			a.jobs = n
		}
	}
}

// WithHTTPClient overrides the HTTP client used for Remote sources.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Acquirer) {
		a.remote = newRemoteSource(client)
	}
}

// New creates an Acquirer rooted at layout, with its own per-source lock
// table.
func New(layout *source.Layout, opts ...Option) *Acquirer {
	a := &Acquirer{
		layout:  layout,
		sources: lockfile.NewSources(),
		jobs:    runtime.NumCPU(),
		git:     newGitSource(),
		remote:  newRemoteSource(nil),
		local:   newLocalSource(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Acquire materializes every distinct source referenced by plugins, in
// parallel on a worker pool of width a.jobs, coalescing plugins that share
// a source. It returns a map from plugin name to Materialized result;
// per-plugin/per-source failures are isolated and returned together as an
// *AggregateError, never aborting sibling work.
func (a *Acquirer) Acquire(ctx context.Context, plugins []pluginconfig.Plugin) (map[string]Materialized, error) {
	type outcome struct {
		plugin string
		mat    Materialized
		err    error
	}

	// Coalesce plugins by canonical source key so a shared source is
	// acquired exactly once.
	bySource := make(map[string][]string)
	sourceOf := make(map[string]pluginconfig.Source)

	for _, p := range plugins {
		if p.IsInline() {
			continue
		}

		key := p.Source.CanonicalKey()
		bySource[key] = append(bySource[key], p.Name)
		sourceOf[key] = p.Source
	}

	results := make(chan outcome, len(plugins))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(a.jobs)

	for key, names := range bySource {
		key, names := key, names
		src := sourceOf[key]

		group.Go(func() error {
			unlock := a.sources.Lock(key)
			defer unlock()

			mat, err := a.acquireOne(gctx, src)

			for _, name := range names {
				results <- outcome{plugin: name, mat: mat, err: err}
			}

			return nil
		})
	}

	// errgroup.Wait only reports the first unhandled error from a Go func
	// that actually returns one; acquireOne errors are instead funneled
	// through the results channel per plugin so every failure is isolated
	// and reported, not just the first.
	_ = group.Wait()
	close(results)

	materialized := make(map[string]Materialized, len(plugins))

	var pluginErrs []*PluginError

	for o := range results {
		if o.err != nil {
			pluginErrs = append(pluginErrs, &PluginError{Plugin: o.plugin, Err: o.err})

			continue
		}

		materialized[o.plugin] = o.mat
	}

	if len(pluginErrs) > 0 {
		return materialized, &AggregateError{Errors: pluginErrs}
	}

	return materialized, nil
}

func (a *Acquirer) acquireOne(ctx context.Context, src pluginconfig.Source) (Materialized, error) {
	switch src.Kind {
	case pluginconfig.SourceGit:
		return a.git.Acquire(ctx, src, a.layout.RepoDir(src), a.layout.MarkerPath(src))
	case pluginconfig.SourceRemote:
		return a.remote.Acquire(ctx, src, a.layout.DownloadPath(src), a.layout.MetaPath(src))
	case pluginconfig.SourceLocal:
		return a.local.Acquire(src.URL)
	default:
		return Materialized{}, errNoSuchKind
	}
}
