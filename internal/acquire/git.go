package acquire

import (
	"context"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"

	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// markerFile is the name of the file recording a successful clone. Its
// absence after a directory already exists means a prior clone was
// interrupted, and the directory is wiped and recloned rather than reused.
const markerFile = ".shoelace-marker"

// gitSource materializes a pluginconfig.SourceGit. Grounded on
// internal/git/repository.go's go-git v6 usage, generalized from read-only
// introspection to clone/fetch/checkout/submodule-update.
type gitSource struct{}

func newGitSource() *gitSource { return &gitSource{} }

// Acquire clones src into dir if it doesn't exist yet, or fetches and
// updates an existing clone, then checks out the resolved ref.
func (g *gitSource) Acquire(ctx context.Context, src pluginconfig.Source, dir, markerPath string) (Materialized, error) {
	info, statErr := os.Stat(dir)

	switch {
	case statErr == nil && !info.IsDir():
		return Materialized{}, errors.Wrapf(ErrCorrupted, "%s is not a directory; remove it and retry", dir)
	case statErr == nil:
		if _, err := os.Stat(markerPath); err != nil {
			// Interrupted mid-clone on a prior run: start over.
			if err := os.RemoveAll(dir); err != nil {
				return Materialized{}, errors.Wrapf(ErrCorrupted, "failed to remove incomplete clone %s: %s", dir, err)
			}

			return g.clone(ctx, src, dir, markerPath)
		}

		return g.updateExisting(ctx, src, dir, markerPath)
	default:
		return g.clone(ctx, src, dir, markerPath)
	}
}

func (g *gitSource) clone(ctx context.Context, src pluginconfig.Source, dir, markerPath string) (Materialized, error) {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:               src.URL,
		RecurseSubmodules: recurseDepth(src.Submodules),
	})
	if err != nil {
		return Materialized{}, errors.Wrapf(ErrClone, "%s: %s", src.URL, err)
	}

	hash, err := resolveRef(repo, src)
	if err != nil {
		return Materialized{}, err
	}

	if err := checkoutAndSubmodules(repo, hash, src.Submodules); err != nil {
		return Materialized{}, err
	}

	if err := writeMarker(markerPath); err != nil {
		return Materialized{}, err
	}

	return Materialized{RootDir: dir, CommitHash: hash.String()}, nil
}

func (g *gitSource) updateExisting(ctx context.Context, src pluginconfig.Source, dir, markerPath string) (Materialized, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Materialized{}, errors.Wrapf(ErrFetch, "failed to open %s: %s", dir, err)
	}

	// Step 2: if pinned to an immutable commit already checked out, skip
	// network I/O entirely.
	if src.RefKind == pluginconfig.RefRev && isFullHash(src.Ref) {
		if head, err := repo.Head(); err == nil && head.Hash().String() == src.Ref {
			return Materialized{RootDir: dir, CommitHash: src.Ref}, nil
		}
	}

	if err := repo.FetchContext(ctx, &git.FetchOptions{RemoteName: "origin", Force: true}); err != nil &&
		!errors.Is(err, git.NoErrAlreadyUpToDate) {
		return Materialized{}, errors.Wrapf(ErrFetch, "%s: %s", src.URL, err)
	}

	hash, err := resolveRef(repo, src)
	if err != nil {
		return Materialized{}, err
	}

	if err := checkoutAndSubmodules(repo, hash, src.Submodules); err != nil {
		return Materialized{}, err
	}

	if err := writeMarker(markerPath); err != nil {
		return Materialized{}, err
	}

	return Materialized{RootDir: dir, CommitHash: hash.String()}, nil
}

// resolveRef picks a commit for src: an explicit rev wins, then a tag, then
// a branch, falling back to the remote's default HEAD when none is set.
func resolveRef(repo *git.Repository, src pluginconfig.Source) (plumbing.Hash, error) {
	switch src.RefKind {
	case pluginconfig.RefRev:
		return resolveRevision(repo, src.Ref)
	case pluginconfig.RefTag:
		return resolveTag(repo, src.Ref)
	case pluginconfig.RefBranch:
		return resolveRevision(repo, "refs/remotes/origin/"+src.Ref)
	case pluginconfig.RefNone:
		return resolveDefaultHead(repo)
	default:
		return resolveDefaultHead(repo)
	}
}

func resolveRevision(repo *git.Repository, rev string) (plumbing.Hash, error) {
	h, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(ErrCheckout, "failed to resolve %q: %s", rev, err)
	}

	return *h, nil
}

// resolveTag tries a literal tag name first; if none matches, and the value
// parses as a semver constraint, the highest satisfying tag among the
// repository's tags wins. A literal tag always takes priority.
func resolveTag(repo *git.Repository, tag string) (plumbing.Hash, error) {
	if h, err := resolveRevision(repo, "refs/tags/"+tag); err == nil {
		return h, nil
	}

	constraint, err := semver.NewConstraint(tag)
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(ErrCheckout, "tag %q not found and is not a valid semver constraint", tag)
	}

	tagsIter, err := repo.Tags()
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(ErrCheckout, "failed to list tags: %s", err)
	}

	var (
		best      *semver.Version
		bestHash  plumbing.Hash
		bestFound bool
	)

	err = tagsIter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()

		v, err := semver.NewVersion(name)
		if err != nil {
			return nil //nolint:nilerr // non-semver tags are skipped, not fatal
		}

		if !constraint.Check(v) {
			return nil
		}

		if best == nil || v.GreaterThan(best) {
			best = v
			bestHash = ref.Hash()
			bestFound = true
		}

		return nil
	})
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(ErrCheckout, "failed to iterate tags: %s", err)
	}

	if !bestFound {
		return plumbing.ZeroHash, errors.Wrapf(ErrCheckout, "no tag satisfies constraint %q", tag)
	}

	return bestHash, nil
}

// resolveDefaultHead resolves the remote's default branch HEAD.
func resolveDefaultHead(repo *git.Repository) (plumbing.Hash, error) {
	remote, err := repo.Remote("origin")
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(ErrCheckout, "failed to get remote: %s", err)
	}

	refs, err := remote.List(&git.ListOptions{})
	if err != nil {
		return plumbing.ZeroHash, errors.Wrapf(ErrCheckout, "failed to list remote refs: %s", err)
	}

	for _, ref := range refs {
		if ref.Name() == plumbing.HEAD {
			if ref.Type() == plumbing.SymbolicReference {
				target := ref.Target()

				for _, r := range refs {
					if r.Name() == target {
						return r.Hash(), nil
					}
				}
			}

			return ref.Hash(), nil
		}
	}

	return plumbing.ZeroHash, errors.Wrap(ErrCheckout, "failed to determine remote default HEAD")
}

func checkoutAndSubmodules(repo *git.Repository, hash plumbing.Hash, submodules bool) error {
	wt, err := repo.Worktree()
	if err != nil {
		return errors.Wrap(ErrCheckout, err.Error())
	}

	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash}); err != nil {
		return errors.Wrapf(ErrCheckout, "%s: %s", hash, err)
	}

	if !submodules {
		return nil
	}

	subs, err := wt.Submodules()
	if err != nil {
		return errors.Wrap(ErrCheckout, "failed to list submodules: "+err.Error())
	}

	for _, sub := range subs {
		if err := sub.Update(&git.SubmoduleUpdateOptions{
			Init:              true,
			RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
		}); err != nil {
			return errors.Wrapf(ErrCheckout, "submodule %s: %s", sub.Config().Name, err)
		}
	}

	return nil
}

func recurseDepth(enabled bool) git.SubmoduleRescursivity {
	if enabled {
		return git.DefaultSubmoduleRecursionDepth
	}

	return git.NoRecurseSubmodules
}

func isFullHash(s string) bool {
	if len(s) != 40 {
		return false
	}

	return strings.Trim(s, "0123456789abcdefABCDEF") == ""
}

func writeMarker(path string) error {
	if err := os.WriteFile(path, []byte("ok\n"), 0o600); err != nil {
		return errors.Wrapf(ErrClone, "failed to write marker %s: %s", path, err)
	}

	return nil
}
