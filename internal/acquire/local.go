package acquire

import (
	"os"

	"github.com/cockroachdb/errors"
)

// localSource materializes a pluginconfig.SourceLocal: verify the path
// exists and is a directory. No copying happens; the path is used in
// place.
type localSource struct{}

func newLocalSource() *localSource { return &localSource{} }

// Acquire stats path and returns it unchanged as the materialized root.
func (*localSource) Acquire(path string) (Materialized, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Materialized{}, errors.Wrapf(ErrNotFound, "%s: %s", path, err)
	}

	if !info.IsDir() {
		return Materialized{}, errors.Wrapf(ErrCorrupted, "%s is not a directory", path)
	}

	return Materialized{RootDir: path}, nil
}
