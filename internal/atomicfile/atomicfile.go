// Package atomicfile writes files atomically via a temp-file-then-rename,
// the pattern every component that persists state to the data/config
// directories uses so a crash or concurrent reader never observes a
// partially written file.
package atomicfile

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// Write writes data to path by first writing to "<path>.tmp" in the same
// directory, then renaming it into place, so a reader never observes a
// partially written file and a crash mid-write leaves the original
// untouched.
func Write(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrap(err, "failed to write temp file")
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return errors.Wrap(err, "failed to rename temp file into place")
	}

	return nil
}
