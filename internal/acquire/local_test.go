package acquire

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSource_Acquire_Directory(t *testing.T) {
	dir := t.TempDir()

	mat, err := newLocalSource().Acquire(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, mat.RootDir)
}

func TestLocalSource_Acquire_Missing(t *testing.T) {
	_, err := newLocalSource().Acquire(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalSource_Acquire_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := newLocalSource().Acquire(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupted)
}
