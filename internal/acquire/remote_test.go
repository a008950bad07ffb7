package acquire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

func TestRemoteSource_Acquire_Downloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("plugin content"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "x.zsh")
	meta := path + ".meta"

	src := pluginconfig.Source{Kind: pluginconfig.SourceRemote, URL: srv.URL}

	mat, err := newRemoteSource(nil).Acquire(context.Background(), src, path, meta)
	require.NoError(t, err)
	assert.Equal(t, path, mat.RootDir)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "plugin content", string(body))
}

func TestRemoteSource_Acquire_NotModifiedRetainsCachedCopy(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		if r.Header.Get("If-None-Match") == `"abc"` {
			w.WriteHeader(http.StatusNotModified)

			return
		}

		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("v1"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "x.zsh")
	meta := path + ".meta"

	src := pluginconfig.Source{Kind: pluginconfig.SourceRemote, URL: srv.URL}

	_, err := newRemoteSource(nil).Acquire(context.Background(), src, path, meta)
	require.NoError(t, err)

	_, err = newRemoteSource(nil).Acquire(context.Background(), src, path, meta)
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(body))
	assert.Equal(t, 2, calls)
}

func TestRemoteSource_Acquire_TransportErrorRetainsCachedCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.zsh")
	require.NoError(t, os.WriteFile(path, []byte("cached"), 0o600))

	src := pluginconfig.Source{Kind: pluginconfig.SourceRemote, URL: "http://127.0.0.1:0/does-not-exist"}

	mat, err := newRemoteSource(nil).Acquire(context.Background(), src, path, path+".meta")
	require.NoError(t, err)
	assert.Equal(t, path, mat.RootDir)
}
