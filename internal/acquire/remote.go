package acquire

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/smykla-skalski/shoelace/internal/atomicfile"
	"github.com/smykla-skalski/shoelace/pkg/pluginconfig"
)

// condMeta is the sidecar ETag/Last-Modified state persisted next to a
// downloaded Remote source, grounded on the teacher's audit-sidecar
// pattern (internal/exceptions/audit.go), so repeated `lock` runs issue a
// conditional GET instead of re-downloading unchanged content.
type condMeta struct {
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// remoteSource materializes a pluginconfig.SourceRemote via a conditional
// HTTP GET, caching ETag/Last-Modified in a sidecar file so unchanged
// sources skip re-downloading. Redirects follow net/http's default client
// behavior.
type remoteSource struct {
	client *http.Client
}

func newRemoteSource(client *http.Client) *remoteSource {
	if client == nil {
		client = http.DefaultClient
	}

	return &remoteSource{client: client}
}

// Acquire downloads src.URL to path, retaining the previously cached copy
// on a 304 or transport error.
func (r *remoteSource) Acquire(ctx context.Context, src pluginconfig.Source, path, metaPath string) (Materialized, error) {
	meta := readMeta(metaPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return Materialized{}, errors.Wrapf(ErrDownload, "%s: %s", src.URL, err)
	}

	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}

	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return Materialized{RootDir: path}, nil
		}

		return Materialized{}, errors.Wrapf(ErrDownload, "%s: %s", src.URL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return Materialized{RootDir: path}, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Materialized{}, errors.Wrapf(ErrDownload, "%s: %s", src.URL, err)
		}

		if err := atomicfile.Write(path, body, 0o644); err != nil { //nolint:gosec // downloaded plugin content is not secret
			return Materialized{}, errors.Wrapf(ErrDownload, "failed to persist %s: %s", path, err)
		}

		writeMeta(metaPath, condMeta{
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		})

		return Materialized{RootDir: path}, nil
	default:
		if _, statErr := os.Stat(path); statErr == nil {
			return Materialized{RootDir: path}, nil
		}

		return Materialized{}, errors.Wrapf(ErrDownload, "%s: unexpected status %d", src.URL, resp.StatusCode)
	}
}

func readMeta(path string) condMeta {
	var meta condMeta

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return meta
	}

	_ = json.Unmarshal(data, &meta)

	return meta
}

func writeMeta(path string, meta condMeta) {
	data, err := json.Marshal(meta)
	if err != nil {
		return
	}

	_ = atomicfile.Write(path, data, 0o600)
}
