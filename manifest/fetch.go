// Package manifest downloads the deployment manifest applied to the cluster.
package manifest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// maxManifestBytes bounds how much of a response body is read.
const maxManifestBytes = 16 << 20

type Fetcher struct {
	http *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Download performs a single GET of url, stores the body at dest and returns
// it. There is no retry and no integrity check.
func (f *Fetcher) Download(ctx context.Context, url, dest string) ([]byte, error) {
	start := time.Now()
	body, err := f.get(ctx, url)
	if err != nil {
		fetchTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	fetchTotal.WithLabelValues("success").Inc()
	fetchDuration.Observe(time.Since(start).Seconds())

	if err := os.WriteFile(dest, body, 0644); err != nil {
		return nil, fmt.Errorf("write manifest to %s: %w", dest, err)
	}

	log.Debug().Str("url", url).Str("path", dest).Int("bytes", len(body)).Msg("manifest downloaded")
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(body) > maxManifestBytes {
		return nil, fmt.Errorf("manifest at %s exceeds %d bytes", url, maxManifestBytes)
	}

	if resp.StatusCode >= 400 {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode}
	}
	return body, nil
}

type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}
