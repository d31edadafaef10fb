package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// maxPayloadBytes bounds how much image data a single thumbnail fetch will
// read. Anything larger is not a thumbnail.
const maxPayloadBytes = 20 << 20

// MediaFetcher retrieves raw media bytes from remote URLs or the local
// filesystem, whichever the retrieval URL points at.
type MediaFetcher struct {
	client *http.Client
}

// NewMediaFetcher creates a fetcher with a bounded request timeout
func NewMediaFetcher(timeout time.Duration) *MediaFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MediaFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch reads the full payload behind a retrieval URL
func (f *MediaFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return f.fetchRemote(ctx, url)
	}
	return f.fetchLocal(url)
}

func (f *MediaFetcher) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return data, nil
}

func (f *MediaFetcher) fetchLocal(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > maxPayloadBytes {
		return nil, fmt.Errorf("media file %s exceeds %d bytes", path, int64(maxPayloadBytes))
	}
	return os.ReadFile(path)
}
