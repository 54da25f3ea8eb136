package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// DownloadError carries the HTTP status and a truncated body excerpt for
// run-log diagnostics.
type DownloadError struct {
	URL    string
	Status int
	Body   string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: status %d: %s", e.URL, e.Status, e.Body)
}

const maxErrBody = 512

// Fetcher downloads feed payloads to local temp files. Streaming the body
// straight into the decompressor stalled on slow affiliate links, so the
// download completes to disk first and processing reads from there.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	dir     string
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		// Datafeed exports run to hundreds of MB; the timeout bounds the
		// whole download, not a single read.
		client:  &http.Client{Timeout: 10 * time.Minute},
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Fetch GETs url and returns the path of a temp file holding the body.
// The caller owns the file and must remove it on every exit path.
// Non-2xx responses fail fast with a *DownloadError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "giftfeed-sync/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return "", &DownloadError{URL: url, Status: resp.StatusCode, Body: string(body)}
	}

	tmp, err := os.CreateTemp(f.dir, "feed-*.download")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write feed to disk: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
