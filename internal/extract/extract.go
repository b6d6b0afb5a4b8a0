// Package extract downloads source CSV files over HTTP to the local
// filesystem.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Options configures the downloader.
type Options struct {
	// Timeout bounds a single download, connection included. Zero means
	// the default of 10 minutes.
	Timeout time.Duration
}

// Downloader fetches files over HTTP.
type Downloader struct {
	client *http.Client
}

// New returns a Downloader with the given options.
func New(opts Options) *Downloader {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	return &Downloader{
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// Fetch downloads url to dest, creating or truncating the file. A non-2xx
// response is an error. On failure the partially written file is left in
// place, matching the original job's behavior.
func (d *Downloader) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}

	return nil
}
