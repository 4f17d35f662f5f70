package extract

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Downloader fetches remote documents over HTTP with a size cap and an
// allowlist of URL path patterns.
type Downloader struct {
	maxSize  int64
	patterns []string
	client   *http.Client
}

func NewDownloader(maxSize int64, patterns []string, timeout time.Duration) *Downloader {
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Downloader{
		maxSize:  maxSize,
		patterns: patterns,
		client:   &http.Client{Timeout: timeout},
	}
}

// Allowed reports whether the URL's path matches any configured pattern.
// With no patterns configured, every URL is allowed.
func (d *Downloader) Allowed(rawURL string) bool {
	if len(d.patterns) == 0 {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(strings.TrimPrefix(u.Path, "/"))

	for _, pattern := range d.patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// Download fetches the document bytes, enforcing the size cap.
func (d *Downloader) Download(rawURL string) ([]byte, error) {
	if !d.Allowed(rawURL) {
		return nil, fmt.Errorf("document URL not allowed: %s", rawURL)
	}

	resp, err := d.client.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download document: status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("document exceeds maximum size of %d bytes", d.maxSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("document body is empty")
	}

	return data, nil
}
