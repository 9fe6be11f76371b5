package iana

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultURL is the canonical IANA service-names registry in CSV form.
	DefaultURL = "https://www.iana.org/assignments/service-names-port-numbers/service-names-port-numbers.csv"

	// DefaultMaxAge is how long a downloaded registry stays fresh.
	DefaultMaxAge = 24 * time.Hour

	// DefaultFileName is the cache file name used under the cache directory.
	DefaultFileName = "service-names-port-numbers.csv"

	fetchTimeout = 10 * time.Second
)

// Cache keeps a local copy of the registry file and refreshes it when stale.
// The file's modification time is the only freshness signal.
type Cache struct {
	Path   string
	URL    string
	MaxAge time.Duration
	Client *http.Client
}

func NewCache(path string) *Cache {
	return &Cache{
		Path:   path,
		URL:    DefaultURL,
		MaxAge: DefaultMaxAge,
		Client: &http.Client{Timeout: fetchTimeout},
	}
}

// NeedsRefresh reports whether the cache file is absent or older than MaxAge
// relative to now.
func (c *Cache) NeedsRefresh(now time.Time) bool {
	info, err := os.Stat(c.Path)
	if err != nil {
		return true
	}
	return now.After(info.ModTime().Add(c.MaxAge))
}

// Refresh downloads the registry and replaces the cache file when it is stale.
// A fresh cache makes Refresh a no-op. The download lands in a temporary file
// in the same directory and is renamed into place, so a failed or interrupted
// fetch never clobbers the previous copy.
func (c *Cache) Refresh(ctx context.Context) error {
	if !c.NeedsRefresh(time.Now()) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return fmt.Errorf("fetch registry: %w", err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch registry: unexpected status %s", resp.Status)
	}

	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".registry-*")
	if err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.Path); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}
