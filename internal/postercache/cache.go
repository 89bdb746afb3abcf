package postercache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelscan/internal/logging"
	"reelscan/internal/services/fanart"
	"reelscan/internal/services/tmdb"
)

// URLPrefix marks poster URLs that point into the local cache.
const URLPrefix = "/poster/"

// Cache downloads poster images into a local directory and serves stable
// cache paths for them.
type Cache struct {
	dir        string
	httpClient *http.Client
	trusted    func(string) bool
	logger     *slog.Logger
}

// Option configures the cache.
type Option func(*Cache)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTrustedURLCheck overrides the trusted-host validation (primarily for
// tests).
func WithTrustedURLCheck(check func(string) bool) Option {
	return func(c *Cache) {
		if check != nil {
			c.trusted = check
		}
	}
}

// New creates a poster cache rooted at dir.
func New(dir string, logger *slog.Logger, opts ...Option) (*Cache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("poster cache directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create poster cache directory: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	cache := &Cache{
		dir:        dir,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		trusted: func(raw string) bool {
			return tmdb.IsImageURL(raw) || fanart.IsImageURL(raw)
		},
		logger: logging.WithComponent(logger, "postercache"),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache, nil
}

// Filename derives the deterministic cache name for a poster. Known-source
// URLs with a TMDB ID get readable names; everything else hashes the URL.
func Filename(tmdbID int64, posterURL string) string {
	if tmdbID > 0 {
		switch {
		case fanart.IsImageURL(posterURL):
			return fmt.Sprintf("fanart_%d.jpg", tmdbID)
		case tmdb.IsImageURL(posterURL):
			return fmt.Sprintf("tmdb_%d.jpg", tmdbID)
		}
	}
	sum := md5.Sum([]byte(posterURL))
	return "poster_" + hex.EncodeToString(sum[:]) + ".jpg"
}

// Fetch ensures the poster is cached locally and returns its cache URL.
// URLs outside the trusted image hosts are never downloaded and pass
// through unchanged; a failed download also returns the original URL so
// callers still get something renderable.
func (c *Cache) Fetch(ctx context.Context, tmdbID int64, posterURL string) string {
	if posterURL == "" {
		return ""
	}
	if !c.trusted(posterURL) {
		c.logger.Warn("refusing to cache poster from untrusted host", logging.String("url", posterURL))
		return posterURL
	}

	filename := Filename(tmdbID, posterURL)
	cachePath := filepath.Join(c.dir, filename)
	if _, err := os.Stat(cachePath); err == nil {
		return URLPrefix + filename
	}

	if err := c.download(ctx, posterURL, cachePath); err != nil {
		c.logger.Warn("poster download failed", logging.String("url", posterURL), logging.Error(err))
		return posterURL
	}
	c.logger.Info("poster cached", logging.String("file", filename))
	return URLPrefix + filename
}

// Delete removes the cached file behind a cache URL. Non-cache URLs and
// already-missing files are ignored.
func (c *Cache) Delete(posterURL string) {
	if !strings.HasPrefix(posterURL, URLPrefix) {
		return
	}
	filename := filepath.Base(strings.TrimPrefix(posterURL, URLPrefix))
	if filename == "." || filename == string(filepath.Separator) {
		return
	}
	cachePath := filepath.Join(c.dir, filename)
	if err := os.Remove(cachePath); err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("remove cached poster", logging.String("file", filename), logging.Error(err))
		}
		return
	}
	c.logger.Info("removed cached poster", logging.String("file", filename))
}

// Resolve maps a cache URL to the on-disk path for serving.
func (c *Cache) Resolve(posterURL string) (string, bool) {
	if !strings.HasPrefix(posterURL, URLPrefix) {
		return "", false
	}
	filename := filepath.Base(strings.TrimPrefix(posterURL, URLPrefix))
	path := filepath.Join(c.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) download(ctx context.Context, posterURL, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, posterURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poster host returned %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(c.dir, "poster-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return fmt.Errorf("write poster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close poster: %w", err)
	}
	if err := os.Rename(tmp.Name(), cachePath); err != nil {
		return fmt.Errorf("finalize poster: %w", err)
	}
	return nil
}
