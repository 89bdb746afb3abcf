package testsupport

import (
	"path/filepath"
	"testing"

	"reelscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.MediaDir = filepath.Join(base, "media")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.TempDir = filepath.Join(base, "tmp")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Posters.CacheDir = filepath.Join(base, "posters")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return &cfg
}

// WithPreferredLanguage sets the scan language preference.
func WithPreferredLanguage(language string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scan.PreferredLanguage = language
	}
}

// WithMediaDir overrides the media directory.
func WithMediaDir(dir string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.MediaDir = dir
	}
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.APIKey = key
	}
}
