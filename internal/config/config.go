package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	MediaDir string `toml:"media_dir"`
	DataDir  string `toml:"data_dir"`
	TempDir  string `toml:"temp_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
}

// Scan contains configuration for the characterization pipeline.
type Scan struct {
	// PreferredLanguage is an ISO 639-1 code; audio selection prefers tracks
	// tagged with it before falling back to English.
	PreferredLanguage string   `toml:"preferred_language"`
	Extensions        []string `toml:"extensions"`
	ProbeTimeout      int      `toml:"probe_timeout"`
	DoviTimeout       int      `toml:"dovi_timeout"`
	SweepInterval     int      `toml:"sweep_interval"`
	// SettleDelay is how long the watcher waits after a create event before
	// probing, so partially written files are not characterized.
	SettleDelay int `toml:"settle_delay"`
	// AudioEstimateRatio scales the container-level bitrate when no per-stream
	// audio bitrate is available.
	AudioEstimateRatio float64 `toml:"audio_estimate_ratio"`
}

// Tools contains the external analysis binaries.
type Tools struct {
	FFmpeg    string `toml:"ffmpeg"`
	FFprobe   string `toml:"ffprobe"`
	MediaInfo string `toml:"mediainfo"`
	DoviTool  string `toml:"dovi_tool"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	ImageURL string `toml:"image_url"`
	Language string `toml:"language"`
}

// Fanart contains configuration for the Fanart.tv API.
type Fanart struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Posters contains artwork lookup and caching configuration.
type Posters struct {
	Source   string `toml:"source"`
	CacheDir string `toml:"cache_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelscan.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Scan    Scan    `toml:"scan"`
	Tools   Tools   `toml:"tools"`
	TMDB    TMDB    `toml:"tmdb"`
	Fanart  Fanart  `toml:"fanart"`
	Posters Posters `toml:"posters"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelscan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelscan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// MediaDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.TempDir, c.Paths.LogDir, c.Posters.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.MediaDir) != "" {
		_ = os.MkdirAll(c.Paths.MediaDir, 0o755)
	}
	return nil
}

// RecognizedExtension reports whether path carries one of the configured
// video extensions.
func (c *Config) RecognizedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range c.Scan.Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
