package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeTools()
	c.normalizeTMDB()
	c.normalizeFanart()
	if err := c.normalizePosters(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeScan() {
	c.Scan.PreferredLanguage = strings.ToLower(strings.TrimSpace(c.Scan.PreferredLanguage))
	if c.Scan.PreferredLanguage == "" {
		c.Scan.PreferredLanguage = defaultPreferredLanguage
	}
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = defaultExtensions()
	}
	normalized := make([]string, 0, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Scan.Extensions = normalized
	if c.Scan.ProbeTimeout <= 0 {
		c.Scan.ProbeTimeout = defaultProbeTimeout
	}
	if c.Scan.DoviTimeout <= 0 {
		c.Scan.DoviTimeout = defaultDoviTimeout
	}
	if c.Scan.SweepInterval <= 0 {
		c.Scan.SweepInterval = defaultSweepInterval
	}
	if c.Scan.SettleDelay < 0 {
		c.Scan.SettleDelay = defaultSettleDelay
	}
	if c.Scan.AudioEstimateRatio <= 0 || c.Scan.AudioEstimateRatio > 1 {
		c.Scan.AudioEstimateRatio = defaultAudioEstimateRatio
	}
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = "ffprobe"
	}
	if strings.TrimSpace(c.Tools.MediaInfo) == "" {
		c.Tools.MediaInfo = "mediainfo"
	}
	if strings.TrimSpace(c.Tools.DoviTool) == "" {
		c.Tools.DoviTool = "dovi_tool"
	}
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimSpace(c.TMDB.BaseURL)
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageURL = strings.TrimSpace(c.TMDB.ImageURL)
	if c.TMDB.ImageURL == "" {
		c.TMDB.ImageURL = defaultTMDBImageURL
	}
	c.TMDB.Language = strings.ToLower(strings.TrimSpace(c.TMDB.Language))
	if c.TMDB.Language == "" {
		c.TMDB.Language = c.Scan.PreferredLanguage
	}
}

func (c *Config) normalizeFanart() {
	if c.Fanart.APIKey == "" {
		if value, ok := os.LookupEnv("FANART_API_KEY"); ok {
			c.Fanart.APIKey = strings.TrimSpace(value)
		}
	}
	c.Fanart.BaseURL = strings.TrimSpace(c.Fanart.BaseURL)
	if c.Fanart.BaseURL == "" {
		c.Fanart.BaseURL = defaultFanartBaseURL
	}
}

func (c *Config) normalizePosters() error {
	c.Posters.Source = strings.ToLower(strings.TrimSpace(c.Posters.Source))
	if c.Posters.Source == "" {
		c.Posters.Source = defaultPosterSource
	}
	if strings.TrimSpace(c.Posters.CacheDir) == "" {
		c.Posters.CacheDir = defaultPosterCacheDir
	}
	var err error
	if c.Posters.CacheDir, err = expandPath(c.Posters.CacheDir); err != nil {
		return fmt.Errorf("posters.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
