package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validatePosters(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.MediaDir == "" {
		return errors.New("paths.media_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	if c.Scan.ProbeTimeout <= 0 {
		return errors.New("scan.probe_timeout must be positive")
	}
	if c.Scan.DoviTimeout <= 0 {
		return errors.New("scan.dovi_timeout must be positive")
	}
	return nil
}

func (c *Config) validatePosters() error {
	switch c.Posters.Source {
	case "tmdb", "fanart":
		return nil
	default:
		return fmt.Errorf("posters.source must be %q or %q, got %q", "tmdb", "fanart", c.Posters.Source)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "console", "json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}
