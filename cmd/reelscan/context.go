package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"reelscan/internal/audio"
	"reelscan/internal/config"
	"reelscan/internal/hdr"
	"reelscan/internal/logging"
	"reelscan/internal/mediameta"
	"reelscan/internal/postercache"
	"reelscan/internal/probe/dovi"
	"reelscan/internal/probe/ffprobe"
	"reelscan/internal/probe/mediainfo"
	"reelscan/internal/registry"
	"reelscan/internal/scanner"
	"reelscan/internal/services/fanart"
	"reelscan/internal/services/tmdb"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) buildLogger(toFile bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	outputs := []string{"stdout"}
	if toFile && cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "reelscan.log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// pipeline bundles the wired characterization stack. Close releases the
// registry store.
type pipeline struct {
	Store    *registry.Store
	Registry *registry.Registry
	Scanner  *scanner.Scanner
	Posters  *postercache.Cache
}

func (p *pipeline) Close() error {
	if p.Store != nil {
		return p.Store.Close()
	}
	return nil
}

// buildPipeline wires the probe adapters, classifier, selector, extractor,
// catalog resolver, poster cache, and persisted registry from configuration.
func (c *commandContext) buildPipeline(logger *slog.Logger) (*pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	ffprobeClient := ffprobe.New(cfg.Tools.FFprobe, cfg.Scan.ProbeTimeout)
	mediainfoClient := mediainfo.New(cfg.Tools.MediaInfo, cfg.Scan.ProbeTimeout)
	doviDetector := dovi.New(cfg.Tools.FFmpeg, cfg.Tools.DoviTool, cfg.Scan.DoviTimeout, cfg.Paths.TempDir)

	classifier := hdr.NewClassifier(doviDetector, mediainfoClient, ffprobeClient, logger)
	selector := audio.NewSelector(mediainfoClient, ffprobeClient, cfg.Scan.PreferredLanguage, logger)
	extractor := mediameta.NewExtractor(ffprobeClient, mediainfoClient, cfg.Scan.PreferredLanguage, cfg.Scan.AudioEstimateRatio, logger)

	store, err := registry.OpenStore(cfg.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open registry store: %w", err)
	}
	reg := registry.New(store, logger)

	resolver, posters, err := buildCatalog(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var fetcher scanner.PosterFetcher
	if posters != nil {
		fetcher = posters
	}
	sc := scanner.New(cfg, reg, classifier, selector, extractor, resolver, fetcher, logger)
	return &pipeline{
		Store:    store,
		Registry: reg,
		Scanner:  sc,
		Posters:  posters,
	}, nil
}

// buildCatalog constructs the metadata resolver and poster cache for the
// configured poster source. Without API keys the pipeline runs offline and
// both are nil.
func buildCatalog(cfg *config.Config, logger *slog.Logger) (scanner.MetadataResolver, *postercache.Cache, error) {
	var tmdbClient *tmdb.Client
	if cfg.TMDB.APIKey != "" {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.ImageURL, cfg.TMDB.Language)
		if err != nil {
			return nil, nil, fmt.Errorf("tmdb client: %w", err)
		}
		tmdbClient = client
	}

	var resolver scanner.MetadataResolver
	switch cfg.Posters.Source {
	case "fanart":
		if cfg.Fanart.APIKey == "" {
			break
		}
		fanartClient, err := fanart.New(cfg.Fanart.APIKey, cfg.Fanart.BaseURL, cfg.TMDB.Language)
		if err != nil {
			return nil, nil, fmt.Errorf("fanart client: %w", err)
		}
		resolver = scanner.NewFanartResolver(fanartClient, tmdbClient)
	default:
		if tmdbClient != nil {
			resolver = scanner.NewTMDBResolver(tmdbClient)
		}
	}
	if resolver == nil {
		return nil, nil, nil
	}

	posters, err := postercache.New(cfg.Posters.CacheDir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("poster cache: %w", err)
	}
	return resolver, posters, nil
}
