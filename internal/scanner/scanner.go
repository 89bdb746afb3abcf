package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"reelscan/internal/audio"
	"reelscan/internal/config"
	"reelscan/internal/hdr"
	"reelscan/internal/logging"
	"reelscan/internal/mediameta"
	"reelscan/internal/registry"
)

// Result is the outcome of one characterization attempt.
type Result struct {
	Success bool
	Message string
	Record  *registry.Record
}

// FormatClassifier runs the HDR detection cascade.
type FormatClassifier interface {
	Classify(ctx context.Context, path string) (hdr.Classification, error)
}

// AudioSelector chooses the representative audio track.
type AudioSelector interface {
	Select(ctx context.Context, path string) (audio.Selection, error)
}

// NumericExtractor derives resolution, bitrates, duration, and size.
type NumericExtractor interface {
	Extract(ctx context.Context, path string) (mediameta.Metadata, error)
}

// PosterFetcher caches poster artwork and rewrites its URL.
type PosterFetcher interface {
	Fetch(ctx context.Context, tmdbID int64, posterURL string) string
}

// Scanner drives the characterization pipeline: format classification,
// audio selection, numeric extraction, catalog lookup, and registry commit.
type Scanner struct {
	cfg        *config.Config
	registry   *registry.Registry
	classifier FormatClassifier
	audio      AudioSelector
	numerics   NumericExtractor
	resolver   MetadataResolver
	posters    PosterFetcher
	logger     *slog.Logger
}

// New constructs a scanner. resolver and posters may be nil for offline
// operation; records then carry characterization data only.
func New(cfg *config.Config, reg *registry.Registry, classifier FormatClassifier, selector AudioSelector, numerics NumericExtractor, resolver MetadataResolver, posters PosterFetcher, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		cfg:        cfg,
		registry:   reg,
		classifier: classifier,
		audio:      selector,
		numerics:   numerics,
		resolver:   resolver,
		posters:    posters,
		logger:     logging.WithComponent(logger, "scanner"),
	}
}

// Characterize runs the full pipeline for one file. A path already in the
// registry short-circuits with Success=false and message "already scanned";
// that is an expected outcome, not an error. Probe failures degrade the
// record rather than aborting: the format falls back to Unknown and numeric
// fields to zero, with the failures logged.
func (s *Scanner) Characterize(ctx context.Context, path string) Result {
	if s.registry.Contains(path) {
		return Result{Success: false, Message: "already scanned"}
	}
	s.logger.Info("characterizing", logging.String("path", path))

	classification, err := s.classifier.Classify(ctx, path)
	if err != nil {
		s.logger.Warn("format classification degraded",
			logging.String("path", path), logging.Error(err))
	}

	selection, err := s.audio.Select(ctx, path)
	if err != nil {
		s.logger.Warn("audio selection degraded",
			logging.String("path", path), logging.Error(err))
	}

	numerics, err := s.numerics.Extract(ctx, path)
	if err != nil {
		s.logger.Warn("numeric extraction degraded",
			logging.String("path", path), logging.Error(err))
	}

	record := registry.Record{
		Filename:         filepath.Base(path),
		Path:             path,
		Format:           string(classification.Format),
		FormatDetail:     classification.Detail,
		DVProfile:        classification.Profile,
		DVELType:         classification.ELType,
		Resolution:       numerics.Resolution,
		AudioCodec:       selection.Label,
		AudioBitrateKbps: numerics.AudioBitrateKbps,
		VideoBitrateKbps: numerics.VideoBitrateKbps,
		DurationSeconds:  numerics.DurationSeconds,
		FileSizeBytes:    numerics.FileSizeBytes,
		ScannedAt:        time.Now().UTC(),
	}

	s.attachMetadata(ctx, &record)

	s.registry.Upsert(ctx, record)
	s.logger.Info("characterized",
		logging.String("path", path),
		logging.String("format", record.Format),
		logging.String("audio", record.AudioCodec))

	return Result{
		Success: true,
		Message: fmt.Sprintf("%s detected", classification.Format),
		Record:  &record,
	}
}

func (s *Scanner) attachMetadata(ctx context.Context, record *registry.Record) {
	if s.resolver == nil {
		return
	}
	meta, err := s.resolver.Resolve(ctx, record.Filename)
	if err != nil {
		s.logger.Warn("catalog lookup failed",
			logging.String("file", record.Filename), logging.Error(err))
		return
	}
	record.TMDBID = meta.TMDBID
	record.Title = meta.Title
	record.Year = meta.Year
	record.Rating = meta.Rating
	record.Plot = meta.Plot
	record.Directors = meta.Directors
	record.Cast = meta.Cast
	record.PosterURL = meta.PosterURL
	if s.posters != nil && meta.PosterURL != "" {
		record.PosterURL = s.posters.Fetch(ctx, meta.TMDBID, meta.PosterURL)
	}
}

// ListUnscanned walks the media directory and returns recognized video
// files that are not yet recorded, in walk order.
func (s *Scanner) ListUnscanned() ([]string, error) {
	root := s.cfg.Paths.MediaDir
	var unscanned []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if !s.cfg.RecognizedExtension(path) {
			return nil
		}
		if !s.registry.Contains(path) {
			unscanned = append(unscanned, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk media directory %s: %w", root, err)
	}
	return unscanned, nil
}

// Sweep characterizes every unscanned file under the media directory and
// returns the number of files recorded. The walk error is returned as-is; a
// failing characterization of one file does not stop the sweep.
func (s *Scanner) Sweep(ctx context.Context) (int, error) {
	unscanned, err := s.ListUnscanned()
	if err != nil {
		return 0, err
	}
	scanned := 0
	for _, path := range unscanned {
		if ctx.Err() != nil {
			return scanned, ctx.Err()
		}
		if result := s.Characterize(ctx, path); result.Success {
			scanned++
		}
	}
	if scanned > 0 {
		s.logger.Info("sweep complete", logging.Int("scanned", scanned))
	}
	return scanned, nil
}

// Cleanup removes registry entries whose files no longer exist on disk and
// returns the number removed. Paths are enumerated outside the registry
// lock; Remove re-checks membership, so a concurrent remover is harmless.
func (s *Scanner) Cleanup(ctx context.Context) int {
	removed := 0
	for _, path := range s.registry.Paths() {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if s.registry.Remove(ctx, path) {
			s.logger.Info("removed stale record", logging.String("path", path))
			removed++
		}
	}
	return removed
}
