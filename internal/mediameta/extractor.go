package mediameta

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"reelscan/internal/audio"
	"reelscan/internal/logging"
	"reelscan/internal/probe/ffprobe"
	"reelscan/internal/probe/mediainfo"
)

// Metadata holds the numeric attributes of a file. Zero values mean the
// attribute could not be determined; absence is not an error.
type Metadata struct {
	Resolution       string
	VideoBitrateKbps int64
	AudioBitrateKbps int64
	DurationSeconds  float64
	FileSizeBytes    int64
}

// StreamProber inspects stream-level metadata.
type StreamProber interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// TrackProber inspects container-level track metadata.
type TrackProber interface {
	Inspect(ctx context.Context, path string) (mediainfo.Report, error)
}

// Extractor derives resolution, bitrates, duration, and file size. Bitrates
// walk a tiered fallback chain (stream tag, stream field, container
// aggregate, then the secondary probe tool) and the first tier that yields
// a value wins.
type Extractor struct {
	streams           StreamProber
	tracks            TrackProber
	preferredLanguage string
	estimateRatio     float64
	logger            *slog.Logger
}

// NewExtractor constructs an extractor. estimateRatio scales the container
// aggregate bitrate when estimating the audio share.
func NewExtractor(streams StreamProber, tracks TrackProber, preferredLanguage string, estimateRatio float64, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Extractor{
		streams:           streams,
		tracks:            tracks,
		preferredLanguage: preferredLanguage,
		estimateRatio:     estimateRatio,
		logger:            logging.WithComponent(logger, "mediameta"),
	}
}

// Extract probes the file and fills in every numeric attribute it can.
// Individual attribute failures degrade to zero values rather than failing
// the extraction; only a completely unreachable primary probe returns an
// error, and even then the file size is still read.
func (e *Extractor) Extract(ctx context.Context, path string) (Metadata, error) {
	meta := Metadata{Resolution: "Unknown"}
	if info, err := os.Stat(path); err == nil {
		meta.FileSizeBytes = info.Size()
	}

	result, err := e.streams.Inspect(ctx, path)
	if err != nil {
		e.logger.Debug("ffprobe probe failed", logging.String("path", path), logging.Error(err))
		// The secondary tool may still supply bitrates.
		report, reportOK := e.inspectTracks(ctx, path)
		if reportOK {
			meta.VideoBitrateKbps = videoBitrateFromTracks(report)
			meta.AudioBitrateKbps = e.audioBitrateFromTracks(report)
			return meta, nil
		}
		return meta, err
	}

	if video, ok := result.FirstVideo(); ok {
		meta.Resolution = ResolutionLabel(video.Width, video.Height)
	}
	meta.DurationSeconds = result.DurationSeconds()

	var report mediainfo.Report
	reportLoaded := false
	loadReport := func() (mediainfo.Report, bool) {
		if !reportLoaded {
			report, reportLoaded = e.inspectTracks(ctx, path)
		}
		return report, reportLoaded
	}

	meta.VideoBitrateKbps = e.videoBitrate(result, loadReport)
	meta.AudioBitrateKbps = e.audioBitrate(result, loadReport)
	return meta, nil
}

func (e *Extractor) inspectTracks(ctx context.Context, path string) (mediainfo.Report, bool) {
	report, err := e.tracks.Inspect(ctx, path)
	if err != nil {
		e.logger.Debug("mediainfo probe failed", logging.String("path", path), logging.Error(err))
		return mediainfo.Report{}, false
	}
	return report, true
}

func (e *Extractor) videoBitrate(result ffprobe.Result, loadReport func() (mediainfo.Report, bool)) int64 {
	if video, ok := result.FirstVideo(); ok {
		// MKV muxers report the rate through the BPS tag.
		if bps := tagKbps(video, "BPS"); bps > 0 {
			return bps
		}
		if rate := video.BitRateBits(); rate > 0 {
			return rate / 1000
		}
	}
	if rate := result.BitRate(); rate > 0 {
		return rate / 1000
	}
	if report, ok := loadReport(); ok {
		return videoBitrateFromTracks(report)
	}
	return 0
}

func videoBitrateFromTracks(report mediainfo.Report) int64 {
	for _, track := range report.VideoTracks() {
		if rate := track.Int64Field("BitRate"); rate > 0 {
			return rate / 1000
		}
		if kbps, ok := ParseBitrateString(track.Field("BitRate_String")); ok {
			return kbps
		}
	}
	return 0
}

func (e *Extractor) audioBitrate(result ffprobe.Result, loadReport func() (mediainfo.Report, bool)) int64 {
	var candidates []audio.Track
	for _, stream := range result.AudioStreams() {
		candidates = append(candidates, audio.FromFFProbe(stream))
	}
	if chosen, ok := audio.SelectBest(candidates, e.preferredLanguage); ok && chosen.BitRate > 0 {
		return chosen.BitRate / 1000
	}

	// Container aggregate mixes every stream, so only a configured share of
	// it counts as audio. Last-resort estimate.
	if rate := result.BitRate(); rate > 0 {
		if estimated := int64(float64(rate) * e.estimateRatio / 1000); estimated > 0 {
			return estimated
		}
	}

	if report, ok := loadReport(); ok {
		return e.audioBitrateFromTracks(report)
	}
	return 0
}

func (e *Extractor) audioBitrateFromTracks(report mediainfo.Report) int64 {
	var candidates []audio.Track
	for _, track := range report.AudioTracks() {
		candidates = append(candidates, audio.FromMediaInfo(track))
	}
	chosen, ok := audio.SelectBest(candidates, e.preferredLanguage)
	if !ok {
		return 0
	}
	if chosen.BitRate > 0 {
		return chosen.BitRate / 1000
	}
	if kbps, parsed := ParseBitrateString(chosen.BitRateText); parsed {
		return kbps
	}
	return 0
}

func tagKbps(stream ffprobe.Stream, name string) int64 {
	raw := stream.Tag(name)
	if raw == "" {
		return 0
	}
	total, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || total <= 0 {
		return 0
	}
	return total / 1000
}
