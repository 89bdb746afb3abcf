package hdr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reelscan/internal/logging"
	"reelscan/internal/probe/dovi"
	"reelscan/internal/probe/mediainfo"
)

// Format is the classified HDR format of a video file.
type Format string

const (
	FormatSDR         Format = "SDR"
	FormatHDR10       Format = "HDR10"
	FormatHDR10Plus   Format = "HDR10+"
	FormatHLG         Format = "HLG"
	FormatDolbyVision Format = "Dolby Vision"
	FormatUnknown     Format = "Unknown"
)

// Classification is the single outcome the cascade produces per file.
type Classification struct {
	Format  Format
	Detail  string
	Profile int
	ELType  string
}

// DolbyVisionProber extracts and analyzes RPU metadata.
type DolbyVisionProber interface {
	Detect(ctx context.Context, path string) (dovi.Info, error)
}

// TrackProber inspects container-level track metadata.
type TrackProber interface {
	Inspect(ctx context.Context, path string) (mediainfo.Report, error)
}

// ColorProber reads stream color tags and raw stream text.
type ColorProber interface {
	ColorMetadata(ctx context.Context, path string) (transfer, primaries string, err error)
	VideoStreamText(ctx context.Context, path string) (string, error)
}

// Classifier runs the ordered detection cascade. Stages short-circuit: a
// Dolby Vision RPU is authoritative, dynamic metadata beats static color
// tags, and SDR is only assumed after every stage ran clean without a signal.
type Classifier struct {
	dolbyVision DolbyVisionProber
	tracks      TrackProber
	color       ColorProber
	logger      *slog.Logger
}

// NewClassifier constructs a classifier over the given probe adapters.
func NewClassifier(dolbyVision DolbyVisionProber, tracks TrackProber, color ColorProber, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Classifier{
		dolbyVision: dolbyVision,
		tracks:      tracks,
		color:       color,
		logger:      logging.WithComponent(logger, "hdr"),
	}
}

// Classify produces exactly one classification for the file. Probe failures
// count as "no signal" and the cascade continues; only when every stage fails
// to execute does the result degrade to Unknown, with the joined failures
// returned so the caller can record them without aborting the wider scan.
func (c *Classifier) Classify(ctx context.Context, path string) (Classification, error) {
	var failures []error
	executed := false

	info, err := c.dolbyVision.Detect(ctx, path)
	if err != nil {
		failures = append(failures, err)
		c.logger.Debug("dolby vision probe failed", logging.String("path", path), logging.Error(err))
	} else {
		executed = true
		if info.Present {
			c.logger.Info("dolby vision detected",
				logging.String("path", path),
				logging.Int("profile", info.Profile),
				logging.String("el_type", info.ELType))
			return Classification{
				Format:  FormatDolbyVision,
				Detail:  fmt.Sprintf("Profile %d", info.Profile),
				Profile: info.Profile,
				ELType:  info.ELType,
			}, nil
		}
	}

	if matched, ran := c.detectDynamicMetadata(ctx, path, &failures); ran {
		executed = true
		if matched {
			c.logger.Info("hdr10+ detected", logging.String("path", path))
			return Classification{Format: FormatHDR10Plus, Detail: "HDR10+"}, nil
		}
	}

	transfer, primaries, err := c.color.ColorMetadata(ctx, path)
	if err != nil {
		failures = append(failures, err)
		c.logger.Debug("color metadata probe failed", logging.String("path", path), logging.Error(err))
	} else {
		executed = true
		switch {
		case TransferSignalsHLG(transfer):
			return Classification{Format: FormatHLG, Detail: "HLG"}, nil
		case TransferSignalsPQ(transfer):
			return Classification{Format: FormatHDR10, Detail: "HDR10"}, nil
		case PrimariesSignalWideGamut(primaries):
			c.logger.Debug("bt2020 primaries without transfer tag, assuming hdr10",
				logging.String("path", path))
			return Classification{Format: FormatHDR10, Detail: "HDR10"}, nil
		}
	}

	if !executed {
		return Classification{Format: FormatUnknown, Detail: "Error"}, errors.Join(failures...)
	}
	return Classification{Format: FormatSDR, Detail: "SDR"}, nil
}

// detectDynamicMetadata checks structured MediaInfo fields first and falls
// back to a raw stream text search. The second return reports whether any
// probe in this stage executed.
func (c *Classifier) detectDynamicMetadata(ctx context.Context, path string, failures *[]error) (matched, ran bool) {
	report, err := c.tracks.Inspect(ctx, path)
	if err != nil {
		*failures = append(*failures, err)
		c.logger.Debug("mediainfo probe failed", logging.String("path", path), logging.Error(err))
	} else {
		ran = true
		for _, track := range report.VideoTracks() {
			format := firstNonEmpty(track.Field("HDR_Format"), track.Field("HDR format"))
			compat := firstNonEmpty(track.Field("HDR_Format_Compatibility"), track.Field("HDR format compatibility"))
			if DynamicMetadataSignal(format, compat) {
				return true, true
			}
		}
	}

	text, err := c.color.VideoStreamText(ctx, path)
	if err != nil {
		*failures = append(*failures, err)
		c.logger.Debug("stream text probe failed", logging.String("path", path), logging.Error(err))
		return false, ran
	}
	return TextSignalsDynamicMetadata(text), true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
