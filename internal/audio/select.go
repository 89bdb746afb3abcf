package audio

import (
	"context"
	"errors"
	"log/slog"

	"reelscan/internal/logging"
	"reelscan/internal/probe/ffprobe"
	"reelscan/internal/probe/mediainfo"
)

// SelectBest partitions tracks into preferred-language, English, and
// unfiltered buckets, then picks from the first non-empty bucket the track
// with the highest quality score, breaking ties on channel count. First-seen
// order wins remaining ties.
func SelectBest(tracks []Track, preferredLanguage string) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}

	preferredTags := LanguageTags(preferredLanguage)
	englishTags := LanguageTags("en")

	var preferred, english []Track
	for _, track := range tracks {
		if matchesAny(track.Language, preferredTags) {
			preferred = append(preferred, track)
		}
		if matchesAny(track.Language, englishTags) {
			english = append(english, track)
		}
	}

	for _, bucket := range [][]Track{preferred, english, tracks} {
		if len(bucket) == 0 {
			continue
		}
		best := bucket[0]
		for _, candidate := range bucket[1:] {
			if better(candidate, best) {
				best = candidate
			}
		}
		return best, true
	}
	return Track{}, false
}

func better(a, b Track) bool {
	scoreA, scoreB := Score(a), Score(b)
	if scoreA != scoreB {
		return scoreA > scoreB
	}
	return a.Channels > b.Channels
}

// Selection is the outcome of choosing the representative audio track.
type Selection struct {
	Track Track
	Label string
	Found bool
}

// TrackProber inspects container-level track metadata.
type TrackProber interface {
	Inspect(ctx context.Context, path string) (mediainfo.Report, error)
}

// StreamProber inspects stream-level metadata.
type StreamProber interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Selector chooses the audio track that best represents intended listening
// quality. MediaInfo is consulted first because its commercial format names
// carry the Atmos and DTS:X signals ffprobe drops; ffprobe serves as the
// fallback prober.
type Selector struct {
	tracks            TrackProber
	streams           StreamProber
	preferredLanguage string
	logger            *slog.Logger
}

// NewSelector constructs a selector.
func NewSelector(tracks TrackProber, streams StreamProber, preferredLanguage string, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{
		tracks:            tracks,
		streams:           streams,
		preferredLanguage: preferredLanguage,
		logger:            logging.WithComponent(logger, "audio"),
	}
}

// Select probes the file and returns the chosen track with its rendered
// label. When no audio track can be found the selection reports
// Found=false with label "Unknown"; probe failures are joined into the
// returned error but never prevent the fallback prober from running.
func (s *Selector) Select(ctx context.Context, path string) (Selection, error) {
	var failures []error

	report, err := s.tracks.Inspect(ctx, path)
	if err != nil {
		failures = append(failures, err)
		s.logger.Debug("mediainfo probe failed", logging.String("path", path), logging.Error(err))
	} else {
		var candidates []Track
		for _, track := range report.AudioTracks() {
			candidates = append(candidates, FromMediaInfo(track))
		}
		if chosen, ok := SelectBest(candidates, s.preferredLanguage); ok {
			return Selection{Track: chosen, Label: Label(chosen), Found: true}, nil
		}
	}

	result, err := s.streams.Inspect(ctx, path)
	if err != nil {
		failures = append(failures, err)
		s.logger.Debug("ffprobe probe failed", logging.String("path", path), logging.Error(err))
	} else {
		var candidates []Track
		for _, stream := range result.AudioStreams() {
			candidates = append(candidates, FromFFProbe(stream))
		}
		if chosen, ok := SelectBest(candidates, s.preferredLanguage); ok {
			return Selection{Track: chosen, Label: Label(chosen), Found: true}, nil
		}
	}

	return Selection{Label: "Unknown"}, errors.Join(failures...)
}
