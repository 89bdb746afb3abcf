package mediameta

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"reelscan/internal/probe/ffprobe"
	"reelscan/internal/probe/mediainfo"
	"reelscan/internal/services"
)

func TestResolutionLabel(t *testing.T) {
	cases := []struct {
		width, height int
		want          string
	}{
		{3840, 2160, "4K (UHD)"},
		{1920, 1080, "1080p (Full HD)"},
		{1280, 720, "720p (HD)"},
		{7680, 4320, "8K (UHD)"},
		{2560, 1440, "1440p"},
		{4096, 2160, "4K DCI"},
		{1366, 768, "768p"},
		{854, 480, "480p (SD)"},
		{640, 480, "480p (SD)"},
		{1904, 1072, "1904x1072"},
		{0, 0, "Unknown"},
	}
	for _, tc := range cases {
		if got := ResolutionLabel(tc.width, tc.height); got != tc.want {
			t.Fatalf("ResolutionLabel(%d, %d) = %q, want %q", tc.width, tc.height, got, tc.want)
		}
	}
}

func TestParseBitrateString(t *testing.T) {
	cases := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"9 039 kb/s", 9039, true},
		{"55.3 Mb/s", 55300, true},
		{"1.5 Gb/s", 1500000, true},
		{"640000 b/s", 640, true},
		{"KB/S nonsense", 0, false},
		{"", 0, false},
		{"fast", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseBitrateString(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseBitrateString(%q) = %d, %v; want %d, %v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

type stubStreams struct {
	result ffprobe.Result
	err    error
}

func (s stubStreams) Inspect(context.Context, string) (ffprobe.Result, error) {
	return s.result, s.err
}

type stubTracks struct {
	report mediainfo.Report
	err    error
}

func (s stubTracks) Inspect(context.Context, string) (mediainfo.Report, error) {
	return s.report, s.err
}

func mediaFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "film.mkv")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractUsesStreamTagsFirst(t *testing.T) {
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", Width: 3840, Height: 2160, BitRate: "99000000", Tags: map[string]string{"BPS": "44123456"}},
			{CodecType: "audio", CodecName: "truehd", Channels: 8, Tags: map[string]string{"language": "eng", "BPS": "4500000"}},
		},
		Format: ffprobe.Format{Duration: "7265.384", BitRate: "53211567"},
	}
	extractor := NewExtractor(stubStreams{result: result}, stubTracks{}, "en", 0.1, nil)

	path := mediaFile(t, 4096)
	meta, err := extractor.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if meta.Resolution != "4K (UHD)" {
		t.Fatalf("resolution = %q", meta.Resolution)
	}
	// BPS tag beats the generic bit_rate field.
	if meta.VideoBitrateKbps != 44123 {
		t.Fatalf("video bitrate = %d", meta.VideoBitrateKbps)
	}
	if meta.AudioBitrateKbps != 4500 {
		t.Fatalf("audio bitrate = %d", meta.AudioBitrateKbps)
	}
	if meta.DurationSeconds < 7265 || meta.DurationSeconds > 7266 {
		t.Fatalf("duration = %f", meta.DurationSeconds)
	}
	if meta.FileSizeBytes != 4096 {
		t.Fatalf("size = %d", meta.FileSizeBytes)
	}
}

func TestExtractFallsBackThroughTiers(t *testing.T) {
	// No BPS tag, no stream bit_rate: container aggregate serves the video
	// rate directly and the audio rate via the configured estimate ratio.
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", Width: 1920, Height: 1080},
			{CodecType: "audio", CodecName: "ac3", Channels: 6, Tags: map[string]string{"language": "eng"}},
		},
		Format: ffprobe.Format{BitRate: "10000000"},
	}
	extractor := NewExtractor(stubStreams{result: result}, stubTracks{}, "en", 0.1, nil)

	meta, err := extractor.Extract(context.Background(), mediaFile(t, 1))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if meta.VideoBitrateKbps != 10000 {
		t.Fatalf("video bitrate = %d", meta.VideoBitrateKbps)
	}
	if meta.AudioBitrateKbps != 1000 {
		t.Fatalf("estimated audio bitrate = %d", meta.AudioBitrateKbps)
	}
}

func TestExtractMediaInfoTier(t *testing.T) {
	// ffprobe yields streams but no rates at all; MediaInfo's BitRate_String
	// is the last tier.
	result := ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", Width: 1920, Height: 1080},
			{CodecType: "audio", CodecName: "dts", Channels: 6, Tags: map[string]string{"language": "eng"}},
		},
	}
	report := mediainfo.NewReport(
		mediainfo.Track{"@type": "Video", "BitRate_String": "55.3 Mb/s"},
		mediainfo.Track{"@type": "Audio", "Format": "DTS", "Channels": "6", "Language": "en", "BitRate_String": "1 509 kb/s"},
	)
	extractor := NewExtractor(stubStreams{result: result}, stubTracks{report: report}, "en", 0.1, nil)

	meta, err := extractor.Extract(context.Background(), mediaFile(t, 1))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if meta.VideoBitrateKbps != 55300 {
		t.Fatalf("video bitrate = %d", meta.VideoBitrateKbps)
	}
	if meta.AudioBitrateKbps != 1509 {
		t.Fatalf("audio bitrate = %d", meta.AudioBitrateKbps)
	}
}

func TestExtractPrimaryProbeFailure(t *testing.T) {
	failure := services.Wrap(services.ErrToolTimeout, "ffprobe", "inspect", "deadline", nil)
	report := mediainfo.NewReport(
		mediainfo.Track{"@type": "Video", "BitRate": "44123456"},
	)
	extractor := NewExtractor(stubStreams{err: failure}, stubTracks{report: report}, "en", 0.1, nil)

	meta, err := extractor.Extract(context.Background(), mediaFile(t, 128))
	if err != nil {
		t.Fatalf("Extract returned error despite secondary probe: %v", err)
	}
	if meta.VideoBitrateKbps != 44123 {
		t.Fatalf("video bitrate = %d", meta.VideoBitrateKbps)
	}
	if meta.Resolution != "Unknown" {
		t.Fatalf("resolution = %q", meta.Resolution)
	}
	if meta.FileSizeBytes != 128 {
		t.Fatalf("size = %d", meta.FileSizeBytes)
	}
}

func TestExtractBothProbesFailing(t *testing.T) {
	failure := services.Wrap(services.ErrToolTimeout, "ffprobe", "inspect", "deadline", nil)
	extractor := NewExtractor(stubStreams{err: failure}, stubTracks{err: failure}, "en", 0.1, nil)

	meta, err := extractor.Extract(context.Background(), mediaFile(t, 64))
	if err == nil {
		t.Fatal("expected an error when no probe is reachable")
	}
	// Size never depends on probes.
	if meta.FileSizeBytes != 64 {
		t.Fatalf("size = %d", meta.FileSizeBytes)
	}
}
