package ffprobe

import (
	"context"
	"errors"
	"testing"

	"reelscan/internal/services"
	"reelscan/internal/toolrun"
)

type stubRunner struct {
	stdout    []byte
	err       error
	lastInvoc toolrun.Invocation
}

func (s *stubRunner) Run(_ context.Context, invocation toolrun.Invocation) (toolrun.Result, error) {
	s.lastInvoc = invocation
	if s.err != nil {
		return toolrun.Result{}, s.err
	}
	return toolrun.Result{Stdout: s.stdout}, nil
}

const sampleReport = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "hevc",
      "codec_type": "video",
      "profile": "Main 10",
      "width": 3840,
      "height": 2160,
      "color_transfer": "smpte2084",
      "color_primaries": "bt2020",
      "bit_rate": "45000000",
      "tags": {"BPS": "44123456"}
    },
    {
      "index": 1,
      "codec_name": "truehd",
      "codec_type": "audio",
      "channels": 8,
      "tags": {"language": "eng"}
    }
  ],
  "format": {
    "filename": "/media/film.mkv",
    "nb_streams": 2,
    "duration": "7265.384000",
    "size": "48318382080",
    "bit_rate": "53211567"
  }
}`

func TestInspectParsesStreamsAndFormat(t *testing.T) {
	runner := &stubRunner{stdout: []byte(sampleReport)}
	client := New("ffprobe", 15, WithRunner(runner))

	result, err := client.Inspect(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("Inspect returned error: %v", err)
	}
	if len(result.Streams) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(result.Streams))
	}
	video, ok := result.FirstVideo()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if video.Width != 3840 || video.Height != 2160 {
		t.Fatalf("unexpected dimensions %dx%d", video.Width, video.Height)
	}
	if got := video.Tag("bps"); got != "44123456" {
		t.Fatalf("case-insensitive tag lookup returned %q", got)
	}
	if got := video.BitRateBits(); got != 45000000 {
		t.Fatalf("stream bitrate = %d", got)
	}
	audio := result.AudioStreams()
	if len(audio) != 1 || audio[0].Channels != 8 {
		t.Fatalf("unexpected audio streams: %+v", audio)
	}
	if got := result.DurationSeconds(); got < 7265 || got > 7266 {
		t.Fatalf("duration = %f", got)
	}
	if got := result.SizeBytes(); got != 48318382080 {
		t.Fatalf("size = %d", got)
	}
	if got := result.BitRate(); got != 53211567 {
		t.Fatalf("container bitrate = %d", got)
	}
}

func TestInspectRejectsMalformedJSON(t *testing.T) {
	runner := &stubRunner{stdout: []byte("not json")}
	client := New("ffprobe", 15, WithRunner(runner))

	if _, err := client.Inspect(context.Background(), "/media/film.mkv"); !errors.Is(err, services.ErrMalformedOutput) {
		t.Fatalf("expected malformed-output error, got %v", err)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	client := New("ffprobe", 15, WithRunner(&stubRunner{}))
	if _, err := client.Inspect(context.Background(), "  "); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestColorMetadataLowercasesValues(t *testing.T) {
	runner := &stubRunner{stdout: []byte(`{"streams":[{"color_transfer":"SMPTE2084","color_primaries":"BT2020"}]}`)}
	client := New("ffprobe", 15, WithRunner(runner))

	transfer, primaries, err := client.ColorMetadata(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("ColorMetadata returned error: %v", err)
	}
	if transfer != "smpte2084" || primaries != "bt2020" {
		t.Fatalf("got transfer=%q primaries=%q", transfer, primaries)
	}
}

func TestColorMetadataNoVideoStream(t *testing.T) {
	runner := &stubRunner{stdout: []byte(`{"streams":[]}`)}
	client := New("ffprobe", 15, WithRunner(runner))

	transfer, primaries, err := client.ColorMetadata(context.Background(), "/media/audio-only.mkv")
	if err != nil {
		t.Fatalf("ColorMetadata returned error: %v", err)
	}
	if transfer != "" || primaries != "" {
		t.Fatalf("expected empty values, got %q/%q", transfer, primaries)
	}
}

func TestVideoStreamTextPassesRawOutput(t *testing.T) {
	runner := &stubRunner{stdout: []byte("[STREAM]\ncodec_name=hevc\nside_data: HDR10+\n[/STREAM]\n")}
	client := New("ffprobe", 15, WithRunner(runner))

	text, err := client.VideoStreamText(context.Background(), "/media/film.mkv")
	if err != nil {
		t.Fatalf("VideoStreamText returned error: %v", err)
	}
	if text == "" || runner.lastInvoc.Operation != "stream-text" {
		t.Fatalf("unexpected text %q operation %q", text, runner.lastInvoc.Operation)
	}
}

func TestRunnerErrorPropagates(t *testing.T) {
	runner := &stubRunner{err: services.Wrap(services.ErrToolTimeout, "ffprobe", "inspect", "deadline", nil)}
	client := New("ffprobe", 15, WithRunner(runner))

	if _, err := client.Inspect(context.Background(), "/media/film.mkv"); !errors.Is(err, services.ErrToolTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}
