package ffprobe

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"reelscan/internal/services"
	"reelscan/internal/toolrun"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index          int               `json:"index"`
	CodecName      string            `json:"codec_name"`
	CodecLong      string            `json:"codec_long_name"`
	CodecType      string            `json:"codec_type"`
	Profile        string            `json:"profile"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	ColorTransfer  string            `json:"color_transfer"`
	ColorPrimaries string            `json:"color_primaries"`
	Duration       string            `json:"duration"`
	BitRate        string            `json:"bit_rate"`
	Channels       int               `json:"channels"`
	ChannelLayout  string            `json:"channel_layout"`
	Tags           map[string]string `json:"tags"`
	Disposition    map[string]int    `json:"disposition"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Option configures the client.
type Option func(*Client)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(runner toolrun.Runner) Option {
	return func(c *Client) {
		if runner != nil {
			c.runner = runner
		}
	}
}

// Client wraps ffprobe CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	runner  toolrun.Runner
}

// New constructs an ffprobe client.
func New(binary string, timeoutSeconds int, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		runner:  toolrun.ExecRunner{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Inspect executes ffprobe against the provided path and decodes the full
// stream and format report.
func (c *Client) Inspect(ctx context.Context, path string) (Result, error) {
	return c.query(ctx, "inspect", []string{"-show_format", "-show_streams"}, path)
}

// ColorMetadata returns the first video stream's color transfer and
// primaries tags.
func (c *Client) ColorMetadata(ctx context.Context, path string) (transfer, primaries string, err error) {
	result, err := c.query(ctx, "color-metadata", []string{
		"-select_streams", "v:0",
		"-show_entries", "stream=color_transfer,color_primaries",
	}, path)
	if err != nil {
		return "", "", err
	}
	if len(result.Streams) == 0 {
		return "", "", nil
	}
	stream := result.Streams[0]
	return strings.ToLower(stream.ColorTransfer), strings.ToLower(stream.ColorPrimaries), nil
}

// VideoStreamText returns the raw -show_streams text for the first video
// stream. Used as a last-resort token search when structured fields carry no
// dynamic-metadata signal.
func (c *Client) VideoStreamText(ctx context.Context, path string) (string, error) {
	result, err := c.runner.Run(ctx, toolrun.Invocation{
		Component: "ffprobe",
		Operation: "stream-text",
		Binary:    c.binary,
		Args:      []string{"-v", "error", "-select_streams", "v:0", "-show_streams", path},
		Timeout:   c.timeout,
	})
	if err != nil {
		return "", err
	}
	return string(result.Stdout), nil
}

func (c *Client) query(ctx context.Context, operation string, entries []string, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, services.Wrap(services.ErrNotFound, "ffprobe", operation, "empty path", nil)
	}
	args := []string{"-v", "error"}
	args = append(args, entries...)
	args = append(args, "-of", "json", path)

	raw, err := c.runner.Run(ctx, toolrun.Invocation{
		Component: "ffprobe",
		Operation: operation,
		Binary:    c.binary,
		Args:      args,
		Timeout:   c.timeout,
	})
	if err != nil {
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal(raw.Stdout, &result); err != nil {
		return Result{}, services.Wrap(services.ErrMalformedOutput, "ffprobe", operation, err.Error(), nil)
	}
	return result, nil
}

// VideoStreams returns the video streams in container order.
func (r Result) VideoStreams() []Stream {
	return r.streamsOfType("video")
}

// AudioStreams returns the audio streams in container order.
func (r Result) AudioStreams() []Stream {
	return r.streamsOfType("audio")
}

// FirstVideo returns the first video stream, if any.
func (r Result) FirstVideo() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

func (r Result) streamsOfType(kind string) []Stream {
	var out []Stream
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, kind) {
			out = append(out, stream)
		}
	}
	return out
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	parsed := parseFloat(r.Format.Duration)
	if math.IsNaN(parsed) || parsed < 0 {
		return 0
	}
	return parsed
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

// Tag returns the named stream tag, tolerating the casing variants emitted by
// different muxers.
func (s Stream) Tag(name string) string {
	if len(s.Tags) == 0 {
		return ""
	}
	if value, ok := s.Tags[name]; ok {
		return value
	}
	for key, value := range s.Tags {
		if strings.EqualFold(key, name) {
			return value
		}
	}
	return ""
}

// BitRateBits returns the per-stream bitrate in bits per second, or 0.
func (s Stream) BitRateBits() int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(s.BitRate), 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
