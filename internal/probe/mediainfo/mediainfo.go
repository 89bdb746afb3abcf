package mediainfo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"reelscan/internal/services"
	"reelscan/internal/toolrun"
)

// Track is a single track record from the JSON report. MediaInfo emits every
// field as a string, but a handful arrive as numbers depending on the build,
// so values are normalized on access.
type Track map[string]any

// Report is the parsed mediainfo JSON output.
type Report struct {
	tracks []Track
}

type rawReport struct {
	Media struct {
		Track []Track `json:"track"`
	} `json:"media"`
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

// Client wraps mediainfo CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	runner  toolrun.Runner
}

// New constructs a mediainfo client.
func New(binary string, timeoutSeconds int, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "mediainfo"
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

// Inspect executes mediainfo against the provided path and returns the parsed
// track report.
func (c *Client) Inspect(ctx context.Context, path string) (Report, error) {
	if strings.TrimSpace(path) == "" {
		return Report{}, services.Wrap(services.ErrNotFound, "mediainfo", "inspect", "empty path", nil)
	}
	raw, err := c.runner.Run(ctx, toolrun.Invocation{
		Component: "mediainfo",
		Operation: "inspect",
		Binary:    c.binary,
		Args:      []string{"--Output=JSON", path},
		Timeout:   c.timeout,
	})
	if err != nil {
		return Report{}, err
	}

	var decoded rawReport
	if err := json.Unmarshal(raw.Stdout, &decoded); err != nil {
		return Report{}, services.Wrap(services.ErrMalformedOutput, "mediainfo", "inspect", err.Error(), nil)
	}
	return Report{tracks: decoded.Media.Track}, nil
}

// NewReport builds a report directly from tracks. Intended for consumers
// that synthesize reports, such as tests.
func NewReport(tracks ...Track) Report {
	return Report{tracks: tracks}
}

// General returns the general track, if present.
func (r Report) General() (Track, bool) {
	tracks := r.TracksOfType("General")
	if len(tracks) == 0 {
		return nil, false
	}
	return tracks[0], true
}

// VideoTracks returns the video tracks in report order.
func (r Report) VideoTracks() []Track {
	return r.TracksOfType("Video")
}

// AudioTracks returns the audio tracks in report order.
func (r Report) AudioTracks() []Track {
	return r.TracksOfType("Audio")
}

// TracksOfType filters tracks by their @type discriminator.
func (r Report) TracksOfType(kind string) []Track {
	var out []Track
	for _, track := range r.tracks {
		if strings.EqualFold(track.Field("@type"), kind) {
			out = append(out, track)
		}
	}
	return out
}

// Field returns the named track field as a string, or "" when absent.
func (t Track) Field(name string) string {
	if t == nil {
		return ""
	}
	value, ok := t[name]
	if !ok {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return typed
	case float64:
		if typed == float64(int64(typed)) {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", typed)
	}
}

// Int64Field returns the named field parsed as an integer, or 0 when the
// field is absent or not numeric.
func (t Track) Int64Field(name string) int64 {
	raw := strings.TrimSpace(t.Field(name))
	if raw == "" {
		return 0
	}
	if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(parsed)
	}
	return 0
}
