package dovi

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"reelscan/internal/services"
	"reelscan/internal/toolrun"
)

// Info is the outcome of a Dolby Vision probe.
type Info struct {
	Present bool
	Profile int
	ELType  string
}

// Option configures the detector.
type Option func(*Detector)

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(runner toolrun.Runner) Option {
	return func(d *Detector) {
		if runner != nil {
			d.runner = runner
		}
	}
}

// Detector drives the ffmpeg + dovi_tool RPU extraction chain.
type Detector struct {
	ffmpegBinary string
	doviBinary   string
	timeout      time.Duration
	tempDir      string
	runner       toolrun.Runner
}

// New constructs a Dolby Vision detector. tempDir receives the transient RPU
// dumps and may be empty to use the system default.
func New(ffmpegBinary, doviBinary string, timeoutSeconds int, tempDir string, opts ...Option) *Detector {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(doviBinary) == "" {
		doviBinary = "dovi_tool"
	}
	detector := &Detector{
		ffmpegBinary: ffmpegBinary,
		doviBinary:   doviBinary,
		timeout:      time.Duration(timeoutSeconds) * time.Second,
		tempDir:      tempDir,
		runner:       toolrun.ExecRunner{},
	}
	for _, opt := range opts {
		opt(detector)
	}
	return detector
}

// Detect samples one second of the video elementary stream, hands it to
// dovi_tool for RPU extraction, and reports the profile when metadata is
// found. A clean "no RPU" outcome returns Present=false with a nil error.
func (d *Detector) Detect(ctx context.Context, path string) (Info, error) {
	sample, err := d.sampleBitstream(ctx, path)
	if err != nil {
		return Info{}, err
	}
	if len(sample) == 0 {
		return Info{}, nil
	}

	rpu, err := toolrun.NewTempFile(d.tempDir, "rpu-*.bin")
	if err != nil {
		return Info{}, services.Wrap(services.ErrToolExit, "dovi", "extract-rpu", "create temp file", err)
	}
	defer rpu.Close()

	if _, err := d.runner.Run(ctx, toolrun.Invocation{
		Component: "dovi",
		Operation: "extract-rpu",
		Binary:    d.doviBinary,
		Args:      []string{"extract-rpu", "-", "-o", rpu.Path()},
		Stdin:     bytes.NewReader(sample),
		Timeout:   d.timeout,
	}); err != nil {
		// dovi_tool exits non-zero on streams without an RPU; that is a
		// negative result, not a failure.
		return Info{}, nil
	}

	if rpu.Size() == 0 {
		return Info{}, nil
	}

	return d.readRPU(ctx, rpu.Path())
}

func (d *Detector) sampleBitstream(ctx context.Context, path string) ([]byte, error) {
	result, err := d.runner.Run(ctx, toolrun.Invocation{
		Component: "dovi",
		Operation: "sample-bitstream",
		Binary:    d.ffmpegBinary,
		Args: []string{
			"-v", "error",
			"-i", path,
			"-t", "1",
			"-map", "0:v:0",
			"-c:v", "copy",
			"-bsf:v", "hevc_mp4toannexb",
			"-f", "hevc",
			"-",
		},
		Timeout: d.timeout,
	})
	if err != nil {
		return nil, err
	}
	return result.Stdout, nil
}

func (d *Detector) readRPU(ctx context.Context, rpuPath string) (Info, error) {
	result, err := d.runner.Run(ctx, toolrun.Invocation{
		Component: "dovi",
		Operation: "info",
		Binary:    d.doviBinary,
		Args:      []string{"info", "-i", rpuPath, "-f", "0"},
		Timeout:   d.timeout,
	})
	if err != nil {
		return Info{}, err
	}
	return parseInfoOutput(string(result.Stdout))
}

// parseInfoOutput decodes dovi_tool's info report: a human-readable summary
// line followed by a JSON document.
func parseInfoOutput(output string) (Info, error) {
	start := strings.Index(output, "{")
	if start < 0 {
		return Info{}, services.Wrap(services.ErrMalformedOutput, "dovi", "info", "no JSON document in output", nil)
	}
	var decoded struct {
		Profile int    `json:"dovi_profile"`
		ELType  string `json:"el_type"`
	}
	if err := json.Unmarshal([]byte(output[start:]), &decoded); err != nil {
		return Info{}, services.Wrap(services.ErrMalformedOutput, "dovi", "info", err.Error(), nil)
	}
	return Info{
		Present: true,
		Profile: decoded.Profile,
		ELType:  strings.ToUpper(strings.TrimSpace(decoded.ELType)),
	}, nil
}

// Label renders the display string for a probe outcome, e.g.
// "Dolby Vision (Profile 7, FEL)".
func (i Info) Label() string {
	if !i.Present {
		return ""
	}
	var b strings.Builder
	b.WriteString("Dolby Vision")
	if i.Profile > 0 {
		b.WriteString(" (Profile ")
		b.WriteString(strconv.Itoa(i.Profile))
		if i.ELType != "" {
			b.WriteString(", ")
			b.WriteString(i.ELType)
		}
		b.WriteString(")")
	}
	return b.String()
}
