package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"reelscan/internal/services"
)

// waitDelay bounds how long Wait blocks on lingering pipe readers after the
// process has been signalled.
const waitDelay = 5 * time.Second

// Invocation describes one bounded external-tool call.
type Invocation struct {
	Component string
	Operation string
	Binary    string
	Args      []string
	Stdin     io.Reader
	Timeout   time.Duration
}

// Result holds the captured output of a completed invocation.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes invocations. The default implementation shells out; tests
// substitute fakes.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ExecRunner runs invocations via os/exec with a hard timeout. On expiry the
// subprocess is force-terminated before Run returns.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	binary := strings.TrimSpace(inv.Binary)
	if binary == "" {
		return Result{}, services.Wrap(services.ErrNotFound, inv.Component, inv.Operation, "binary not configured", nil)
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, binary, inv.Args...) //nolint:gosec
	cmd.WaitDelay = waitDelay
	if inv.Stdin != nil {
		cmd.Stdin = inv.Stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return result, services.Wrap(services.ErrToolTimeout, inv.Component, inv.Operation, fmt.Sprintf("%s exceeded %s", binary, inv.Timeout), nil)
	case errors.Is(err, exec.ErrNotFound):
		return result, services.Wrap(services.ErrNotFound, inv.Component, inv.Operation, binary+" not installed", nil)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = exitErr.Error()
			}
			return result, services.Wrap(services.ErrToolExit, inv.Component, inv.Operation, detail, nil)
		}
		return result, services.Wrap(services.ErrToolExit, inv.Component, inv.Operation, "", err)
	}
}

// TempFile is a temporary on-disk artifact owned by a single probe. Close
// removes it; callers defer Close immediately after creation so the file is
// gone on every exit path.
type TempFile struct {
	path    string
	removed bool
}

// NewTempFile creates an empty temporary file inside dir.
func NewTempFile(dir, pattern string) (*TempFile, error) {
	if strings.TrimSpace(dir) != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
	}
	file, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := file.Name()
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return &TempFile{path: path}, nil
}

// Path returns the absolute location of the artifact.
func (t *TempFile) Path() string {
	return t.path
}

// Size returns the current size in bytes, or 0 when the file is missing.
func (t *TempFile) Size() int64 {
	info, err := os.Stat(t.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Close deletes the artifact. Safe to call more than once.
func (t *TempFile) Close() error {
	if t == nil || t.removed {
		return nil
	}
	t.removed = true
	if err := os.Remove(t.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
