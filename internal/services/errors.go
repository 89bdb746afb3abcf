package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolTimeout marks an external tool that exceeded its time budget.
	ErrToolTimeout = errors.New("tool timeout")
	// ErrToolExit marks a non-zero exit from an external tool.
	ErrToolExit = errors.New("tool exited with error")
	// ErrMalformedOutput marks tool output that could not be parsed.
	ErrMalformedOutput = errors.New("malformed tool output")
	// ErrNotFound marks a missing binary or input file.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyScanned marks a path that is already recorded; expected,
	// not a failure.
	ErrAlreadyScanned = errors.New("already scanned")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrToolExit
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether err is an adapter-level failure that should be
// treated as absence of a signal rather than aborting a characterization.
func Recoverable(err error) bool {
	return errors.Is(err, ErrToolTimeout) ||
		errors.Is(err, ErrToolExit) ||
		errors.Is(err, ErrMalformedOutput) ||
		errors.Is(err, ErrNotFound)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
