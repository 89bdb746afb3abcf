package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	err := Wrap(ErrToolTimeout, "dovi", "extract-rpu", "tool exceeded budget", nil)
	if !errors.Is(err, ErrToolTimeout) {
		t.Fatalf("expected timeout marker: %v", err)
	}
	if got := err.Error(); got != "tool timeout: dovi: extract-rpu: tool exceeded budget" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "ffprobe", "inspect", "", errors.New("boom"))
	if !errors.Is(err, ErrToolExit) {
		t.Fatalf("expected default marker: %v", err)
	}
}

func TestRecoverable(t *testing.T) {
	for _, sentinel := range []error{ErrToolTimeout, ErrToolExit, ErrMalformedOutput, ErrNotFound} {
		if !Recoverable(Wrap(sentinel, "x", "y", "z", nil)) {
			t.Fatalf("expected %v to be recoverable", sentinel)
		}
	}
	if Recoverable(errors.New("disk on fire")) {
		t.Fatal("arbitrary error should not be recoverable")
	}
}
