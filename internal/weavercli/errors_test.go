package weavercli

import (
	"errors"
	"testing"
)

func TestWithExit_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := withExit(ExitValidationFailed, cause)

	var ee *exitError
	if !errors.As(err, &ee) {
		t.Fatal("expected errors.As to find *exitError")
	}
	if ee.code != ExitValidationFailed {
		t.Errorf("expected code %d, got %d", ExitValidationFailed, ee.code)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestWithExit_NilPassesThrough(t *testing.T) {
	if withExit(ExitConfigError, nil) != nil {
		t.Error("expected nil error to pass through unchanged")
	}
}
