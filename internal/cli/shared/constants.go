// Package shared provides constants and types used across CLI subpackages.
// This package has no dependencies on other CLI packages to avoid circular imports.
package shared

import (
	"errors"
	"fmt"

	"github.com/ariel-frischer/toastkit/internal/config"
	"github.com/ariel-frischer/toastkit/internal/toast"
)

// Command group IDs for organizing help output
const (
	GroupNotifications = "notifications"
	GroupConfiguration = "configuration"
)

// Exit codes for CLI commands
const (
	ExitSuccess           = 0
	ExitValidationFailed  = 1
	ExitInvalidArguments  = 3
	ExitMissingDependency = 4
)

// exitError is a custom error type that carries an exit code.
// A nil err means the failure was already reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// NewExitError creates a silent exit error with the given code.
func NewExitError(code int) error {
	return &exitError{code: code}
}

// InvalidArgs reports a usage problem with ExitInvalidArguments.
func InvalidArgs(format string, args ...any) error {
	return &exitError{code: ExitInvalidArguments, err: fmt.Errorf(format, args...)}
}

// Silent reports whether err carries only an exit code and nothing to print.
func Silent(err error) bool {
	var e *exitError
	return errors.As(err, &e) && e.err == nil
}

// ExitCode returns the exit code from an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	var verr *config.ValidationError
	switch {
	case errors.Is(err, toast.ErrUnsupported):
		return ExitMissingDependency
	case errors.Is(err, toast.ErrUnknownIdentity):
		return ExitInvalidArguments
	case errors.Is(err, toast.ErrMalformed), errors.As(err, &verr):
		return ExitValidationFailed
	}
	return ExitValidationFailed
}
