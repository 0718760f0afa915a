package toast

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed reports content that cannot be parsed or does not conform
	// to the toast schema. Match with errors.Is.
	ErrMalformed = errors.New("malformed toast content")

	// ErrUnknownIdentity is returned when a notifier identity is empty or
	// not registered with the platform service.
	ErrUnknownIdentity = errors.New("unknown notifier identity")

	// ErrAlreadySubmitted is returned when a request is submitted twice.
	ErrAlreadySubmitted = errors.New("request already submitted")

	// ErrUnsupported is returned by backends that cannot run on this platform.
	ErrUnsupported = errors.New("backend not supported on this platform")

	// ErrClosed is returned by backends after Close.
	ErrClosed = errors.New("backend closed")

	// ErrPayloadType is reported when a raw event payload does not have the
	// type its slot expects.
	ErrPayloadType = errors.New("unexpected event payload type")
)

// ContentError describes why markup or a template was rejected.
// It always matches ErrMalformed.
type ContentError struct {
	// Line is the 1-based markup line, 0 when unknown or not markup
	Line int
	// Reason is a short human readable description
	Reason string
	// Err is the underlying parser or validator error, if any
	Err error
}

func (e *ContentError) Error() string {
	msg := "malformed toast content"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	switch {
	case e.Reason != "":
		msg += ": " + e.Reason
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ContentError) Unwrap() error { return e.Err }

// Is makes every ContentError match ErrMalformed.
func (e *ContentError) Is(target error) bool { return target == ErrMalformed }

func malformed(line int, reason string, err error) *ContentError {
	return &ContentError{Line: line, Reason: reason, Err: err}
}

// PlatformError wraps a failure returned directly by a platform call.
// Op is one of "create", "subscribe", "resolve" or "submit".
type PlatformError struct {
	Op   string
	Code uint32
	Err  error
}

func (e *PlatformError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("toast %s failed (0x%08X): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("toast %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PlatformError) Unwrap() error { return e.Err }

func platformErr(op string, err error) *PlatformError {
	var pe *PlatformError
	if errors.As(err, &pe) && pe.Op == op {
		return pe
	}
	return &PlatformError{Op: op, Err: err}
}
