// Package coreerrors defines the typed error taxonomy the scheduling core
// surfaces at its boundary, and the boundary-formatting helpers that flatten
// it to human-readable text exactly once, at the CLI edge.
package coreerrors

import (
	"errors"
	"fmt"
	"os"

	"github.com/willdone/timeline-core/internal/logger"
)

// Kind is the error taxonomy's discriminant.
type Kind string

const (
	InvalidInput   Kind = "invalid-input"
	NotFound       Kind = "not-found"
	DateParse      Kind = "date-parse"
	StoreFailure   Kind = "database"
	NetworkFailure Kind = "network"
	IoFailure      Kind = "io"
	Unauthorised   Kind = "unauthorised"
	Internal       Kind = "internal"
)

// Error wraps a cause with the Kind that should be serialised at the
// boundary. No error is recovered locally inside the scheduling core:
// every component returns an *Error (or a plain wrapped error, which
// KindOf classifies as Internal) and the caller's transaction aborts.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind from a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Cause: errors.New(msg)}
}

// Newf builds an Error of the given kind from a format string.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error under kind, preserving it as the
// cause. It returns a plain nil error interface (not a typed nil *Error)
// when err is nil, so callers can return it directly without the
// typed-nil-in-interface pitfall.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Cause: err}
}

// KindOf returns the Kind of err if it (or something it wraps) is an
// *Error, and Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Format formats an error message with a consistent "Error: " prefix.
// This is the only place in the module where an error is flattened to text.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string.
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1.
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1.
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
