// Package errors provides centralized error definitions and error handling
// utilities for cargodeck. It defines the process failure taxonomy used by
// the command engine, a domain error type carrying command context, and
// classification helpers.
//
// # Error Types
//
// Process failures are represented by [ProcessError], whose Kind is one of:
//   - [ErrLaunchFailed]: the executable could not be located or started
//   - [ErrAbnormalExit]: the process was killed or crashed
//   - [ErrNonZeroExit]: the process exited normally with a non-zero code
//
// [ErrCommandRunning] is returned by the engine when a command is requested
// while another one is still in flight.
//
// # Usage
//
//	err := errors.NewProcessError(errors.ErrLaunchFailed, startErr).WithCommand("build")
//	if errors.Is(err, errors.ErrLaunchFailed) { ... }
//
//	var procErr *errors.ProcessError
//	if errors.As(err, &procErr) {
//	    fmt.Println(procErr.ExitCode)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Process failure kinds
var (
	// ErrLaunchFailed indicates the executable could not be located or started.
	ErrLaunchFailed = New("launch failed")
	// ErrAbnormalExit indicates the process was killed or crashed.
	ErrAbnormalExit = New("abnormal exit")
	// ErrNonZeroExit indicates a normal termination with a non-zero exit code.
	ErrNonZeroExit = New("non-zero exit")
)

// Engine sentinel errors
var (
	// ErrCommandRunning indicates a command was requested while another is running.
	ErrCommandRunning = New("a command is already running")
	// ErrNoProject indicates a project command was requested without a project path.
	ErrNoProject = New("no project path set")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// ProcessError
// -----------------------------------------------------------------------------

// ProcessError describes how a toolchain process failed.
//
// Example:
//
//	err := errors.NewProcessError(errors.ErrNonZeroExit, nil).
//	    WithCommand("build").WithExitCode(101)
//	fmt.Println(err) // "process error [command=build, code=101]: non-zero exit"
type ProcessError struct {
	baseError
	// Kind is one of ErrLaunchFailed, ErrAbnormalExit or ErrNonZeroExit.
	Kind     error
	Command  string
	ExitCode int
	Signal   string
}

// NewProcessError creates a ProcessError of the given kind. cause is the
// underlying error reported by the operating system, if any.
func NewProcessError(kind, cause error) *ProcessError {
	severity := SeverityError
	if kind == ErrNonZeroExit {
		// A failing build is an expected outcome, not a system fault.
		severity = SeverityWarning
	}
	return &ProcessError{
		baseError: baseError{
			message:    kind.Error(),
			cause:      cause,
			severity:   severity,
			userFacing: true,
		},
		Kind:     kind,
		ExitCode: -1,
	}
}

// WithCommand adds the command name to the error context.
func (e *ProcessError) WithCommand(command string) *ProcessError {
	e.Command = command
	return e
}

// WithExitCode adds the process exit code to the error context.
func (e *ProcessError) WithExitCode(code int) *ProcessError {
	e.ExitCode = code
	return e
}

// WithSignal adds the terminating signal name to the error context.
func (e *ProcessError) WithSignal(sig string) *ProcessError {
	e.Signal = sig
	return e
}

// Error returns the formatted error message.
func (e *ProcessError) Error() string {
	var parts []string
	if e.Command != "" {
		parts = append(parts, fmt.Sprintf("command=%s", e.Command))
	}
	if e.ExitCode >= 0 {
		parts = append(parts, fmt.Sprintf("code=%d", e.ExitCode))
	}
	if e.Signal != "" {
		parts = append(parts, fmt.Sprintf("signal=%s", e.Signal))
	}

	prefix := "process error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("process error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is reports whether target is this error's kind, any ProcessError, or
// matches the wrapped cause.
func (e *ProcessError) Is(target error) bool {
	if _, ok := target.(*ProcessError); ok {
		return true
	}
	if target == e.Kind {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing reports whether err carries a message safe to show users.
// Engine sentinels are user facing; unknown errors are not.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var uf interface{ IsUserFacing() bool }
	if As(err, &uf) {
		return uf.IsUserFacing()
	}
	return Is(err, ErrCommandRunning) || Is(err, ErrNoProject) || Is(err, ErrInvalidInput)
}

// GetSeverity returns the severity of err, defaulting to SeverityError.
func GetSeverity(err error) Severity {
	var s interface{ Severity() Severity }
	if As(err, &s) {
		return s.Severity()
	}
	return SeverityError
}
