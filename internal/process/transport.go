package process

import (
	"context"
	"fmt"
)

// Channel identifies one of the two output streams of a child process.
type Channel int

const (
	// Stdout is the child's standard output.
	Stdout Channel = iota
	// Stderr is the child's standard error.
	Stderr
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// EventType distinguishes output chunks from the final exit notification.
type EventType int

const (
	// EventOutput carries a chunk of raw bytes read from Channel.
	EventOutput EventType = iota
	// EventExit carries the termination status. It is always the last event.
	EventExit
)

// ExitStatus describes how a child process ended.
type ExitStatus struct {
	// Code is the exit code, or -1 if the process was killed by a signal.
	Code int
	// Normal is false when the process was killed or crashed.
	Normal bool
	// Signal names the terminating signal when Normal is false, if known.
	Signal string
}

// Success reports a normal exit with code 0.
func (s ExitStatus) Success() bool {
	return s.Normal && s.Code == 0
}

// Event is a notification produced by a running Session.
type Event struct {
	Type    EventType
	Channel Channel    // Set for EventOutput
	Data    []byte     // Set for EventOutput; owned by the receiver
	Exit    ExitStatus // Set for EventExit
}

// Spec describes the process to launch.
type Spec struct {
	// Executable is a program name resolved against PATH, or a path.
	Executable string
	// Args are the arguments passed after the executable.
	Args []string
	// Dir is the working directory; empty inherits the caller's.
	Dir string
	// Env holds extra KEY=VALUE entries appended to the caller's environment.
	Env []string
}

// String renders the spec as a shell-like command line for display.
func (s Spec) String() string {
	out := s.Executable
	for _, a := range s.Args {
		out += " " + a
	}
	return out
}

//go:generate mockgen -source=transport.go -destination=mocks/mock_transport.go -package=mocks

// Transport launches child processes.
type Transport interface {
	// Spawn starts the process described by spec and returns immediately.
	//
	// Returns an error matching errors.ErrLaunchFailed if the executable
	// cannot be located or started. The context bounds only the launch, not
	// the lifetime of the process; use Session.Stop to end it.
	Spawn(ctx context.Context, spec Spec) (Session, error)
}

// Session is a live child process.
//
// Events delivers EventOutput chunks in arrival order per channel, with no
// ordering guarantee between Stdout and Stderr. Exactly one EventExit follows
// once both channels are drained, and then the channel is closed.
type Session interface {
	// Events returns the event stream for this process.
	Events() <-chan Event

	// Stop requests termination: graceful first, forced after the
	// transport's grace period. Calling Stop more than once, or after the
	// process exited, is a no-op.
	Stop()

	// PID returns the operating system process ID.
	PID() int
}
