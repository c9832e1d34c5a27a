package event

import "time"

// Event types published by the command engine.
const (
	TypeConsole         = "console.output"
	TypeCommandStarted  = "command.started"
	TypeCommandFinished = "command.finished"
	TypeProjectCreated  = "project.created"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "command.started").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Console Events
// -----------------------------------------------------------------------------

// Channel identifies where a piece of console text came from.
type Channel int

const (
	// ChannelEngine marks text generated by the engine (banners, summaries).
	ChannelEngine Channel = iota
	// ChannelStdout marks decoded standard output of the child process.
	ChannelStdout
	// ChannelStderr marks decoded standard error of the child process.
	ChannelStderr
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case ChannelEngine:
		return "engine"
	case ChannelStdout:
		return "stdout"
	case ChannelStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Style is a rendering hint for console text.
type Style int

const (
	// StylePlain is relayed output with no emphasis.
	StylePlain Style = iota
	// StyleMuted is relayed diagnostic text (stderr during build and run).
	StyleMuted
	// StyleInfo is a command start banner.
	StyleInfo
	// StyleSuccess is a successful command summary.
	StyleSuccess
	// StyleError is a failed command summary.
	StyleError
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleMuted:
		return "muted"
	case StyleInfo:
		return "info"
	case StyleSuccess:
		return "success"
	case StyleError:
		return "error"
	default:
		return "unknown"
	}
}

// ConsoleEvent is one unit of decoded, styled text destined for display.
type ConsoleEvent struct {
	baseEvent
	SessionID string
	Text      string
	Channel   Channel
	Style     Style
	Seq       uint64 // Position within Channel for this session, starting at 1
	Clear     bool   // Sink should discard prior output before showing Text
}

// NewConsoleEvent creates a ConsoleEvent.
func NewConsoleEvent(sessionID, text string, channel Channel, style Style, seq uint64) ConsoleEvent {
	return ConsoleEvent{
		baseEvent: newBaseEvent(TypeConsole),
		SessionID: sessionID,
		Text:      text,
		Channel:   channel,
		Style:     style,
		Seq:       seq,
	}
}

// -----------------------------------------------------------------------------
// Command Lifecycle Events
// -----------------------------------------------------------------------------

// CommandStartedEvent is emitted after a toolchain process has been spawned.
type CommandStartedEvent struct {
	baseEvent
	SessionID string
	Command   string   // Command kind (e.g., "build")
	Args      []string // Full argument list passed to the executable
	Dir       string   // Working directory, empty for "new"
}

// NewCommandStartedEvent creates a CommandStartedEvent.
func NewCommandStartedEvent(sessionID, command string, args []string, dir string) CommandStartedEvent {
	return CommandStartedEvent{
		baseEvent: newBaseEvent(TypeCommandStarted),
		SessionID: sessionID,
		Command:   command,
		Args:      args,
		Dir:       dir,
	}
}

// CommandFinishedEvent is emitted once the engine is back to idle after a
// command, including commands that failed to launch.
type CommandFinishedEvent struct {
	baseEvent
	SessionID string
	Command   string
	ExitCode  int           // -1 when the process never ran or was killed
	Elapsed   time.Duration // Zero when the process never ran
	Stopped   bool          // Stop was requested while the command ran
	Err       error         // nil on success, otherwise a *errors.ProcessError
}

// NewCommandFinishedEvent creates a CommandFinishedEvent.
func NewCommandFinishedEvent(sessionID, command string, exitCode int, elapsed time.Duration, stopped bool, err error) CommandFinishedEvent {
	return CommandFinishedEvent{
		baseEvent: newBaseEvent(TypeCommandFinished),
		SessionID: sessionID,
		Command:   command,
		ExitCode:  exitCode,
		Elapsed:   elapsed,
		Stopped:   stopped,
		Err:       err,
	}
}

// Success reports whether the command completed with exit code 0.
func (e CommandFinishedEvent) Success() bool {
	return e.Err == nil
}

// -----------------------------------------------------------------------------
// Project Events
// -----------------------------------------------------------------------------

// ProjectCreatedEvent is emitted when `cargo new` completes successfully.
type ProjectCreatedEvent struct {
	baseEvent
	Path string
}

// NewProjectCreatedEvent creates a ProjectCreatedEvent.
func NewProjectCreatedEvent(path string) ProjectCreatedEvent {
	return ProjectCreatedEvent{
		baseEvent: newBaseEvent(TypeProjectCreated),
		Path:      path,
	}
}
