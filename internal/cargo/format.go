package cargo

import (
	"fmt"
	"time"

	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/process"
)

// timestampLayout prefixes engine messages.
const timestampLayout = "15:04:05"

// message is one engine-generated console line.
type message struct {
	text  string
	style event.Style
	clear bool
}

func stamp(at time.Time, format string, args ...any) string {
	return fmt.Sprintf("[%s] ", at.Format(timestampLayout)) + fmt.Sprintf(format, args...) + "\n"
}

// startBanner returns the banner shown when a command starts. Only build and
// run have one; they also clear the console.
func startBanner(req Request, at time.Time) (message, bool) {
	switch req.Kind {
	case Build, Run:
		return message{
			text:  stamp(at, "Cargo %s started (%s)", req.Kind, req.Target),
			style: event.StyleInfo,
			clear: true,
		}, true
	default:
		return message{}, false
	}
}

// launchFailure returns the summary for a command whose process never started.
func launchFailure(kind CommandKind, at time.Time, err error) message {
	return message{
		text:  stamp(at, "Cargo %s failed to start: %v", kind, launchCause(err)),
		style: event.StyleError,
	}
}

// launchCause strips the process error wrapper so the console shows the
// operating system's reason.
func launchCause(err error) error {
	if cause := errors.Unwrap(err); cause != nil {
		return cause
	}
	return err
}

// summary returns the line appended when a command terminates.
//
// Build and run always report: elapsed time on success, the exit code on
// failure. Clean reports failures only. New relays cargo's own output and
// adds nothing.
func summary(kind CommandKind, status process.ExitStatus, elapsed time.Duration, stopped bool, at time.Time) (message, bool) {
	if kind == NewProject {
		return message{}, false
	}

	switch {
	case !status.Normal && stopped:
		return message{text: stamp(at, "Cargo %s stopped", kind), style: event.StyleError}, true
	case !status.Normal:
		if status.Signal != "" {
			return message{text: stamp(at, "Cargo %s was terminated (%s)", kind, status.Signal), style: event.StyleError}, true
		}
		return message{text: stamp(at, "Cargo %s was terminated", kind), style: event.StyleError}, true
	case status.Code != 0:
		return message{text: stamp(at, "Cargo %s exited with code %d", kind, status.Code), style: event.StyleError}, true
	case kind == Clean:
		return message{}, false
	default:
		return message{
			text:  stamp(at, "Cargo %s finished in %.3fs", kind, elapsed.Seconds()),
			style: event.StyleSuccess,
		}, true
	}
}
