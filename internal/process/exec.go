package process

import (
	"context"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/logging"
)

// DefaultGracePeriod is how long Stop waits after SIGTERM before SIGKILL.
const DefaultGracePeriod = 3 * time.Second

// defaultEventBuffer is the capacity of a session's event channel.
const defaultEventBuffer = 64

// ExecTransport runs child processes with os/exec.
type ExecTransport struct {
	grace       time.Duration
	eventBuffer int
	logger      *logging.Logger
}

// ExecOption configures an ExecTransport.
type ExecOption func(*ExecTransport)

// WithGracePeriod sets the delay between graceful and forced termination.
// Non-positive values select DefaultGracePeriod.
func WithGracePeriod(d time.Duration) ExecOption {
	return func(t *ExecTransport) {
		if d > 0 {
			t.grace = d
		}
	}
}

// WithEventBuffer sets the capacity of each session's event channel.
func WithEventBuffer(n int) ExecOption {
	return func(t *ExecTransport) {
		if n >= 0 {
			t.eventBuffer = n
		}
	}
}

// WithTransportLogger sets the logger used for signal delivery failures.
func WithTransportLogger(logger *logging.Logger) ExecOption {
	return func(t *ExecTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewExecTransport creates an ExecTransport.
func NewExecTransport(opts ...ExecOption) *ExecTransport {
	t := &ExecTransport{
		grace:       DefaultGracePeriod,
		eventBuffer: defaultEventBuffer,
		logger:      logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Spawn implements Transport.
func (t *ExecTransport) Spawn(ctx context.Context, spec Spec) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewProcessError(errors.ErrLaunchFailed, err)
	}

	path, err := exec.LookPath(spec.Executable)
	if err != nil {
		return nil, errors.NewProcessError(errors.ErrLaunchFailed, err)
	}

	cmd := exec.Command(path, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	setProcessGroup(cmd)
	// Bounds how long Wait keeps draining pipes held open by grandchildren.
	cmd.WaitDelay = t.grace

	s := &execSession{
		cmd:    cmd,
		events: make(chan Event, t.eventBuffer),
		done:   make(chan struct{}),
		grace:  t.grace,
		logger: t.logger.With("executable", spec.Executable),
	}
	cmd.Stdout = &chunkWriter{session: s, channel: Stdout}
	cmd.Stderr = &chunkWriter{session: s, channel: Stderr}

	if err := cmd.Start(); err != nil {
		return nil, errors.NewProcessError(errors.ErrLaunchFailed, err)
	}

	go s.wait()
	return s, nil
}

// execSession is a Session backed by an exec.Cmd.
type execSession struct {
	cmd    *exec.Cmd
	events chan Event
	done   chan struct{} // closed once the process has been reaped
	grace  time.Duration
	logger *logging.Logger

	stopOnce sync.Once
}

func (s *execSession) Events() <-chan Event {
	return s.events
}

func (s *execSession) PID() int {
	if s.cmd.Process == nil {
		return -1
	}
	return s.cmd.Process.Pid
}

func (s *execSession) Stop() {
	s.stopOnce.Do(func() {
		if s.exited() {
			return
		}
		if err := terminate(s.cmd.Process); err != nil {
			s.logger.Warn("failed to terminate process", "pid", s.PID(), "error", err.Error())
		}

		go func() {
			timer := time.NewTimer(s.grace)
			defer timer.Stop()

			select {
			case <-s.done:
			case <-timer.C:
				if s.exited() {
					return
				}
				if err := kill(s.cmd.Process); err != nil {
					s.logger.Warn("failed to kill process", "pid", s.PID(), "error", err.Error())
				}
			}
		}()
	})
}

func (s *execSession) exited() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// wait reaps the process once both output channels are drained and emits
// the final exit event.
func (s *execSession) wait() {
	err := s.cmd.Wait()
	status := exitStatus(s.cmd.ProcessState)
	if err != nil && s.cmd.ProcessState == nil {
		s.logger.Warn("wait failed", "error", err.Error())
	}
	close(s.done)

	s.events <- Event{Type: EventExit, Exit: status}
	close(s.events)
}

// exitStatus converts a ProcessState into an ExitStatus.
func exitStatus(ps *os.ProcessState) ExitStatus {
	if ps == nil {
		return ExitStatus{Code: -1, Normal: false}
	}

	status := ExitStatus{Code: ps.ExitCode(), Normal: true}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		status.Code = -1
		status.Normal = false
		status.Signal = ws.Signal().String()
	} else if status.Code == -1 {
		status.Normal = false
	}
	return status
}

// chunkWriter forwards each write from os/exec's copy goroutine as an
// output event. os/exec issues writes for one stream sequentially, which
// preserves per-channel ordering.
type chunkWriter struct {
	session *execSession
	channel Channel
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data := make([]byte, len(p))
	copy(data, p)
	w.session.events <- Event{Type: EventOutput, Channel: w.channel, Data: data}
	return len(p), nil
}
