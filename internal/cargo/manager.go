package cargo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/cargodeck/internal/decode"
	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/logging"
	"github.com/Iron-Ham/cargodeck/internal/process"
)

// DefaultExecutable is the cargo binary looked up on PATH.
const DefaultExecutable = "cargo"

// Manager runs cargo commands one at a time and publishes their decoded
// output on an event bus.
//
// A Manager is either idle or running exactly one command. Requests made
// while running are rejected with errors.ErrCommandRunning and have no other
// effect. Every termination path, including launch failures and stops,
// returns it to idle.
type Manager struct {
	transport  process.Transport
	bus        *event.Bus
	decoder    *decode.Decoder
	logger     *logging.Logger
	executable string
	env        []string
	now        func() time.Time

	mu          sync.Mutex
	projectPath string
	active      *session // nil while idle

	pumps sync.WaitGroup
}

// session is the live binding between a running command and its process.
// Only the pump goroutine touches the decoder states and sequence counters.
type session struct {
	id      string
	req     Request
	proc    process.Session
	started time.Time
	logger  *logging.Logger

	states [2]decode.State // indexed by process.Channel
	seq    map[event.Channel]uint64

	stopped bool // guarded by Manager.mu
}

// Option configures a Manager.
type Option func(*Manager)

// WithExecutable sets the cargo executable. Empty selects DefaultExecutable.
func WithExecutable(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.executable = path
		}
	}
}

// WithEnv adds KEY=VALUE entries to the environment of every command.
func WithEnv(env []string) Option {
	return func(m *Manager) {
		m.env = append([]string(nil), env...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDecoder sets the decoder used for process output. The default follows
// the process locale.
func WithDecoder(d *decode.Decoder) Option {
	return func(m *Manager) {
		if d != nil {
			m.decoder = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithProjectPath sets the initial project root.
func WithProjectPath(path string) Option {
	return func(m *Manager) {
		m.projectPath = path
	}
}

// NewManager creates an idle Manager that spawns processes through transport
// and publishes events on bus.
func NewManager(transport process.Transport, bus *event.Bus, opts ...Option) *Manager {
	m := &Manager{
		transport:  transport,
		bus:        bus,
		decoder:    decode.ForLocale(),
		logger:     logging.NopLogger(),
		executable: DefaultExecutable,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetProjectPath sets the project root used by Build, Run and Clean. It does
// not affect a command that is already running.
func (m *Manager) SetProjectPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectPath = path
}

// ProjectPath returns the current project root.
func (m *Manager) ProjectPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projectPath
}

// State returns the kind of the running command, or None when idle.
func (m *Manager) State() CommandKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return None
	}
	return m.active.req.Kind
}

// Running reports whether a command is in flight.
func (m *Manager) Running() bool {
	return m.State() != None
}

// CreateProject runs `cargo new` for path. On success a
// event.ProjectCreatedEvent carrying path is published.
func (m *Manager) CreateProject(tmpl Template, path string) error {
	return m.Submit(Request{Kind: NewProject, Template: tmpl, Path: path})
}

// Build runs `cargo build` in the project root.
func (m *Manager) Build(target BuildTarget) error {
	return m.Submit(Request{Kind: Build, Target: target, Dir: m.ProjectPath()})
}

// Run runs `cargo run` in the project root, passing args to the program.
func (m *Manager) Run(target BuildTarget, args ...string) error {
	return m.Submit(Request{Kind: Run, Target: target, Args: args, Dir: m.ProjectPath()})
}

// Clean runs `cargo clean` in the project root.
func (m *Manager) Clean() error {
	return m.Submit(Request{Kind: Clean, Dir: m.ProjectPath()})
}

// Submit validates req and starts it. It returns once the process has been
// spawned; output and termination arrive as events.
//
// The only errors returned are validation errors and
// errors.ErrCommandRunning. Launch failures are reported on the bus like any
// other failed command.
func (m *Manager) Submit(req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	req.Args = append([]string(nil), req.Args...)

	m.mu.Lock()
	if m.active != nil {
		running := m.active.req.Kind
		m.mu.Unlock()
		m.logger.Info("command rejected", "command", req.Kind.String(), "running", running.String())
		return errors.ErrCommandRunning
	}

	id := uuid.NewString()
	logger := m.logger.WithSession(id).WithCommand(req.Kind.String())
	spec := process.Spec{
		Executable: m.executable,
		Args:       req.CommandArgs(),
		Dir:        req.WorkDir(),
		Env:        m.env,
	}
	started := m.now()

	proc, err := m.transport.Spawn(context.Background(), spec)
	if err != nil {
		m.mu.Unlock()
		m.launchFailed(id, req, spec, started, err, logger)
		return nil
	}

	s := &session{
		id:      id,
		req:     req,
		proc:    proc,
		started: started,
		logger:  logger,
		states:  [2]decode.State{m.decoder.NewState(), m.decoder.NewState()},
		seq:     make(map[event.Channel]uint64),
	}
	m.active = s
	m.pumps.Add(1)
	m.mu.Unlock()

	logger.Info("command started", "args", spec.Args, "dir", spec.Dir, "pid", proc.PID())
	if banner, ok := startBanner(req, started); ok {
		m.publishEngine(s, banner)
	}
	m.bus.Publish(event.NewCommandStartedEvent(id, req.Kind.String(), spec.Args, spec.Dir))

	go m.pump(s)
	return nil
}

// Stop asks the running process to terminate. It is a no-op when idle and
// safe to call repeatedly; the command still finishes through the normal
// termination path.
func (m *Manager) Stop() {
	m.mu.Lock()
	s := m.active
	if s != nil {
		s.stopped = true
	}
	m.mu.Unlock()

	if s == nil {
		return
	}
	s.logger.Info("stop requested")
	s.proc.Stop()
}

// Wait blocks until every started command has finished and all of its
// events have been published.
func (m *Manager) Wait() {
	m.pumps.Wait()
}

func (m *Manager) launchFailed(id string, req Request, spec process.Spec, at time.Time, err error, logger *logging.Logger) {
	logger.Error("command failed to launch", "executable", m.executable, "error", err.Error())

	perr := err
	var procErr *errors.ProcessError
	if errors.As(err, &procErr) {
		procErr.WithCommand(req.Kind.String())
	} else {
		perr = errors.NewProcessError(errors.ErrLaunchFailed, err).WithCommand(req.Kind.String())
	}

	// Subscribers keyed on the started event still see which project failed.
	m.bus.Publish(event.NewCommandStartedEvent(id, req.Kind.String(), spec.Args, spec.Dir))
	msg := launchFailure(req.Kind, at, err)
	ev := event.NewConsoleEvent(id, msg.text, event.ChannelEngine, msg.style, 1)
	m.bus.Publish(ev)
	m.bus.Publish(event.NewCommandFinishedEvent(id, req.Kind.String(), -1, 0, false, perr))
}

// pump serializes all work on a session: decoding, relaying and the
// termination sequence.
func (m *Manager) pump(s *session) {
	defer m.pumps.Done()

	for ev := range s.proc.Events() {
		switch ev.Type {
		case process.EventOutput:
			m.relay(s, ev.Channel, ev.Data)
		case process.EventExit:
			m.finish(s, ev.Exit)
			return
		}
	}
	// The transport closed the stream without reporting an exit.
	m.finish(s, process.ExitStatus{Code: -1})
}

func (m *Manager) relay(s *session, ch process.Channel, data []byte) {
	if ch != process.Stdout && ch != process.Stderr {
		return
	}
	text, st := m.decoder.Decode(s.states[ch], data)
	s.states[ch] = st
	m.publishText(s, ch, text)
}

func (m *Manager) publishText(s *session, ch process.Channel, text string) {
	if text == "" {
		return
	}

	channel, style := event.ChannelStdout, event.StylePlain
	if ch == process.Stderr {
		channel = event.ChannelStderr
		if s.req.Kind == Build || s.req.Kind == Run {
			style = event.StyleMuted
		}
	}
	s.seq[channel]++
	m.bus.Publish(event.NewConsoleEvent(s.id, text, channel, style, s.seq[channel]))
}

func (m *Manager) publishEngine(s *session, msg message) {
	s.seq[event.ChannelEngine]++
	ev := event.NewConsoleEvent(s.id, msg.text, event.ChannelEngine, msg.style, s.seq[event.ChannelEngine])
	ev.Clear = msg.clear
	m.bus.Publish(ev)
}

// finish flushes both decoders, reports the outcome and returns the Manager
// to idle. The slot is cleared only here, so a new command cannot spawn
// while the previous process is still terminating.
func (m *Manager) finish(s *session, status process.ExitStatus) {
	for _, ch := range []process.Channel{process.Stdout, process.Stderr} {
		m.publishText(s, ch, m.decoder.Flush(s.states[ch]))
		s.states[ch] = decode.State{}
	}

	ended := m.now()
	elapsed := ended.Sub(s.started)

	m.mu.Lock()
	stopped := s.stopped
	m.mu.Unlock()

	kind := s.req.Kind.String()
	var perr error
	switch {
	case !status.Normal:
		perr = errors.NewProcessError(errors.ErrAbnormalExit, nil).WithCommand(kind).WithSignal(status.Signal)
	case status.Code != 0:
		perr = errors.NewProcessError(errors.ErrNonZeroExit, nil).WithCommand(kind).WithExitCode(status.Code)
	}

	if msg, ok := summary(s.req.Kind, status, elapsed, stopped, ended); ok {
		m.publishEngine(s, msg)
	}

	fields := []any{
		"exit_code", status.Code,
		"normal", status.Normal,
		"stopped", stopped,
		"duration_ms", elapsed.Milliseconds(),
	}
	switch {
	case perr == nil:
		s.logger.Info("command finished", fields...)
	case stopped || errors.GetSeverity(perr) < errors.SeverityError:
		s.logger.Warn("command finished", fields...)
	default:
		s.logger.Error("command failed", append(fields, "error", perr.Error())...)
	}

	m.mu.Lock()
	if m.active == s {
		m.active = nil
	}
	m.mu.Unlock()

	m.bus.Publish(event.NewCommandFinishedEvent(s.id, kind, status.Code, elapsed, stopped, perr))
	if s.req.Kind == NewProject && status.Success() {
		m.bus.Publish(event.NewProjectCreatedEvent(s.req.Path))
	}
}
