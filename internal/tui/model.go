// Package tui is an interactive dashboard for running cargo commands.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/cargodeck/internal/cargo"
	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/logging"
	"github.com/Iron-Ham/cargodeck/internal/project"
	"github.com/Iron-Ham/cargodeck/internal/util"
)

// maxRootWidth bounds the project path shown in the header.
const maxRootWidth = 40

// Engine is the part of the command manager the dashboard drives.
type Engine interface {
	Build(target cargo.BuildTarget) error
	Run(target cargo.BuildTarget, args ...string) error
	Clean() error
	Stop()
	Running() bool
}

// Options configures the dashboard model.
type Options struct {
	Engine     Engine
	Root       string              // Project root shown in the header
	Properties *project.Properties // Saved to Root when the target changes
	Styles     console.Styles
	MaxLines   int
	Logger     *logging.Logger

	// Clipboard receives the console text on copy. Defaults to the system clipboard.
	Clipboard func(string) error
}

// Messages

// busMsg carries an event published by the command engine.
type busMsg struct {
	event event.Event
}

// submitMsg reports the outcome of asking the engine to start a command.
type submitMsg struct {
	command string
	err     error
}

// statusMsg replaces the status line.
type statusMsg string

// result is the outcome of the last finished command.
type result struct {
	command string
	success bool
	stopped bool
	code    int
	elapsed time.Duration
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	engine    Engine
	root      string
	props     *project.Properties
	styles    console.Styles
	chrome    chromeStyles
	logger    *logging.Logger
	clipboard func(string) error

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model
	buf      *buffer

	width      int
	height     int
	ready      bool
	autoFollow bool

	running    string // Command in progress, empty when idle
	status     string
	lastResult *result
}

// chromeStyles style the dashboard frame around the console.
type chromeStyles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	status  lipgloss.Style
}

func newChromeStyles(s console.Styles) chromeStyles {
	return chromeStyles{
		title:   s.Plain.Foreground(console.PrimaryColor).Bold(true),
		label:   s.Muted,
		value:   s.Plain.Bold(true),
		success: s.Success,
		failure: s.Error,
		status:  s.Muted.Italic(true),
	}
}

// NewModel creates the dashboard model.
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	props := opts.Properties
	if props == nil {
		props = project.DefaultProperties()
	}
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Info

	vp := viewport.New(0, 0)
	vp.KeyMap = viewportKeyMap()

	return Model{
		engine:     opts.Engine,
		root:       opts.Root,
		props:      props,
		styles:     opts.Styles,
		chrome:     newChromeStyles(opts.Styles),
		logger:     logger,
		clipboard:  copyFn,
		keys:       defaultKeyMap(),
		help:       help.New(),
		spinner:    sp,
		viewport:   vp,
		buf:        newBuffer(opts.MaxLines),
		autoFollow: true,
		status:     "Ready",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case busMsg:
		if cmd := m.handleEvent(msg.event); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case submitMsg:
		if msg.err != nil {
			if !errors.IsUserFacing(msg.err) {
				m.logger.Error("command submission failed", "command", msg.command, "error", msg.err.Error())
			}
			m.status = submitFailure(msg.command, msg.err)
		}

	case statusMsg:
		m.status = string(msg)

	case spinner.TickMsg:
		if m.running == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	if m.viewport.AtBottom() {
		m.autoFollow = true
	} else if _, ok := msg.(tea.KeyMsg); ok {
		m.autoFollow = false
	}

	return m, tea.Batch(cmds...)
}

// handleKey runs dashboard commands. Keys it does not claim fall through to
// the viewport.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keys.Build):
		target := m.props.BuildTarget()
		return m.submit("build", func() error { return m.engine.Build(target) }), true

	case key.Matches(msg, m.keys.Run):
		target := m.props.BuildTarget()
		args := append([]string(nil), m.props.Arguments...)
		return m.submit("run", func() error { return m.engine.Run(target, args...) }), true

	case key.Matches(msg, m.keys.Clean):
		return m.submit("clean", m.engine.Clean), true

	case key.Matches(msg, m.keys.Stop):
		if !m.engine.Running() {
			m.status = "Nothing to stop"
			return nil, true
		}
		m.status = "Stopping " + m.running
		engine := m.engine
		return func() tea.Msg {
			engine.Stop()
			return nil
		}, true

	case key.Matches(msg, m.keys.Target):
		m.toggleTarget()
		return nil, true

	case key.Matches(msg, m.keys.Clear):
		m.buf.reset()
		m.refresh()
		m.status = "Console cleared"
		return nil, true

	case key.Matches(msg, m.keys.Copy):
		return m.copyConsole(), true

	case key.Matches(msg, m.keys.Follow):
		m.autoFollow = true
		m.viewport.GotoBottom()
		return nil, true

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return nil, true
	}
	return nil, false
}

// submit calls the engine off the update loop. The engine publishes to the
// bus synchronously, and the bus feeds this program.
func (m *Model) submit(command string, start func() error) tea.Cmd {
	return func() tea.Msg {
		return submitMsg{command: command, err: start()}
	}
}

func submitFailure(command string, err error) string {
	switch {
	case errors.Is(err, errors.ErrCommandRunning):
		return "A command is already running"
	case errors.Is(err, errors.ErrNoProject):
		return "No project selected"
	case errors.IsUserFacing(err):
		return fmt.Sprintf("Cannot %s: %v", command, err)
	default:
		return fmt.Sprintf("Cannot %s: unexpected error", command)
	}
}

func (m *Model) toggleTarget() {
	next := m.props.BuildTarget().Toggle()
	m.props.SetBuildTarget(next)
	m.status = "Target: " + next.String()
	if m.root == "" {
		return
	}
	if err := m.props.Save(m.root); err != nil {
		m.logger.Warn("failed to save project properties", "root", m.root, "error", err.Error())
		m.status = "Target: " + next.String() + " (not saved: " + err.Error() + ")"
	}
}

func (m *Model) copyConsole() tea.Cmd {
	text := m.buf.plain()
	if text == "" {
		m.status = "Console is empty"
		return nil
	}
	copyFn := m.clipboard
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return statusMsg("Copy failed: " + err.Error())
		}
		return statusMsg(fmt.Sprintf("Copied %d lines", strings.Count(text, "\n")))
	}
}

func (m *Model) handleEvent(e event.Event) tea.Cmd {
	switch ev := e.(type) {
	case event.ConsoleEvent:
		m.buf.append(ev)
		m.refresh()

	case event.CommandStartedEvent:
		m.running = ev.Command
		m.status = "Running cargo " + strings.Join(ev.Args, " ")
		return m.spinner.Tick

	case event.CommandFinishedEvent:
		m.running = ""
		m.lastResult = &result{
			command: ev.Command,
			success: ev.Success(),
			stopped: ev.Stopped,
			code:    ev.ExitCode,
			elapsed: ev.Elapsed,
		}
		m.status = "Ready"

	case event.ProjectCreatedEvent:
		m.status = "Created " + ev.Path
	}
	return nil
}

// refresh pushes the scrollback into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.buf.render(m.styles))
	if m.autoFollow {
		m.viewport.GotoBottom()
	}
}

// layout sizes the viewport to the space left by the header and footer.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	footer := lipgloss.Height(m.help.View(m.keys))
	height := m.height - 2 - footer // header + status line
	if height < 1 {
		height = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = height
	m.help.Width = m.width
	m.refresh()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.statusView(),
		m.help.View(m.keys),
	)
}

func (m Model) headerView() string {
	parts := []string{
		m.chrome.title.Render("cargodeck"),
		m.chrome.label.Render("project ") + m.chrome.value.Render(displayRoot(m.root)),
		m.chrome.label.Render("target ") + m.chrome.value.Render(m.props.BuildTarget().String()),
	}
	if m.running != "" {
		parts = append(parts, m.spinner.View()+" "+m.chrome.value.Render(m.running))
	}
	return util.TruncateANSI(strings.Join(parts, "  "), m.width)
}

func displayRoot(root string) string {
	if root == "" {
		return "(none)"
	}
	return util.ShortenPath(root, maxRootWidth)
}

func (m Model) statusView() string {
	var parts []string
	if r := m.lastResult; r != nil {
		parts = append(parts, m.resultView(r))
	}
	parts = append(parts, m.chrome.status.Render(m.status))
	return util.TruncateANSI(strings.Join(parts, "  "), m.width)
}

func (m Model) resultView(r *result) string {
	switch {
	case r.success:
		return m.chrome.success.Render(fmt.Sprintf("✓ %s %.3fs", r.command, r.elapsed.Seconds()))
	case r.stopped:
		return m.chrome.failure.Render(fmt.Sprintf("■ %s stopped", r.command))
	case r.code >= 0:
		return m.chrome.failure.Render(fmt.Sprintf("✗ %s exit %d", r.command, r.code))
	default:
		return m.chrome.failure.Render(fmt.Sprintf("✗ %s failed", r.command))
	}
}
