package tui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/cargodeck/internal/cargo"
	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/project"
)

// fakeEngine records the commands the dashboard asks for.
type fakeEngine struct {
	mu      sync.Mutex
	calls   []string
	targets []cargo.BuildTarget
	args    [][]string
	running bool
	stops   int
	err     error
}

func (f *fakeEngine) record(call string, target cargo.BuildTarget, args []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.targets = append(f.targets, target)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeEngine) Build(target cargo.BuildTarget) error {
	return f.record("build", target, nil)
}

func (f *fakeEngine) Run(target cargo.BuildTarget, args ...string) error {
	return f.record("run", target, args)
}

func (f *fakeEngine) Clean() error {
	return f.record("clean", cargo.Debug, nil)
}

func (f *fakeEngine) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeEngine) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func testStyles() console.Styles {
	return console.NewStyles(lipgloss.NewRenderer(&bytes.Buffer{}))
}

func newTestModel(t *testing.T, engine *fakeEngine, opts Options) Model {
	t.Helper()
	opts.Engine = engine
	opts.Styles = testStyles()
	if opts.MaxLines == 0 {
		opts.MaxLines = 1000
	}
	m := NewModel(opts)
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

// update applies msg and returns the new model.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func pressKey(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch s {
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func consoleMsg(text string, ch event.Channel, style event.Style) busMsg {
	return busMsg{event: event.NewConsoleEvent("s1", text, ch, style, 1)}
}

func TestModel_CommandKeys(t *testing.T) {
	props := &project.Properties{Target: "release", Arguments: []string{"--port", "8080"}}

	tests := []struct {
		key        string
		wantCall   string
		wantTarget cargo.BuildTarget
		wantArgs   []string
	}{
		{"b", "build", cargo.Release, nil},
		{"r", "run", cargo.Release, []string{"--port", "8080"}},
		{"c", "clean", cargo.Debug, nil},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			engine := &fakeEngine{}
			m := newTestModel(t, engine, Options{Properties: props})

			_, cmd := pressKey(t, m, tt.key)
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if len(engine.calls) != 0 {
				t.Fatal("engine must not be called inside Update")
			}

			msg := cmd()
			sub, ok := msg.(submitMsg)
			if !ok {
				t.Fatalf("cmd() returned %T, want submitMsg", msg)
			}
			if sub.err != nil {
				t.Errorf("submit error = %v", sub.err)
			}
			if len(engine.calls) != 1 || engine.calls[0] != tt.wantCall {
				t.Fatalf("calls = %v, want [%s]", engine.calls, tt.wantCall)
			}
			if engine.targets[0] != tt.wantTarget {
				t.Errorf("target = %v, want %v", engine.targets[0], tt.wantTarget)
			}
			if strings.Join(engine.args[0], " ") != strings.Join(tt.wantArgs, " ") {
				t.Errorf("args = %v, want %v", engine.args[0], tt.wantArgs)
			}
		})
	}
}

func TestModel_SubmitFailureStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"busy", errors.ErrCommandRunning, "A command is already running"},
		{"no project", errors.ErrNoProject, "No project selected"},
		{"invalid input", fmt.Errorf("%w: unknown build target", errors.ErrInvalidInput), "Cannot build: invalid input: unknown build target"},
		{"unexpected", errors.New("boom"), "Cannot build: unexpected error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t, &fakeEngine{}, Options{})
			m = update(t, m, submitMsg{command: "build", err: tt.err})
			if m.status != tt.want {
				t.Errorf("status = %q, want %q", m.status, tt.want)
			}
			if !strings.Contains(m.View(), tt.want) {
				t.Errorf("View() should show status %q", tt.want)
			}
		})
	}
}

func TestModel_Stop(t *testing.T) {
	engine := &fakeEngine{}
	m := newTestModel(t, engine, Options{})

	m, cmd := pressKey(t, m, "s")
	if cmd != nil {
		t.Error("stop while idle should not issue a command")
	}
	if m.status != "Nothing to stop" {
		t.Errorf("status = %q", m.status)
	}

	engine.running = true
	m = update(t, m, busMsg{event: event.NewCommandStartedEvent("s1", "run", []string{"run"}, "/work/app")})
	m, cmd = pressKey(t, m, "esc")
	if cmd == nil {
		t.Fatal("expected stop command")
	}
	cmd()
	if engine.stops != 1 {
		t.Errorf("stops = %d, want 1", engine.stops)
	}
	if m.status != "Stopping run" {
		t.Errorf("status = %q, want %q", m.status, "Stopping run")
	}
}

func TestModel_ConsoleEvents(t *testing.T) {
	m := newTestModel(t, &fakeEngine{}, Options{})

	m = update(t, m, busMsg{event: event.ConsoleEvent{
		Text:    "[09:26:53] Cargo build started (debug)\n",
		Channel: event.ChannelEngine,
		Style:   event.StyleInfo,
		Clear:   true,
	}})
	m = update(t, m, consoleMsg("   Compiling app v0.1.0", event.ChannelStderr, event.StyleMuted))
	m = update(t, m, busMsg{event: event.ConsoleEvent{
		Text:    "[09:26:55] Cargo build finished in 1.500s\n",
		Channel: event.ChannelEngine,
		Style:   event.StyleSuccess,
	}})

	want := "[09:26:53] Cargo build started (debug)\n   Compiling app v0.1.0\n[09:26:55] Cargo build finished in 1.500s\n"
	if got := m.buf.plain(); got != want {
		t.Errorf("buffer = %q, want %q", got, want)
	}
	view := m.View()
	if !strings.Contains(view, "Compiling app v0.1.0") {
		t.Errorf("View() missing relayed output:\n%s", view)
	}

	// A clearing banner discards earlier output
	m = update(t, m, busMsg{event: event.ConsoleEvent{
		Text:    "[09:30:00] Cargo run started (debug)\n",
		Channel: event.ChannelEngine,
		Style:   event.StyleInfo,
		Clear:   true,
	}})
	if got := m.buf.plain(); got != "[09:30:00] Cargo run started (debug)\n" {
		t.Errorf("buffer after clear = %q", got)
	}
}

func TestModel_Lifecycle(t *testing.T) {
	m := newTestModel(t, &fakeEngine{}, Options{Root: "/work/app"})

	next, cmd := m.Update(busMsg{event: event.NewCommandStartedEvent("s1", "build", []string{"build", "--release"}, "/work/app")})
	m = next.(Model)
	if m.running != "build" {
		t.Errorf("running = %q, want build", m.running)
	}
	if cmd == nil {
		t.Error("start should begin the spinner")
	}
	if m.status != "Running cargo build --release" {
		t.Errorf("status = %q", m.status)
	}
	if !strings.Contains(m.View(), "/work/app") {
		t.Error("header should show the project root")
	}

	m = update(t, m, busMsg{event: event.NewCommandFinishedEvent("s1", "build", 0, 1500*time.Millisecond, false, nil)})
	if m.running != "" {
		t.Errorf("running = %q after finish", m.running)
	}
	if !strings.Contains(m.View(), "build 1.500s") {
		t.Errorf("View() should show the result:\n%s", m.View())
	}

	fail := errors.NewProcessError(errors.ErrNonZeroExit, nil).WithExitCode(101)
	m = update(t, m, busMsg{event: event.NewCommandFinishedEvent("s2", "build", 101, time.Second, false, fail)})
	if !strings.Contains(m.View(), "build exit 101") {
		t.Errorf("View() should show the failure:\n%s", m.View())
	}

	stopped := errors.NewProcessError(errors.ErrAbnormalExit, nil)
	m = update(t, m, busMsg{event: event.NewCommandFinishedEvent("s3", "run", -1, time.Second, true, stopped)})
	if !strings.Contains(m.View(), "run stopped") {
		t.Errorf("View() should show the stop:\n%s", m.View())
	}
}

func TestModel_SpinnerStopsWhenIdle(t *testing.T) {
	m := newTestModel(t, &fakeEngine{}, Options{})
	_, cmd := m.Update(m.spinner.Tick())
	if cmd != nil {
		t.Error("spinner should not keep ticking while idle")
	}
}

func TestModel_ToggleTargetSavesProperties(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, project.ManifestName), []byte("[package]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	props := project.DefaultProperties()
	m := newTestModel(t, &fakeEngine{}, Options{Root: root, Properties: props})

	m, _ = pressKey(t, m, "t")
	if m.status != "Target: release" {
		t.Errorf("status = %q", m.status)
	}

	loaded, err := project.LoadProperties(root)
	if err != nil {
		t.Fatalf("LoadProperties: %v", err)
	}
	if loaded.BuildTarget() != cargo.Release {
		t.Errorf("saved target = %v, want release", loaded.BuildTarget())
	}

	_, _ = pressKey(t, m, "t")
	if props.BuildTarget() != cargo.Debug {
		t.Errorf("target after second toggle = %v", props.BuildTarget())
	}
}

func TestModel_ClearAndCopy(t *testing.T) {
	var copied string
	m := newTestModel(t, &fakeEngine{}, Options{
		Clipboard: func(s string) error {
			copied = s
			return nil
		},
	})

	m, cmd := pressKey(t, m, "y")
	if cmd != nil || m.status != "Console is empty" {
		t.Errorf("copy of empty console: cmd=%v status=%q", cmd != nil, m.status)
	}

	m = update(t, m, consoleMsg("line one\nline two\n", event.ChannelStdout, event.StylePlain))
	m, cmd = pressKey(t, m, "y")
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	m = update(t, m, cmd())
	if copied != "line one\nline two\n" {
		t.Errorf("copied = %q", copied)
	}
	if m.status != "Copied 2 lines" {
		t.Errorf("status = %q", m.status)
	}

	m, _ = pressKey(t, m, "x")
	if !m.buf.empty() {
		t.Error("clear should empty the console")
	}
}

func TestModel_CopyFailure(t *testing.T) {
	m := newTestModel(t, &fakeEngine{}, Options{
		Clipboard: func(string) error { return errors.New("no clipboard") },
	})
	m = update(t, m, consoleMsg("x\n", event.ChannelStdout, event.StylePlain))
	_, cmd := pressKey(t, m, "y")
	if got := cmd(); got != statusMsg("Copy failed: no clipboard") {
		t.Errorf("cmd() = %v", got)
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			m := newTestModel(t, &fakeEngine{}, Options{})
			_, cmd := pressKey(t, m, k)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
		})
	}
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := NewModel(Options{Engine: &fakeEngine{}, Styles: testStyles()})
	if got := m.View(); got != "Starting..." {
		t.Errorf("View() = %q", got)
	}
}

func TestBuffer(t *testing.T) {
	t.Run("engine text starts a new line", func(t *testing.T) {
		b := newBuffer(0)
		b.append(event.ConsoleEvent{Text: "partial", Channel: event.ChannelStdout})
		b.append(event.ConsoleEvent{Text: "summary\n", Channel: event.ChannelEngine})
		if got := b.plain(); got != "partial\nsummary\n" {
			t.Errorf("plain() = %q", got)
		}
	})

	t.Run("trims oldest lines", func(t *testing.T) {
		b := newBuffer(3)
		for _, s := range []string{"1\n", "2\n", "3\n", "4\n", "5\n"} {
			b.append(event.ConsoleEvent{Text: s, Channel: event.ChannelStdout})
		}
		if got := b.plain(); got != "3\n4\n5\n" {
			t.Errorf("plain() = %q", got)
		}
	})

	t.Run("keeps a single oversized chunk", func(t *testing.T) {
		b := newBuffer(1)
		b.append(event.ConsoleEvent{Text: "a\nb\nc\n", Channel: event.ChannelStdout})
		if got := b.plain(); got != "a\nb\nc\n" {
			t.Errorf("plain() = %q", got)
		}
	})

	t.Run("empty text is ignored", func(t *testing.T) {
		b := newBuffer(0)
		b.append(event.ConsoleEvent{Text: "", Channel: event.ChannelStdout})
		if !b.empty() {
			t.Error("buffer should stay empty")
		}
	})
}
