package internal

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/cargodeck/internal/cargo"
	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/history"
	"github.com/Iron-Ham/cargodeck/internal/logging"
	"github.com/Iron-Ham/cargodeck/internal/process"
	"github.com/Iron-Ham/cargodeck/internal/testutil"
)

// syncBuffer is a bytes.Buffer safe for the pump goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// finishedRecorder collects CommandFinished events.
type finishedRecorder struct {
	mu     sync.Mutex
	events []event.CommandFinishedEvent
}

func (r *finishedRecorder) handle(e event.Event) {
	if ev, ok := e.(event.CommandFinishedEvent); ok {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	}
}

func (r *finishedRecorder) last(t *testing.T) event.CommandFinishedEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) != 1 {
		t.Fatalf("finished events = %d, want 1", len(r.events))
	}
	return r.events[0]
}

type stack struct {
	bus      *event.Bus
	manager  *cargo.Manager
	out      *syncBuffer
	finished *finishedRecorder
}

// newStack wires a manager to a real process transport and a console writer.
func newStack(t *testing.T, executable string) *stack {
	t.Helper()
	logger := logging.NopLogger()
	bus := event.NewBus(logger)
	out := &syncBuffer{}
	detach := console.NewWriter(out, console.WithColor(console.ColorNever)).Attach(bus)
	t.Cleanup(detach)

	rec := &finishedRecorder{}
	bus.Subscribe(event.TypeCommandFinished, rec.handle)

	transport := process.NewExecTransport(process.WithGracePeriod(500 * time.Millisecond))
	manager := cargo.NewManager(transport, bus,
		cargo.WithExecutable(executable),
		cargo.WithLogger(logger),
		cargo.WithProjectPath(testutil.SetupTestProject(t, "app")),
	)
	t.Cleanup(manager.Wait)
	return &stack{bus: bus, manager: manager, out: out, finished: rec}
}

func TestBuildStreamsBothChannels(t *testing.T) {
	script := testutil.FakeCargo(t, `echo "   Compiling app v0.1.0" 1>&2
echo "stdout line"
printf "no newline"
`)
	s := newStack(t, script)

	if err := s.manager.Build(cargo.Debug); err != nil {
		t.Fatalf("Build: %v", err)
	}
	s.manager.Wait()

	out := s.out.String()
	for _, want := range []string{"Cargo build started (debug)", "Compiling app v0.1.0", "stdout line", "no newline", "Cargo build finished in"} {
		if !strings.Contains(out, want) {
			t.Errorf("console missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "no newline") > strings.Index(out, "Cargo build finished") {
		t.Error("residual output should be flushed before the summary")
	}

	f := s.finished.last(t)
	if !f.Success() || f.ExitCode != 0 || f.Command != "build" {
		t.Errorf("unexpected finished event: %+v", f)
	}
	if s.manager.Running() {
		t.Error("manager should be idle after Wait")
	}
}

func TestBuildFailureReportsExitCode(t *testing.T) {
	script := testutil.FakeCargo(t, `echo "error[E0308]: mismatched types" 1>&2
exit 101
`)
	s := newStack(t, script)

	if err := s.manager.Build(cargo.Release); err != nil {
		t.Fatalf("Build: %v", err)
	}
	s.manager.Wait()

	if out := s.out.String(); !strings.Contains(out, "Cargo build exited with code 101") {
		t.Errorf("console missing failure summary:\n%s", out)
	}
	f := s.finished.last(t)
	if f.Success() || f.ExitCode != 101 {
		t.Errorf("unexpected finished event: %+v", f)
	}
	if !errors.Is(f.Err, errors.ErrNonZeroExit) {
		t.Errorf("Err = %v, want non-zero exit", f.Err)
	}
}

func TestSecondCommandRejectedWhileRunning(t *testing.T) {
	script := testutil.FakeCargo(t, "sleep 1\n")
	s := newStack(t, script)

	if err := s.manager.Build(cargo.Debug); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := s.manager.Clean(); !errors.Is(err, errors.ErrCommandRunning) {
		t.Errorf("Clean while building = %v, want ErrCommandRunning", err)
	}
	s.manager.Wait()

	f := s.finished.last(t)
	if f.Command != "build" {
		t.Errorf("finished command = %q, want build", f.Command)
	}
}

func TestStopTerminatesRunningProgram(t *testing.T) {
	script := testutil.FakeCargo(t, `echo "serving"
exec sleep 30
`)
	s := newStack(t, script)

	if err := s.manager.Run(cargo.Debug); err != nil {
		t.Fatalf("Run: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(s.out.String(), "serving") {
		if time.Now().After(deadline) {
			t.Fatal("program never produced output")
		}
		time.Sleep(10 * time.Millisecond)
	}

	start := time.Now()
	s.manager.Stop()
	s.manager.Wait()
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("stop took %v", elapsed)
	}

	if out := s.out.String(); !strings.Contains(out, "Cargo run stopped") {
		t.Errorf("console missing stop summary:\n%s", out)
	}
	f := s.finished.last(t)
	if !f.Stopped || f.Success() {
		t.Errorf("unexpected finished event: %+v", f)
	}
}

func TestLaunchFailureIsReportedOnTheBus(t *testing.T) {
	s := newStack(t, filepath.Join(t.TempDir(), "no-such-cargo"))

	if err := s.manager.Build(cargo.Debug); err != nil {
		t.Fatalf("launch failures are reported on the bus, got %v", err)
	}
	s.manager.Wait()

	if out := s.out.String(); !strings.Contains(out, "Cargo build failed to start") {
		t.Errorf("console missing launch failure:\n%s", out)
	}
	f := s.finished.last(t)
	if f.ExitCode != -1 || !errors.Is(f.Err, errors.ErrLaunchFailed) {
		t.Errorf("unexpected finished event: %+v", f)
	}
}

func TestHistoryRecordsFinishedCommands(t *testing.T) {
	script := testutil.FakeCargo(t, "exit 0\n")
	s := newStack(t, script)

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	rec := history.NewRecorder(store, logging.NopLogger())
	rec.Attach(s.bus)
	t.Cleanup(rec.Detach)

	if err := s.manager.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	s.manager.Wait()

	entries, err := store.Recent(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if e := entries[0]; e.Command != "clean" || !e.Success() || e.Project != s.manager.ProjectPath() {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestHistoryRecordsLaunchFailureProject(t *testing.T) {
	s := newStack(t, filepath.Join(t.TempDir(), "no-such-cargo"))

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	rec := history.NewRecorder(store, logging.NopLogger())
	rec.Attach(s.bus)
	t.Cleanup(rec.Detach)

	if err := s.manager.Build(cargo.Debug); err != nil {
		t.Fatalf("Build: %v", err)
	}
	s.manager.Wait()

	entries, err := store.Recent(context.Background(), 10, "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if e := entries[0]; e.Success() || e.ExitCode != -1 || e.Project != s.manager.ProjectPath() {
		t.Errorf("unexpected entry: %+v", e)
	}
}
