package cargo

import (
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/process"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestStartBanner(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		want   string
		wantOK bool
	}{
		{"build", Request{Kind: Build, Target: Release}, "[09:26:53] Cargo build started (release)\n", true},
		{"run", Request{Kind: Run}, "[09:26:53] Cargo run started (debug)\n", true},
		{"clean has none", Request{Kind: Clean}, "", false},
		{"new has none", Request{Kind: NewProject}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := startBanner(tt.req, testTime)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if msg.text != tt.want {
				t.Errorf("text = %q, want %q", msg.text, tt.want)
			}
			if msg.style != event.StyleInfo || !msg.clear {
				t.Errorf("banner should be info styled and clear the console, got %+v", msg)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	ok := process.ExitStatus{Code: 0, Normal: true}
	failed := process.ExitStatus{Code: 101, Normal: true}
	killed := process.ExitStatus{Code: -1, Signal: "killed"}
	crashed := process.ExitStatus{Code: -1}

	tests := []struct {
		name      string
		kind      CommandKind
		status    process.ExitStatus
		stopped   bool
		want      string
		wantStyle event.Style
		wantOK    bool
	}{
		{"build success", Build, ok, false, "[09:26:53] Cargo build finished in 2.250s\n", event.StyleSuccess, true},
		{"run success", Run, ok, false, "[09:26:53] Cargo run finished in 2.250s\n", event.StyleSuccess, true},
		{"build failure", Build, failed, false, "[09:26:53] Cargo build exited with code 101\n", event.StyleError, true},
		{"run killed", Run, killed, false, "[09:26:53] Cargo run was terminated (killed)\n", event.StyleError, true},
		{"run crashed", Run, crashed, false, "[09:26:53] Cargo run was terminated\n", event.StyleError, true},
		{"run stopped", Run, killed, true, "[09:26:53] Cargo run stopped\n", event.StyleError, true},
		{"stop after normal exit reports the exit", Build, ok, true, "[09:26:53] Cargo build finished in 2.250s\n", event.StyleSuccess, true},
		{"clean success is silent", Clean, ok, false, "", event.StylePlain, false},
		{"clean failure", Clean, process.ExitStatus{Code: 1, Normal: true}, false, "[09:26:53] Cargo clean exited with code 1\n", event.StyleError, true},
		{"new success relays only", NewProject, ok, false, "", event.StylePlain, false},
		{"new failure relays only", NewProject, failed, false, "", event.StylePlain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, gotOK := summary(tt.kind, tt.status, 2250*time.Millisecond, tt.stopped, testTime)
			if gotOK != tt.wantOK {
				t.Fatalf("ok = %v, want %v", gotOK, tt.wantOK)
			}
			if !gotOK {
				return
			}
			if msg.text != tt.want {
				t.Errorf("text = %q, want %q", msg.text, tt.want)
			}
			if msg.style != tt.wantStyle {
				t.Errorf("style = %v, want %v", msg.style, tt.wantStyle)
			}
			if msg.clear {
				t.Error("summary must not clear the console")
			}
		})
	}
}

func TestLaunchFailure(t *testing.T) {
	cause := errors.New(`exec: "cargo": executable file not found in $PATH`)

	tests := []struct {
		name string
		err  error
	}{
		{"process error", errors.NewProcessError(errors.ErrLaunchFailed, cause)},
		{"bare error", cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := launchFailure(Build, testTime, tt.err)
			want := "[09:26:53] Cargo build failed to start: " + cause.Error() + "\n"
			if msg.text != want {
				t.Errorf("text = %q, want %q", msg.text, want)
			}
			if msg.style != event.StyleError {
				t.Errorf("style = %v, want error", msg.style)
			}
			if strings.Contains(msg.text, "process error") {
				t.Error("console message should show the underlying cause")
			}
		})
	}
}
