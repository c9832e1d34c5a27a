package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/cargodeck/internal/event"
)

func consoleEvent(text string, ch event.Channel, style event.Style) event.ConsoleEvent {
	return event.NewConsoleEvent("s1", text, ch, style, 1)
}

func TestWriter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithColor(ColorNever))

	w.Handle(consoleEvent("   Compiling app\n", event.ChannelStderr, event.StyleMuted))
	w.Handle(consoleEvent("hello\n", event.ChannelStdout, event.StylePlain))
	w.Handle(consoleEvent("[10:00:00] Cargo build finished in 0.5s\n", event.ChannelEngine, event.StyleSuccess))

	want := "   Compiling app\nhello\n[10:00:00] Cargo build finished in 0.5s\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriter_EngineStartsOnNewLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithColor(ColorNever))

	w.Handle(consoleEvent("no newline", event.ChannelStdout, event.StylePlain))
	w.Handle(consoleEvent("summary\n", event.ChannelEngine, event.StyleError))

	if got := buf.String(); got != "no newline\nsummary\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriter_Clear(t *testing.T) {
	tests := []struct {
		name        string
		clearScreen bool
		want        string
	}{
		{"separates with newline", false, "partial\nbanner\n"},
		{"erases screen", true, "partial" + clearSequence + "banner\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, WithColor(ColorNever), WithClearScreen(tt.clearScreen))

			w.Handle(consoleEvent("partial", event.ChannelStdout, event.StylePlain))
			banner := consoleEvent("banner\n", event.ChannelEngine, event.StyleInfo)
			banner.Clear = true
			w.Handle(banner)

			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriter_ColorAlways(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithColor(ColorAlways))

	w.Handle(consoleEvent("line one\nline two\n", event.ChannelEngine, event.StyleError))

	got := buf.String()
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", got)
	}
	if strings.Count(got, "\n") != 2 || !strings.HasSuffix(got, "\n") {
		t.Errorf("newlines not preserved: %q", got)
	}
	if strings.Contains(got, "line one ") {
		t.Errorf("lines should not be padded: %q", got)
	}
}

func TestWriter_AttachIgnoresOtherEvents(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithColor(ColorNever))
	bus := event.NewBus(nil)

	detach := w.Attach(bus)
	bus.Publish(event.NewProjectCreatedEvent("/tmp/foo"))
	bus.Publish(consoleEvent("hi\n", event.ChannelStdout, event.StylePlain))
	detach()
	bus.Publish(consoleEvent("after detach\n", event.ChannelStdout, event.StylePlain))

	if got := buf.String(); got != "hi\n" {
		t.Errorf("output = %q, want %q", got, "hi\n")
	}
	if bus.SubscriptionCount() != 0 {
		t.Errorf("expected no subscriptions after detach, got %d", bus.SubscriptionCount())
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"ALWAYS", ColorAlways, false},
		{"never", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColorMode(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColorMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStyles_For(t *testing.T) {
	s := NewStyles(lipgloss.NewRenderer(&bytes.Buffer{}))
	if s.For(event.Style(99)).GetBold() {
		t.Error("unknown styles should render plain")
	}
	if !s.For(event.StyleError).GetBold() || !s.For(event.StyleSuccess).GetBold() {
		t.Error("summary styles should be bold")
	}
}
