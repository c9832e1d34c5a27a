// Package console renders command engine output to a plain terminal or any
// io.Writer.
package console

import (
	"io"
	"strings"
	"sync"

	"github.com/Iron-Ham/cargodeck/internal/event"
)

// clearSequence homes the cursor and erases the screen.
const clearSequence = "\x1b[H\x1b[2J"

// Writer is a console sink that writes styled ConsoleEvents to an io.Writer.
type Writer struct {
	mu          sync.Mutex
	out         io.Writer
	styles      Styles
	clearScreen bool
	lineStart   bool
}

// Option configures a Writer.
type Option func(*writerConfig)

type writerConfig struct {
	color       ColorMode
	clearScreen bool
}

// WithColor selects the color mode. The default is ColorAuto.
func WithColor(mode ColorMode) Option {
	return func(c *writerConfig) {
		c.color = mode
	}
}

// WithClearScreen makes Clear events erase the terminal. Without it a Clear
// only makes sure the next text starts on a fresh line.
func WithClearScreen(enabled bool) Option {
	return func(c *writerConfig) {
		c.clearScreen = enabled
	}
}

// NewWriter creates a Writer for out.
func NewWriter(out io.Writer, opts ...Option) *Writer {
	cfg := writerConfig{color: ColorAuto}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Writer{
		out:         out,
		styles:      StylesFor(out, cfg.color),
		clearScreen: cfg.clearScreen,
		lineStart:   true,
	}
}

// Attach subscribes the writer to console events on bus and returns a
// function that removes the subscription.
func (w *Writer) Attach(bus *event.Bus) func() {
	id := bus.Subscribe(event.TypeConsole, w.Handle)
	return func() { bus.Unsubscribe(id) }
}

// Handle writes e if it is a ConsoleEvent. Other events are ignored.
func (w *Writer) Handle(e event.Event) {
	ce, ok := e.(event.ConsoleEvent)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if ce.Clear {
		switch {
		case w.clearScreen:
			_, _ = io.WriteString(w.out, clearSequence)
		case !w.lineStart:
			_, _ = io.WriteString(w.out, "\n")
		}
		w.lineStart = true
	}
	if ce.Text == "" {
		return
	}

	// Engine messages always start on their own line.
	if ce.Channel == event.ChannelEngine && !w.lineStart {
		_, _ = io.WriteString(w.out, "\n")
	}
	_, _ = io.WriteString(w.out, w.styles.Render(ce.Style, ce.Text))
	w.lineStart = strings.HasSuffix(ce.Text, "\n")
}
