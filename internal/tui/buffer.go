package tui

import (
	"strings"

	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/event"
)

// chunk is one piece of console text with its style.
type chunk struct {
	text  string
	style event.Style
}

// buffer is the console scrollback. It keeps styled chunks so the view can
// be re-rendered and the plain text copied.
type buffer struct {
	chunks []chunk
	lines  int // Newlines held in chunks
	max    int
}

func newBuffer(maxLines int) *buffer {
	return &buffer{max: maxLines}
}

// append adds console text. Engine messages always start on a fresh line.
func (b *buffer) append(ev event.ConsoleEvent) {
	if ev.Clear {
		b.reset()
	}
	if ev.Channel == event.ChannelEngine && !b.atLineStart() {
		b.add("\n", event.StylePlain)
	}
	b.add(ev.Text, ev.Style)
	b.trim()
}

func (b *buffer) add(text string, style event.Style) {
	if text == "" {
		return
	}
	b.chunks = append(b.chunks, chunk{text: text, style: style})
	b.lines += strings.Count(text, "\n")
}

// trim drops the oldest chunks once the scrollback exceeds max lines.
func (b *buffer) trim() {
	if b.max <= 0 {
		return
	}
	drop := 0
	for b.lines > b.max && drop < len(b.chunks)-1 {
		b.lines -= strings.Count(b.chunks[drop].text, "\n")
		drop++
	}
	if drop > 0 {
		b.chunks = append([]chunk(nil), b.chunks[drop:]...)
	}
}

func (b *buffer) reset() {
	b.chunks = nil
	b.lines = 0
}

func (b *buffer) empty() bool {
	return len(b.chunks) == 0
}

func (b *buffer) atLineStart() bool {
	if len(b.chunks) == 0 {
		return true
	}
	return strings.HasSuffix(b.chunks[len(b.chunks)-1].text, "\n")
}

// plain returns the scrollback without styling.
func (b *buffer) plain() string {
	var sb strings.Builder
	for _, c := range b.chunks {
		sb.WriteString(c.text)
	}
	return sb.String()
}

// render returns the styled scrollback.
func (b *buffer) render(styles console.Styles) string {
	var sb strings.Builder
	for _, c := range b.chunks {
		sb.WriteString(styles.Render(c.style, c.text))
	}
	return sb.String()
}
