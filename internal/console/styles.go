package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Iron-Ham/cargodeck/internal/event"
)

var (
	// Colors - all meet WCAG AA contrast (4.5:1) on dark backgrounds
	PrimaryColor = lipgloss.Color("#A78BFA") // Purple
	SuccessColor = lipgloss.Color("#10B981") // Green
	ErrorColor   = lipgloss.Color("#F87171") // Red
	MutedColor   = lipgloss.Color("#9CA3AF") // Gray
	InfoColor    = lipgloss.Color("#60A5FA") // Blue
)

// ColorMode controls whether console output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Color when the output is a terminal
	ColorAlways ColorMode = "always" // Force color
	ColorNever  ColorMode = "never"  // Plain text only
)

// ValidColorModes returns the accepted color mode names.
func ValidColorModes() []string {
	return []string{string(ColorAuto), string(ColorAlways), string(ColorNever)}
}

// ParseColorMode parses a color mode; empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q, must be one of: %s", s, strings.Join(ValidColorModes(), ", "))
	}
}

// apply configures r for mode. Auto keeps the renderer's own detection.
func (m ColorMode) apply(r *lipgloss.Renderer) {
	switch m {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
}

// Styles maps console styling hints to lipgloss styles.
type Styles struct {
	Plain   lipgloss.Style
	Muted   lipgloss.Style
	Info    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles returns the console styles bound to r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Plain:   r.NewStyle(),
		Muted:   r.NewStyle().Foreground(MutedColor),
		Info:    r.NewStyle().Foreground(InfoColor).Bold(true),
		Success: r.NewStyle().Foreground(SuccessColor).Bold(true),
		Error:   r.NewStyle().Foreground(ErrorColor).Bold(true),
	}
}

// StylesFor returns styles for a terminal writing to out, honoring mode.
func StylesFor(out io.Writer, mode ColorMode) Styles {
	r := lipgloss.NewRenderer(out)
	mode.apply(r)
	return NewStyles(r)
}

// For returns the style for a hint. Unknown hints render plain.
func (s Styles) For(style event.Style) lipgloss.Style {
	switch style {
	case event.StyleMuted:
		return s.Muted
	case event.StyleInfo:
		return s.Info
	case event.StyleSuccess:
		return s.Success
	case event.StyleError:
		return s.Error
	default:
		return s.Plain
	}
}

// Render styles text line by line so newlines survive and lines are not
// padded to a common width.
func (s Styles) Render(style event.Style, text string) string {
	if style == event.StylePlain {
		return text
	}
	st := s.For(style)

	var sb strings.Builder
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if line != "" {
			sb.WriteString(st.Render(line))
		}
	}
	return sb.String()
}
