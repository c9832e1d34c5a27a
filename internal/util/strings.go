// Package util provides string helpers for terminal output.
package util

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ellipsis marks text that was cut short.
const ellipsis = "…"

// TruncateANSI cuts s to maxWidth visual columns, ending it with an
// ellipsis when anything was removed. Escape sequences and wide characters
// are measured correctly.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, ellipsis)
}

// ShortenPath abbreviates the home directory to ~ and, when the result is
// still wider than maxWidth, keeps the trailing path elements.
func ShortenPath(path string, maxWidth int) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if path == home {
			path = "~"
		} else if rest, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
			path = filepath.Join("~", rest)
		}
	}
	if maxWidth <= 0 || lipgloss.Width(path) <= maxWidth {
		return path
	}

	parts := strings.Split(path, string(filepath.Separator))
	tail := parts[len(parts)-1]
	for i := len(parts) - 2; i >= 0; i-- {
		next := parts[i] + string(filepath.Separator) + tail
		if lipgloss.Width(ellipsis+string(filepath.Separator)+next) > maxWidth {
			break
		}
		tail = next
	}
	short := ellipsis + string(filepath.Separator) + tail
	if lipgloss.Width(short) > maxWidth {
		return ansi.TruncateLeft(path, lipgloss.Width(path)-maxWidth+1, ellipsis)
	}
	return short
}
