package watch

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// Default patterns for a cargo project.
var (
	DefaultPatterns = []string{"**/*.rs", "**/Cargo.toml", "**/Cargo.lock", "**/build.rs"}
	DefaultIgnore   = []string{"target/**", ".git/**", "**/.*.swp", "**/*~"}
)

// matcher decides which project-relative paths are interesting.
type matcher struct {
	include []glob.Glob
	ignore  []glob.Glob
}

func newMatcher(patterns, ignore []string) (*matcher, error) {
	m := &matcher{}
	var err error
	if m.include, err = compileAll(patterns); err != nil {
		return nil, err
	}
	if m.ignore, err = compileAll(ignore); err != nil {
		return nil, err
	}
	return m, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid watch pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// matchAny matches rel, and rel rooted at "/" so "**/x" also matches a
// top-level x.
func matchAny(globs []glob.Glob, rel string) bool {
	for _, g := range globs {
		if g.Match(rel) || g.Match("/"+rel) {
			return true
		}
	}
	return false
}

// ignored reports whether rel, a slash-separated relative path, is excluded.
// Directories also match "dir/**" style patterns.
func (m *matcher) ignored(rel string, isDir bool) bool {
	if matchAny(m.ignore, rel) {
		return true
	}
	return isDir && matchAny(m.ignore, rel+"/")
}

// wanted reports whether a change to the file rel should trigger a rebuild.
func (m *matcher) wanted(rel string) bool {
	return !m.ignored(rel, false) && matchAny(m.include, rel)
}

// relative converts an absolute event path into a slash path under root.
func relative(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
