package project

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Iron-Ham/cargodeck/internal/errors"
)

// Target is one compilation target of a package.
type Target struct {
	Name    string
	Kinds   []string // e.g. "bin", "lib", "test"
	SrcPath string
}

// IsBinary reports whether the target produces an executable.
func (t Target) IsBinary() bool {
	return slices.Contains(t.Kinds, "bin")
}

// Package is a workspace member as reported by `cargo metadata`.
type Package struct {
	Name         string
	Version      string
	ManifestPath string
	Targets      []Target
}

// Metadata is the subset of `cargo metadata --format-version 1` output the
// tool uses.
type Metadata struct {
	Packages        []Package
	WorkspaceRoot   string
	TargetDirectory string
}

// ParseMetadata parses `cargo metadata --format-version 1` JSON.
func ParseMetadata(data []byte) (*Metadata, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: cargo metadata output is not valid JSON", errors.ErrInvalidInput)
	}

	root := gjson.ParseBytes(data)
	if v := root.Get("version"); v.Exists() && v.Int() != 1 {
		return nil, fmt.Errorf("%w: unsupported cargo metadata version %d", errors.ErrInvalidInput, v.Int())
	}

	md := &Metadata{
		WorkspaceRoot:   root.Get("workspace_root").String(),
		TargetDirectory: root.Get("target_directory").String(),
	}

	root.Get("packages").ForEach(func(_, pkg gjson.Result) bool {
		p := Package{
			Name:         pkg.Get("name").String(),
			Version:      pkg.Get("version").String(),
			ManifestPath: pkg.Get("manifest_path").String(),
		}
		pkg.Get("targets").ForEach(func(_, tgt gjson.Result) bool {
			t := Target{
				Name:    tgt.Get("name").String(),
				SrcPath: tgt.Get("src_path").String(),
			}
			for _, k := range tgt.Get("kind").Array() {
				t.Kinds = append(t.Kinds, k.String())
			}
			p.Targets = append(p.Targets, t)
			return true
		})
		md.Packages = append(md.Packages, p)
		return true
	})

	return md, nil
}

// Binaries returns the names of all executable targets.
func (m *Metadata) Binaries() []string {
	var out []string
	for _, p := range m.Packages {
		for _, t := range p.Targets {
			if t.IsBinary() {
				out = append(out, t.Name)
			}
		}
	}
	return out
}

// ArtifactDir returns the output directory for a profile ("debug" or
// "release").
func (m *Metadata) ArtifactDir(profile string) string {
	if m.TargetDirectory == "" {
		return ""
	}
	return filepath.Join(m.TargetDirectory, profile)
}

// Summary renders the metadata and properties as a compact JSON document
// for machine consumption.
func (m *Metadata) Summary(props *Properties) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	set := func(path string, value any) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, value)
		}
	}

	set("workspace_root", m.WorkspaceRoot)
	set("target_directory", m.TargetDirectory)
	set("binaries", append([]string{}, m.Binaries()...))
	if m.TargetDirectory != "" {
		set("artifacts.debug", m.ArtifactDir("debug"))
		set("artifacts.release", m.ArtifactDir("release"))
	}
	if props != nil {
		set("properties.target", props.Target)
		set("properties.arguments", append([]string{}, props.Arguments...))
	}
	set("packages", []any{})
	for _, p := range m.Packages {
		targets := make([]map[string]any, 0, len(p.Targets))
		for _, t := range p.Targets {
			targets = append(targets, map[string]any{
				"name": t.Name,
				"kind": append([]string{}, t.Kinds...),
			})
		}
		set("packages.-1", map[string]any{
			"name":    p.Name,
			"version": p.Version,
			"targets": targets,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("rendering metadata summary: %w", err)
	}
	return doc, nil
}

// ReadMetadata runs `cargo metadata` for the project at root.
func ReadMetadata(ctx context.Context, executable, root string) (*Metadata, error) {
	if executable == "" {
		executable = "cargo"
	}

	cmd := exec.CommandContext(ctx, executable,
		"metadata", "--format-version", "1", "--no-deps",
		"--manifest-path", filepath.Join(root, ManifestName),
	)
	cmd.Dir = root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("cargo metadata failed: %s", msg)
	}
	return ParseMetadata(out)
}

// Markdown renders the metadata and properties as a markdown report.
func (m *Metadata) Markdown(props *Properties) string {
	var sb strings.Builder
	for _, p := range m.Packages {
		fmt.Fprintf(&sb, "# %s %s\n\n", p.Name, p.Version)
		if len(p.Targets) > 0 {
			sb.WriteString("| Target | Kind |\n|---|---|\n")
			for _, t := range p.Targets {
				fmt.Fprintf(&sb, "| %s | %s |\n", t.Name, strings.Join(t.Kinds, ", "))
			}
			sb.WriteString("\n")
		}
	}
	if m.WorkspaceRoot != "" {
		fmt.Fprintf(&sb, "- **Workspace:** `%s`\n", m.WorkspaceRoot)
	}
	if m.TargetDirectory != "" {
		fmt.Fprintf(&sb, "- **Target directory:** `%s`\n", m.TargetDirectory)
	}
	if bins := m.Binaries(); len(bins) > 0 {
		fmt.Fprintf(&sb, "- **Binaries:** %s\n", strings.Join(bins, ", "))
	}
	profile := "debug"
	if props != nil {
		profile = props.BuildTarget().String()
	}
	if dir := m.ArtifactDir(profile); dir != "" {
		fmt.Fprintf(&sb, "- **Artifacts (%s):** `%s`\n", profile, dir)
	}
	if props != nil {
		fmt.Fprintf(&sb, "- **Build target:** %s\n", props.BuildTarget())
		if len(props.Arguments) > 0 {
			fmt.Fprintf(&sb, "- **Run arguments:** `%s`\n", props.ArgumentLine())
		}
	}
	return sb.String()
}
