// Package project locates cargo projects and manages their per-project
// settings and metadata.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/cargodeck/internal/cargo"
	"github.com/Iron-Ham/cargodeck/internal/errors"
)

// ManifestName is the cargo manifest file that marks a project root.
const ManifestName = "Cargo.toml"

// PropertiesFile is the per-project settings file, relative to the root.
const PropertiesFile = ".cargodeck.yaml"

// Properties are the settings stored alongside a project.
type Properties struct {
	// Target is "debug" or "release".
	Target string `yaml:"target"`
	// Arguments are passed to the program by `run`.
	Arguments []string `yaml:"arguments,omitempty"`
}

// DefaultProperties returns the settings of a project that has none saved.
func DefaultProperties() *Properties {
	return &Properties{Target: cargo.Debug.String()}
}

// FindRoot walks up from start until it finds a directory containing
// Cargo.toml.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving project path: %w", err)
	}

	for {
		if info, err := os.Stat(filepath.Join(dir, ManifestName)); err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s found in %s or any parent directory", errors.ErrNoProject, ManifestName, start)
		}
		dir = parent
	}
}

// LoadProperties reads the settings for the project at root. A missing file
// yields DefaultProperties.
func LoadProperties(root string) (*Properties, error) {
	data, err := os.ReadFile(filepath.Join(root, PropertiesFile))
	if os.IsNotExist(err) {
		return DefaultProperties(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading project properties: %w", err)
	}

	props := DefaultProperties()
	if err := yaml.Unmarshal(data, props); err != nil {
		return nil, fmt.Errorf("parsing project properties: %w", err)
	}
	if err := props.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project properties: %w", err)
	}
	return props, nil
}

// Save writes the settings for the project at root.
func (p *Properties) Save(root string) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling project properties: %w", err)
	}

	if err := os.WriteFile(filepath.Join(root, PropertiesFile), data, 0o644); err != nil {
		return fmt.Errorf("writing project properties: %w", err)
	}
	return nil
}

// Validate checks the stored target name.
func (p *Properties) Validate() error {
	_, err := cargo.ParseBuildTarget(p.Target)
	return err
}

// BuildTarget returns the parsed target, falling back to Debug.
func (p *Properties) BuildTarget() cargo.BuildTarget {
	t, err := cargo.ParseBuildTarget(p.Target)
	if err != nil {
		return cargo.Debug
	}
	return t
}

// SetBuildTarget stores t.
func (p *Properties) SetBuildTarget(t cargo.BuildTarget) {
	p.Target = t.String()
}

// ArgumentLine renders the run arguments for display.
func (p *Properties) ArgumentLine() string {
	return strings.Join(p.Arguments, " ")
}
