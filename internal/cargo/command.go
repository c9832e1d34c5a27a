package cargo

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/cargodeck/internal/errors"
)

// CommandKind is the logical toolchain operation a Manager is running.
type CommandKind int

const (
	// None means no command is running.
	None CommandKind = iota
	// NewProject runs `cargo new`.
	NewProject
	// Build runs `cargo build`.
	Build
	// Run runs `cargo run`.
	Run
	// Clean runs `cargo clean`.
	Clean
)

// String returns the cargo subcommand name for the kind.
func (k CommandKind) String() string {
	switch k {
	case None:
		return "none"
	case NewProject:
		return "new"
	case Build:
		return "build"
	case Run:
		return "run"
	case Clean:
		return "clean"
	default:
		return "unknown"
	}
}

// BuildTarget selects the cargo profile.
type BuildTarget int

const (
	// Debug is the default dev profile.
	Debug BuildTarget = iota
	// Release adds --release.
	Release
)

// String returns "debug" or "release".
func (t BuildTarget) String() string {
	if t == Release {
		return "release"
	}
	return "debug"
}

// Toggle returns the other target.
func (t BuildTarget) Toggle() BuildTarget {
	if t == Release {
		return Debug
	}
	return Release
}

// ParseBuildTarget parses "debug" or "release", case-insensitively.
// An empty string parses as Debug.
func ParseBuildTarget(s string) (BuildTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug":
		return Debug, nil
	case "release":
		return Release, nil
	default:
		return Debug, fmt.Errorf("%w: unknown build target %q (valid: debug, release)", errors.ErrInvalidInput, s)
	}
}

// Template selects the kind of package `cargo new` creates.
type Template int

const (
	// Binary creates an application package.
	Binary Template = iota
	// Library creates a library package.
	Library
)

// Flag returns the cargo flag for the template.
func (t Template) Flag() string {
	if t == Library {
		return "--lib"
	}
	return "--bin"
}

// String returns "binary" or "library".
func (t Template) String() string {
	if t == Library {
		return "library"
	}
	return "binary"
}

// Request describes one command to run. A Request is a value; the Manager
// never modifies it after it has been issued.
type Request struct {
	Kind     CommandKind
	Target   BuildTarget // Build and Run only
	Template Template    // NewProject only
	Path     string      // Destination directory for NewProject
	Args     []string    // Extra program arguments for Run, passed after "--"
	Dir      string      // Working directory; ignored for NewProject
}

// Validate checks that the request can be turned into a command line.
func (r Request) Validate() error {
	switch r.Kind {
	case NewProject:
		if strings.TrimSpace(r.Path) == "" {
			return fmt.Errorf("%w: project path is required", errors.ErrInvalidInput)
		}
		if r.Template != Binary && r.Template != Library {
			return fmt.Errorf("%w: unknown template %d", errors.ErrInvalidInput, int(r.Template))
		}
	case Build, Run, Clean:
		if r.Dir == "" {
			return errors.ErrNoProject
		}
		if r.Target != Debug && r.Target != Release {
			return fmt.Errorf("%w: unknown build target %d", errors.ErrInvalidInput, int(r.Target))
		}
	default:
		return fmt.Errorf("%w: no command given", errors.ErrInvalidInput)
	}
	return nil
}

// CommandArgs returns the arguments passed to the cargo executable.
//
//	new {--bin|--lib} -- PATH
//	build [--release]
//	run [--release] [-- ARGS...]
//	clean
func (r Request) CommandArgs() []string {
	switch r.Kind {
	case NewProject:
		return []string{"new", r.Template.Flag(), "--", r.Path}
	case Build:
		args := []string{"build"}
		if r.Target == Release {
			args = append(args, "--release")
		}
		return args
	case Run:
		args := []string{"run"}
		if r.Target == Release {
			args = append(args, "--release")
		}
		if len(r.Args) > 0 {
			args = append(args, "--")
			args = append(args, r.Args...)
		}
		return args
	case Clean:
		return []string{"clean"}
	default:
		return nil
	}
}

// WorkDir returns the directory the process runs in. `cargo new` takes an
// explicit path, so it inherits the caller's directory.
func (r Request) WorkDir() string {
	if r.Kind == NewProject {
		return ""
	}
	return r.Dir
}
