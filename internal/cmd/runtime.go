package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/cargodeck/internal/cargo"
	"github.com/Iron-Ham/cargodeck/internal/config"
	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/decode"
	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/history"
	"github.com/Iron-Ham/cargodeck/internal/logging"
	"github.com/Iron-Ham/cargodeck/internal/process"
	"github.com/Iron-Ham/cargodeck/internal/project"
)

// runtime is the wiring shared by every command: configuration, logging,
// the event bus and the command manager.
type runtime struct {
	cfg     *config.Config
	logger  *logging.Logger
	bus     *event.Bus
	manager *cargo.Manager
	color   console.ColorMode

	root  string // Project root, empty when none was found
	props *project.Properties

	history  *history.Store
	recorder *history.Recorder
}

// newRuntime loads configuration and builds the engine. With needProject the
// command fails unless a Cargo.toml is found from --project or the working
// directory upward.
func newRuntime(cmd *cobra.Command, needProject bool) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	color, err := console.ParseColorMode(cfg.Console.Color)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		bus:    event.NewBus(logger),
		color:  color,
	}

	if err := rt.findProject(cmd, needProject); err != nil {
		_ = logger.Close()
		return nil, err
	}

	decoder, err := newDecoder(cfg.Console.Encoding)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	transport := process.NewExecTransport(
		process.WithGracePeriod(cfg.Cargo.StopGracePeriod),
		process.WithTransportLogger(logger),
	)
	rt.manager = cargo.NewManager(transport, rt.bus,
		cargo.WithExecutable(cfg.Cargo.Path),
		cargo.WithEnv(cfg.Cargo.Env),
		cargo.WithDecoder(decoder),
		cargo.WithLogger(logger),
		cargo.WithProjectPath(rt.root),
	)

	if cfg.History.Enabled {
		rt.openHistory()
	}
	return rt, nil
}

// newLogger writes JSON logs to logging.dir. Without a directory, logs are
// discarded so they never interleave with cargo output.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	dir := cfg.Logging.ResolveDir()
	if dir == "" {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLogger(dir, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	return logger, nil
}

func newDecoder(encoding string) (*decode.Decoder, error) {
	if encoding == "" {
		return decode.ForLocale(), nil
	}
	dec, err := decode.New(encoding)
	if err != nil {
		return nil, fmt.Errorf("unknown console encoding %q: %w", encoding, err)
	}
	return dec, nil
}

func (rt *runtime) findProject(cmd *cobra.Command, needProject bool) error {
	start, _ := cmd.Flags().GetString("project")
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		start = wd
	}

	root, err := project.FindRoot(start)
	if err != nil {
		if needProject {
			return err
		}
		rt.props = project.DefaultProperties()
		return nil
	}

	props, err := project.LoadProperties(root)
	if err != nil {
		return err
	}
	rt.root = root
	rt.props = props
	rt.logger = rt.logger.With("project", filepath.Base(root))
	return nil
}

// openHistory starts recording finished commands. History is best effort: a
// database that cannot be opened only costs the record.
func (rt *runtime) openHistory() {
	store, err := history.Open(rt.cfg.History.ResolvePath())
	if err != nil {
		rt.logger.Warn("command history disabled", "error", err.Error())
		return
	}
	rt.history = store
	rt.recorder = history.NewRecorder(store, rt.logger)
	rt.recorder.Attach(rt.bus)
}

// Close waits for any running command and releases resources.
func (rt *runtime) Close() {
	rt.manager.Wait()
	if rt.recorder != nil {
		rt.recorder.Detach()
	}
	if rt.history != nil {
		_ = rt.history.Close()
	}
	_ = rt.logger.Close()
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
