package tui

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/cargodeck/internal/event"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	bus     *event.Bus
	engine  Engine
}

// New creates a dashboard fed by the events on bus.
func New(bus *event.Bus, opts Options) *App {
	return &App{
		model:  NewModel(opts),
		bus:    bus,
		engine: opts.Engine,
	}
}

// Run starts the dashboard and blocks until the user quits. A command still
// in flight is stopped, and waited for when the engine supports it.
func (a *App) Run() error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	// Forward engine events into the update loop
	subID := a.bus.SubscribeAll(func(e event.Event) {
		a.program.Send(busMsg{event: e})
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok {
			a.program.Send(tea.Quit())
		}
	}()

	_, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)
	a.bus.Unsubscribe(subID)

	if a.engine.Running() {
		a.engine.Stop()
	}
	if w, ok := a.engine.(interface{ Wait() }); ok {
		w.Wait()
	}
	return err
}
