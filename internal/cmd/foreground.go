package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/event"
)

// ExitError reports a cargo command that did not succeed. The console has
// already shown why, so callers only need the exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCode maps a finished command to the exit status of cargodeck.
func exitCode(ev event.CommandFinishedEvent) int {
	switch {
	case ev.Stopped:
		return 130
	case ev.ExitCode > 0:
		return ev.ExitCode
	default:
		return 1
	}
}

// newConsoleWriter renders engine output to the command's stdout. The
// screen is only cleared when stdout is a terminal.
func (rt *runtime) newConsoleWriter(cmd *cobra.Command) *console.Writer {
	out := cmd.OutOrStdout()
	clearScreen := false
	if f, ok := out.(*os.File); ok {
		clearScreen = isTerminal(f)
	}
	return console.NewWriter(out,
		console.WithColor(rt.color),
		console.WithClearScreen(clearScreen),
	)
}

// runForeground starts one command with start, streams its output and waits
// for it to finish. An interrupt stops the command instead of killing
// cargodeck.
func (rt *runtime) runForeground(cmd *cobra.Command, start func() error) error {
	detach := rt.newConsoleWriter(cmd).Attach(rt.bus)
	defer detach()

	var (
		mu       sync.Mutex
		finished *event.CommandFinishedEvent
	)
	subID := rt.bus.Subscribe(event.TypeCommandFinished, func(e event.Event) {
		if ev, ok := e.(event.CommandFinishedEvent); ok {
			mu.Lock()
			finished = &ev
			mu.Unlock()
		}
	})
	defer rt.bus.Unsubscribe(subID)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := start(); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		rt.manager.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		rt.manager.Stop()
		<-done
	}

	mu.Lock()
	defer mu.Unlock()
	if finished == nil || finished.Success() {
		return nil
	}
	return &ExitError{Code: exitCode(*finished), Err: finished.Err}
}
