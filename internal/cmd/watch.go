package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild whenever project sources change",
	Long: `Build the project, then rebuild each time a watched file changes.

A change while a command is still running stops it and starts over. The
watched files are set by watch.patterns and watch.ignore in the config.
Use --run to run the program instead of only building it.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addTargetFlags(watchCmd)
	watchCmd.Flags().Bool("run", false, "run the program after each change instead of building")
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	writer := rt.newConsoleWriter(cmd)
	detach := writer.Attach(rt.bus)
	defer detach()

	target := buildTarget(cmd, rt.props)
	runAfter, _ := cmd.Flags().GetBool("run")
	start := func() error { return rt.manager.Build(target) }
	if runAfter {
		start = func() error { return rt.manager.Run(target, rt.props.Arguments...) }
	}

	changes := make(chan []string, 1)
	w, err := watch.New(rt.root, watch.Options{
		Patterns: rt.cfg.Watch.Patterns,
		Ignore:   rt.cfg.Watch.Ignore,
		Debounce: rt.cfg.Watch.Debounce,
		Logger:   rt.logger,
	}, func(paths []string) {
		// Coalesce bursts that arrive while a restart is in progress
		select {
		case changes <- paths:
		default:
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to watch %s: %w", rt.root, err)
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	note := func(text string) {
		line := fmt.Sprintf("[%s] %s\n", time.Now().Format("15:04:05"), text)
		writer.Handle(event.NewConsoleEvent("", line, event.ChannelEngine, event.StyleInfo, 0))
	}

	// Build and run banners clear the screen, so notes follow the start
	if err := start(); err != nil {
		return err
	}
	note(fmt.Sprintf("Watching %s (press Ctrl-C to stop)", rt.root))

	for {
		select {
		case <-ctx.Done():
			rt.manager.Stop()
			rt.manager.Wait()
			return nil

		case paths := <-changes:
			if rt.manager.Running() {
				rt.manager.Stop()
			}
			rt.manager.Wait()
			if err := start(); err != nil {
				return err
			}
			note("Changed: " + describeChanges(paths))
		}
	}
}

// describeChanges summarizes a batch of changed paths for the console.
func describeChanges(paths []string) string {
	const shown = 3
	if len(paths) <= shown {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(paths[:shown], ", "), len(paths)-shown)
}
