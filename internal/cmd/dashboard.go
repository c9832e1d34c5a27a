package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/errors"
	"github.com/Iron-Ham/cargodeck/internal/tui"
)

var errNotTerminal = errors.New("the dashboard needs an interactive terminal")

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open a full-screen dashboard for the current project. Build, run, clean
and stop commands are one key away and their output scrolls in place.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runDashboard opens the dashboard. Outside a terminal the root command
// prints help instead.
func runDashboard(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		if !cmd.HasParent() {
			return cmd.Help()
		}
		return errNotTerminal
	}

	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := tui.New(rt.bus, tui.Options{
		Engine:     rt.manager,
		Root:       rt.root,
		Properties: rt.props,
		Styles:     console.StylesFor(os.Stdout, rt.color),
		MaxLines:   rt.cfg.Console.MaxLines,
		Logger:     rt.logger,
	})
	return app.Run()
}
