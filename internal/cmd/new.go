package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cargodeck/internal/cargo"
	"github.com/Iron-Ham/cargodeck/internal/event"
)

var newCmd = &cobra.Command{
	Use:   "new PATH",
	Short: "Create a new cargo package",
	Long: `Create a new cargo package at PATH with cargo new.

A binary package is created unless --lib is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().Bool("lib", false, "create a library package")
}

func runNew(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	tmpl := cargo.Binary
	if lib, _ := cmd.Flags().GetBool("lib"); lib {
		tmpl = cargo.Library
	}

	subID := rt.bus.Subscribe(event.TypeProjectCreated, func(e event.Event) {
		if ev, ok := e.(event.ProjectCreatedEvent); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s package at %s\n", tmpl, ev.Path)
		}
	})
	defer rt.bus.Unsubscribe(subID)

	return rt.runForeground(cmd, func() error {
		return rt.manager.CreateProject(tmpl, path)
	})
}
