package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cargodeck/internal/cargo"
	"github.com/Iron-Ham/cargodeck/internal/project"
)

var targetCmd = &cobra.Command{
	Use:   "target [debug|release]",
	Short: "Show or set the project's default build target",
	Long: `Show or set the build target used by build, run and watch when neither
--release nor --debug is given. The setting is saved in the project's
.cargodeck.yaml.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"debug", "release"},
	RunE:      runTarget,
}

var argsCmd = &cobra.Command{
	Use:   "args [-- ARGS...]",
	Short: "Show or set the project's default run arguments",
	Long: `Show or set the program arguments used by 'cargodeck run' when none are
given on the command line.

Examples:
  cargodeck args -- --port 8080 --verbose
  cargodeck args --clear`,
	RunE: runArgs,
}

func init() {
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(argsCmd)
	argsCmd.Flags().Bool("clear", false, "remove the saved arguments")
}

// projectProperties locates the project and loads its properties without
// starting the engine.
func projectProperties(cmd *cobra.Command) (string, *project.Properties, error) {
	start, _ := cmd.Flags().GetString("project")
	if start == "" {
		start = "."
	}
	root, err := project.FindRoot(start)
	if err != nil {
		return "", nil, err
	}
	props, err := project.LoadProperties(root)
	if err != nil {
		return "", nil, err
	}
	return root, props, nil
}

func runTarget(cmd *cobra.Command, args []string) error {
	root, props, err := projectProperties(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), props.BuildTarget())
		return nil
	}

	target, err := cargo.ParseBuildTarget(args[0])
	if err != nil {
		return err
	}
	props.SetBuildTarget(target)
	if err := props.Save(root); err != nil {
		return fmt.Errorf("failed to save project properties: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Build target: %s\n", target)
	return nil
}

func runArgs(cmd *cobra.Command, args []string) error {
	root, props, err := projectProperties(cmd)
	if err != nil {
		return err
	}

	clearArgs, _ := cmd.Flags().GetBool("clear")
	switch {
	case clearArgs:
		props.Arguments = nil
	case len(args) > 0:
		props.Arguments = args
	default:
		if line := props.ArgumentLine(); line != "" {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	}

	if err := props.Save(root); err != nil {
		return fmt.Errorf("failed to save project properties: %w", err)
	}
	if len(props.Arguments) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Run arguments cleared")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Run arguments: %s\n", props.ArgumentLine())
	}
	return nil
}
