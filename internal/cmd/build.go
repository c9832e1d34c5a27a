package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cargodeck/internal/cargo"
	"github.com/Iron-Ham/cargodeck/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the project",
	Long: `Compile the current project with cargo build.

The build target defaults to the one saved for the project (see
'cargodeck target'). Use --release or --debug to override it once.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the project's build artifacts",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cleanCmd)
	addTargetFlags(buildCmd)
}

// addTargetFlags registers --release and --debug on cmd.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("release", "r", false, "build with the release profile")
	cmd.Flags().Bool("debug", false, "build with the debug profile")
	cmd.MarkFlagsMutuallyExclusive("release", "debug")
}

// buildTarget resolves the target from the flags, falling back to the saved
// project properties.
func buildTarget(cmd *cobra.Command, props *project.Properties) cargo.BuildTarget {
	if release, _ := cmd.Flags().GetBool("release"); release {
		return cargo.Release
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return cargo.Debug
	}
	return props.BuildTarget()
}

func runBuild(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	target := buildTarget(cmd, rt.props)
	return rt.runForeground(cmd, func() error {
		return rt.manager.Build(target)
	})
}

func runClean(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.runForeground(cmd, rt.manager.Clean)
}
