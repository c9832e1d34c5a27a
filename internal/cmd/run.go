package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [-- ARGS...]",
	Short: "Build and run the project's binary",
	Long: `Build and run the current project with cargo run.

Arguments after -- are passed to the program. Without any, the arguments
saved for the project (see 'cargodeck args') are used.

Examples:
  cargodeck run
  cargodeck run --release -- --port 8080`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addTargetFlags(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	target := buildTarget(cmd, rt.props)
	if len(args) == 0 {
		args = rt.props.Arguments
	}
	return rt.runForeground(cmd, func() error {
		return rt.manager.Run(target, args...)
	})
}
