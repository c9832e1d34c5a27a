package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/project"
)

// metadataTimeout bounds `cargo metadata`, which may need to fetch the index.
const metadataTimeout = 30 * time.Second

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the project's packages and targets",
	Long: `Describe the project using cargo metadata: its packages, their targets,
the target directory and the saved cargodeck properties.

Use --json for a machine readable summary.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().Bool("json", false, "print a JSON summary")
}

func runInfo(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), metadataTimeout)
	defer cancel()
	meta, err := project.ReadMetadata(ctx, rt.cfg.Cargo.Path, rt.root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	styled := rt.color == console.ColorAlways
	if f, ok := out.(*os.File); ok && rt.color == console.ColorAuto {
		styled = isTerminal(f)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		doc, err := meta.Summary(rt.props)
		if err != nil {
			return err
		}
		doc = pretty.Pretty(doc)
		if styled {
			doc = pretty.Color(doc, nil)
		}
		_, err = out.Write(doc)
		return err
	}

	report := meta.Markdown(rt.props)
	if styled {
		report = renderMarkdown(report)
	}
	_, err = fmt.Fprint(out, report)
	return err
}

// renderMarkdown renders report for the terminal, falling back to the
// markdown source.
func renderMarkdown(report string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return report
	}
	out, err := r.Render(report)
	if err != nil {
		return report
	}
	return out
}
