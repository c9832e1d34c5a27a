package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/cargodeck/internal/console"
	"github.com/Iron-Ham/cargodeck/internal/history"
	"github.com/Iron-Ham/cargodeck/internal/util"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently finished commands",
	Long: `List the most recent cargo commands run by cargodeck, newest first.

History is kept in history.db in the config directory unless
history.path says otherwise.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the command history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "number of entries to show")
	historyCmd.Flags().String("command", "", "only show one command kind (new, build, run, clean)")
}

func openHistoryStore(rt *runtime) (*history.Store, error) {
	if rt.history != nil {
		return rt.history, nil
	}
	return nil, fmt.Errorf("command history is unavailable (history.enabled=%v, path %s)",
		rt.cfg.History.Enabled, rt.cfg.History.ResolvePath())
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	store, err := openHistoryStore(rt)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	kind, _ := cmd.Flags().GetString("command")

	entries, err := store.Recent(cmd.Context(), limit, kind)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No commands recorded yet")
		return nil
	}

	styles := console.StylesFor(cmd.OutOrStdout(), rt.color)
	fmt.Fprintln(cmd.OutOrStdout(), historyTable(entries, styles))
	return nil
}

// historyTable lays out entries with the outcome column styled.
func historyTable(entries []history.Entry, styles console.Styles) *table.Table {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			e.Command,
			outcome(e),
			fmt.Sprintf("%.3fs", e.Elapsed.Seconds()),
			util.ShortenPath(e.Project, 40),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Muted).
		Headers("FINISHED", "COMMAND", "RESULT", "TIME", "PROJECT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col != 2 {
				return styles.Plain.Padding(0, 1)
			}
			if entries[row].Success() {
				return styles.Success.Padding(0, 1)
			}
			return styles.Error.Padding(0, 1)
		})
}

func outcome(e history.Entry) string {
	switch {
	case e.Success():
		return "ok"
	case e.Stopped:
		return "stopped"
	case e.ExitCode >= 0:
		return "exit " + strconv.Itoa(e.ExitCode)
	default:
		return "failed"
	}
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	store, err := openHistoryStore(rt)
	if err != nil {
		return err
	}
	n, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
	return nil
}
