package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/reward/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs from the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		session, _ := cmd.Flags().GetString("session")

		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer st.Close()

		repo := st.RunEventRepo()
		if session != "" {
			events, err := repo.QueryRunEvents(cmd.Context(), store.QueryOpts{SessionID: session})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			printEvents(cmd.OutOrStdout(), events)
			return nil
		}

		runs, err := repo.QueryRunSummaries(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}
		printRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().String("session", "", "Show every event of one session")
}

func printRuns(w io.Writer, runs []store.RunSummaryRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}

	fmt.Fprintf(w, "%-19s  %-15s  %-20s  %-5s  %-36s  %s\n",
		"Started", "Token", "Name", "Draws", "Session", "Outcome")
	fmt.Fprintln(w, strings.Repeat("─", 120))

	for _, r := range runs {
		fmt.Fprintf(w, "%-19s  %-15s  %-20s  %-5d  %-36s  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Token,
			clip(r.Identity, 20),
			r.Attempts,
			r.SessionID,
			outcomeColor(r).Sprint(r.Outcome()),
		)
	}
}

func printEvents(w io.Writer, events []store.RunEventRecord) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}

	fmt.Fprintf(w, "%-6s  %-23s  %-18s  %-7s  %-5s  %-9s  %-10s  %s\n",
		"Seq", "Timestamp", "Kind", "Step", "Draws", "Gate", "Reveal", "Detail")
	fmt.Fprintln(w, strings.Repeat("─", 110))

	for _, e := range events {
		fmt.Fprintf(w, "%-6d  %-23s  %-18s  %-7s  %-5d  %-9s  %-10s  %s\n",
			e.Sequence,
			e.Timestamp.Local().Format("2006-01-02 15:04:05.000"),
			e.Kind,
			e.Step,
			e.AttemptCount,
			e.Gate,
			e.Reveal,
			e.Detail,
		)
	}
}

func outcomeColor(r store.RunSummaryRecord) *color.Color {
	switch {
	case r.Playback == "playing":
		return color.New(color.FgGreen)
	case r.Playback == "blocked":
		return color.New(color.FgYellow)
	case r.Revealed:
		return color.New(color.FgHiMagenta)
	default:
		return color.New(color.FgHiBlack)
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
