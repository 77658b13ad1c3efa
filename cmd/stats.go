package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/reward/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics over the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer st.Close()

		runs, err := st.RunEventRepo().QueryRunSummaries(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}
		printStats(cmd.OutOrStdout(), summarize(runs))
		return nil
	},
}

// runStats aggregates run summaries.
type runStats struct {
	Runs        int
	Revealed    int
	Playing     int
	Blocked     int
	ByStep      map[string]int
	TotalDraws  int
	TotalEvents int
}

// AvgDraws is the mean number of counted draws per run.
func (s runStats) AvgDraws() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.TotalDraws) / float64(s.Runs)
}

func summarize(runs []store.RunSummaryRecord) runStats {
	s := runStats{ByStep: make(map[string]int)}
	for _, r := range runs {
		s.Runs++
		s.TotalDraws += r.Attempts
		s.TotalEvents += r.Events
		if r.FurthestStep != "" {
			s.ByStep[r.FurthestStep]++
		}
		if r.Revealed {
			s.Revealed++
		}
		switch r.Playback {
		case "playing":
			s.Playing++
		case "blocked":
			s.Blocked++
		}
	}
	return s
}

func printStats(w io.Writer, s runStats) {
	if s.Runs == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return
	}

	bold := color.New(color.Bold)
	row := func(label string, value any) {
		fmt.Fprintf(w, "  %-22s %v\n", label, value)
	}

	bold.Fprintln(w, "Runs")
	row("total", s.Runs)
	row("stopped at details", s.ByStep["details"])
	row("stopped at draw", s.ByStep["draw"])
	row("reached result", s.ByStep["result"])
	row("average counted draws", fmt.Sprintf("%.2f", s.AvgDraws()))
	row("journal events", s.TotalEvents)

	fmt.Fprintln(w)
	bold.Fprintln(w, "Reveals")
	row("confirmed", s.Revealed)
	row("playing", color.New(color.FgGreen).Sprint(s.Playing))
	row("blocked", color.New(color.FgYellow).Sprint(s.Blocked))
}
