package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reward/internal/router"
	"github.com/abhisek/reward/internal/screen"
	"github.com/abhisek/reward/internal/store"
	"github.com/abhisek/reward/internal/ui/layout"
	"github.com/abhisek/reward/internal/ui/theme"
)

// historyLimit caps how many past runs are listed.
const historyLimit = 50

type historyLoadedMsg struct {
	Runs []store.RunSummaryRecord
	Err  error
}

// HistoryScreen lists past runs from the journal.
type HistoryScreen struct {
	runs     store.RunEventRepo
	records  []store.RunSummaryRecord
	events   map[string][]store.RunEventRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(runs store.RunEventRepo) *HistoryScreen {
	return &HistoryScreen{
		runs:     runs,
		events:   make(map[string][]store.RunEventRecord),
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		records, err := s.runs.QueryRunSummaries(context.Background(), store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{Runs: records, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.records = msg.Runs
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.records)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s, s.toggle(s.selected)
		}
	}
	return s, nil
}

// toggle expands or collapses a run, loading its events on first expand.
func (s *HistoryScreen) toggle(i int) tea.Cmd {
	if i < 0 || i >= len(s.records) {
		return nil
	}
	s.expanded[i] = !s.expanded[i]
	if !s.expanded[i] {
		return nil
	}
	id := s.records[i].SessionID
	if _, ok := s.events[id]; ok {
		return nil
	}
	events, err := s.runs.QueryRunEvents(context.Background(), store.QueryOpts{SessionID: id})
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.events[id] = events
	return nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.records) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No runs yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, r := range s.records {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %-15s  %-20s  %d draws  %s",
			prefix, r.StartedAt.Format("Jan 02 15:04"), r.Token, truncate(r.Identity, 20),
			r.Attempts, r.Outcome())

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, e := range s.events[r.SessionID] {
				detail := e.Kind
				if e.Detail != "" {
					detail += " (" + e.Detail + ")"
				}
				evLine := fmt.Sprintf("    %s  %-8s %s", e.Timestamp.Format("15:04:05.000"), e.Step, detail)
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render(evLine)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
