package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/reward/internal/router"
	"github.com/abhisek/reward/internal/screen"
	wizscreen "github.com/abhisek/reward/internal/screens/wizard"
	"github.com/abhisek/reward/internal/store"
	"github.com/abhisek/reward/internal/ui/layout"
	"github.com/abhisek/reward/internal/wizard"
)

// Options holds dependencies for the TUI.
type Options struct {
	// Flow is the wizard state machine driven by the TUI. Required.
	Flow *wizard.Flow

	// Runs is the run journal. Nil disables the history screen.
	Runs store.RunEventRepo
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the wizard as the base screen.
func newAppModel(ctx context.Context, opts Options) AppModel {
	return AppModel{
		router: router.New(wizscreen.New(ctx, opts.Flow, opts.Runs)),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.BackgroundMsg:
		return m, m.router.Broadcast(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render composes header, active screen and footer for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	badge := ""
	if p, ok := m.router.Active().(screen.BadgeProvider); ok {
		badge = p.Badge()
	}
	header := layout.RenderHeader(m.router.Title(), badge, m.width)

	footerHints := m.router.KeyHints()
	if footerHints == nil {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits. Playback
// processes started from the TUI are stopped when it returns.
func Run(opts Options) error {
	if opts.Flow == nil {
		return fmt.Errorf("app: flow is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer opts.Flow.CloseReveal()

	p := tea.NewProgram(newAppModel(ctx, opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
