package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/reward/internal/ui/layout"
)

// Screen is one page of the TUI, managed by the router.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// BadgeProvider is an optional interface for screens that show a short
// status badge in the header.
type BadgeProvider interface {
	Badge() string
}

// BackgroundMsg marks a message that carries the result of asynchronous
// work. The app delivers it to every screen on the stack, not only the
// active one, so results are never lost while another screen is on top.
type BackgroundMsg interface {
	tea.Msg
	Background()
}
