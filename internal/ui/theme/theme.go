package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette: zinc surfaces with a purple accent
var (
	Primary   = lipgloss.Color("#A855F7") // Purple
	Secondary = lipgloss.Color("#6366F1") // Indigo
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#10B981") // Emerald
	Error     = lipgloss.Color("#F87171") // Red
	Text      = lipgloss.Color("#FAFAFA") // Zinc 50
	TextDim   = lipgloss.Color("#A1A1AA") // Zinc 400
	BgDark    = lipgloss.Color("#09090B") // Zinc 950
	BgCard    = lipgloss.Color("#18181B") // Zinc 900
	Border    = lipgloss.Color("#3F3F46") // Zinc 700
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	Modal = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.ThickBorder()).
		BorderForeground(Primary).
		Padding(1, 3)
)

// States
var (
	StepActive = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	StepDone = lipgloss.NewStyle().
			Foreground(Success)

	StepPending = lipgloss.NewStyle().
			Foreground(TextDim)

	Notice = lipgloss.NewStyle().
		Foreground(Accent)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	Badge = lipgloss.NewStyle().
		Foreground(Text).
		Background(Border).
		Padding(0, 1)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Primary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)

	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)

	ButtonDisabled = lipgloss.NewStyle().
			Background(Border).
			Foreground(TextDim).
			Padding(0, 2)
)
