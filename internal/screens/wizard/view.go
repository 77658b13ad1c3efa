package wizard

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/reward/internal/ui/components"
	"github.com/abhisek/reward/internal/ui/layout"
	"github.com/abhisek/reward/internal/ui/theme"
	wiz "github.com/abhisek/reward/internal/wizard"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const cardWidth = 64

func (s *WizardScreen) View(width, height int) string {
	snap := s.flow.Snapshot()

	var body string
	switch {
	case snap.Reveal.Visible():
		body = s.renderReveal(snap)
	case snap.Gate == wiz.GatePending:
		body = renderGate()
	default:
		switch snap.Step {
		case wiz.StepDetails:
			body = s.renderDetails(snap)
		case wiz.StepDraw:
			body = s.renderDraw(snap)
		default:
			body = renderResult(snap)
		}
	}

	var b strings.Builder
	b.WriteString(renderSteps(snap.Step))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("", snap.Progress(), false, cardWidth).View())
	b.WriteString("\n\n")
	b.WriteString(body)
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	return layout.RenderCentered(b.String(), width, height)
}

// renderSteps renders the step indicator.
func renderSteps(current wiz.Step) string {
	parts := make([]string, 0, len(wiz.Steps()))
	for _, st := range wiz.Steps() {
		label := fmt.Sprintf("%d %s", st.Index()+1, st.Label())
		switch {
		case st < current:
			parts = append(parts, theme.StepDone.Render("✓ "+label))
		case st == current:
			parts = append(parts, theme.StepActive.Render("● "+label))
		default:
			parts = append(parts, theme.StepPending.Render("○ "+label))
		}
	}
	return strings.Join(parts, theme.StepPending.Render("  ──  "))
}

func (s *WizardScreen) renderDetails(snap wiz.Snapshot) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Claim Your Reward"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Enter your full name to check for eligibility. No OTP required."))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("Full Name"))
	b.WriteString("\n")
	b.WriteString(s.input.View())
	b.WriteString("\n\n")
	b.WriteString(footerRow(tryBadge(snap), components.NewButton("Continue", true, nil).View()))
	return theme.Card.Width(cardWidth).Render(b.String())
}

func (s *WizardScreen) renderDraw(snap wiz.Snapshot) string {
	var b strings.Builder
	b.WriteString(headingRow("Verify & Run Draw", "Applicant: "+snap.Session.IdentityLabel, snap))
	b.WriteString("\n\n")
	b.WriteString(renderEligibility(snap))
	b.WriteString("\n\n")

	if snap.Session.Processing {
		b.WriteString(theme.Notice.Render(spinnerFrames[s.spinnerFrame] + " Verifying and drawing..."))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Render("✦ Ready"))
	}
	if snap.ShowRetryNotice() {
		b.WriteString("\n\n")
		b.WriteString(theme.Notice.Render(retryNotice(snap)))
	}
	b.WriteString("\n\n")

	back := components.NewButton("Back", false, nil).View()
	draw := components.NewButton(drawLabel(snap), true, nil)
	draw.Disabled = snap.Session.Processing
	if draw.Disabled {
		draw.Label = spinnerFrames[s.spinnerFrame]
	}
	b.WriteString(footerRow(back, draw.View()))
	return theme.Card.Width(cardWidth).Render(b.String())
}

func renderResult(snap wiz.Snapshot) string {
	var b strings.Builder
	b.WriteString(headingRow("Result", "Generated for "+snap.Session.IdentityLabel, snap))
	b.WriteString("\n\n")
	b.WriteString(theme.StepDone.Render("✓ Final step completed"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("If you didn't see the video, ensure sound is allowed and try again."))
	b.WriteString("\n\n")
	b.WriteString(components.NewButton("Start Over", true, nil).View())
	return theme.Card.Width(cardWidth).Render(b.String())
}

func renderGate() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("✦ Final Verification"))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render("Enable sound to reveal your reward video. This helps us verify it's you."))
	b.WriteString("\n\n")
	b.WriteString(footerRow(
		components.NewButton("Cancel", false, nil).View(),
		components.NewButton("Enable & Reveal", true, nil).View(),
	))
	return theme.Modal.Width(cardWidth).Render(b.String())
}

func (s *WizardScreen) renderReveal(snap wiz.Snapshot) string {
	var status string
	switch snap.Reveal {
	case wiz.RevealAttempting:
		status = theme.Notice.Render("Starting playback...")
	case wiz.RevealPlaying:
		status = theme.StepDone.Render("▶ Playing with sound")
	case wiz.RevealBlocked:
		status = theme.ErrorText.Render("Playback did not start")
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Your Reward"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(s.flow.Config().MediaSource))
	b.WriteString("\n\n")
	b.WriteString(status)
	if snap.Hint != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(snap.Hint))
	}
	b.WriteString("\n\n")

	closeBtn := components.NewButton("Close", false, nil).View()
	if snap.Reveal == wiz.RevealBlocked {
		b.WriteString(footerRow(closeBtn, components.NewButton("Play", true, nil).View()))
	} else {
		b.WriteString(closeBtn)
	}
	return theme.Modal.Width(cardWidth).Render(b.String())
}

// renderEligibility renders the four-cell status panel on the draw step.
func renderEligibility(snap wiz.Snapshot) string {
	cell := func(label, value string) string {
		return theme.Panel.Width(cardWidth/2 - 3).Render(
			theme.Label.Render(label) + "\n" + theme.Body.Render(value))
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Eligibility", "Pre-Qualified"),
		cell("Ref ID", snap.Session.Token.Label))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Queue Status", "Live"),
		cell("Draw Window", "Immediate"))
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

func headingRow(title, subtitle string, snap wiz.Snapshot) string {
	left := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(title) + "\n" +
		theme.Hint.Render(subtitle)
	return footerRow(left, tryBadge(snap))
}

// footerRow places left and right at the edges of the card.
func footerRow(left, right string) string {
	gap := cardWidth - 6 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, left, strings.Repeat(" ", gap), right)
}

func tryBadge(snap wiz.Snapshot) string {
	return theme.Badge.Render("Tries " + snap.AttemptLabel())
}

// drawLabel is the draw button caption. The last draw reads differently.
func drawLabel(snap wiz.Snapshot) string {
	if snap.FinalDraw() {
		return "Finalize Result"
	}
	return "Run Luck Draw"
}

func retryNotice(snap wiz.Snapshot) string {
	return fmt.Sprintf("%s, unlucky this time. Please run again.", snap.Session.FirstName())
}
