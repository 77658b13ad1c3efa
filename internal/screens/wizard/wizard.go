package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/reward/internal/router"
	"github.com/abhisek/reward/internal/screen"
	"github.com/abhisek/reward/internal/screens/history"
	"github.com/abhisek/reward/internal/store"
	"github.com/abhisek/reward/internal/ui/components"
	"github.com/abhisek/reward/internal/ui/layout"
	wiz "github.com/abhisek/reward/internal/wizard"
)

const spinnerInterval = 120 * time.Millisecond

// WizardScreen drives a wiz.Flow from key presses. It never changes
// flow state itself; it calls flow operations and renders snapshots.
type WizardScreen struct {
	ctx   context.Context
	flow  *wiz.Flow
	runs  store.RunEventRepo
	input components.TextInput

	spinnerGen   uint64
	spinnerFrame int
	errMsg       string

	mu    sync.Mutex
	inbox []wiz.Event
}

var _ screen.Screen = (*WizardScreen)(nil)
var _ screen.KeyHintProvider = (*WizardScreen)(nil)
var _ screen.BadgeProvider = (*WizardScreen)(nil)

// New creates a WizardScreen for flow. ctx bounds every playback started
// from this screen. runs may be nil, which disables the history view.
func New(ctx context.Context, flow *wiz.Flow, runs store.RunEventRepo) *WizardScreen {
	s := &WizardScreen{
		ctx:   ctx,
		flow:  flow,
		runs:  runs,
		input: components.NewTextInput("e.g., Jane Doe", 40),
	}
	flow.Subscribe(s.receive)
	return s
}

// receive queues flow events; they are applied on the next Update.
func (s *WizardScreen) receive(e wiz.Event) {
	s.mu.Lock()
	s.inbox = append(s.inbox, e)
	s.mu.Unlock()
}

func (s *WizardScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *WizardScreen) Title() string {
	return s.flow.Step().Label()
}

// Badge shows the attempt counter and the correlation token.
func (s *WizardScreen) Badge() string {
	snap := s.flow.Snapshot()
	return "Tries " + snap.AttemptLabel() + "  " + snap.Session.Token.Label
}

func (s *WizardScreen) KeyHints() []layout.KeyHint {
	snap := s.flow.Snapshot()
	switch {
	case snap.Reveal.Visible():
		hints := []layout.KeyHint{{Key: "X", Description: "Close"}}
		if snap.Reveal == wiz.RevealBlocked {
			hints = append(hints, layout.KeyHint{Key: "P", Description: "Play"})
		}
		return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	case snap.Gate == wiz.GatePending:
		return []layout.KeyHint{
			{Key: "Y", Description: "Enable & Reveal"},
			{Key: "N", Description: "Cancel"},
		}
	}

	switch snap.Step {
	case wiz.StepDetails:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
		if s.runs != nil {
			hints = append(hints, layout.KeyHint{Key: "F2", Description: "History"})
		}
		return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	case wiz.StepDraw:
		return []layout.KeyHint{
			{Key: "Enter", Description: drawLabel(snap)},
			{Key: "B", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	default:
		return []layout.KeyHint{
			{Key: "R", Description: "Start Over"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
}

func (s *WizardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case attemptDoneMsg:
		cmd = s.handleAttemptDone(msg)

	case playbackResultMsg:
		cmd = s.handlePlaybackResult(msg)

	case spinnerTickMsg:
		cmd = s.handleSpinnerTick(msg)

	case tea.KeyMsg:
		cmd = s.handleKey(msg)

	default:
		if s.flow.Step() == wiz.StepDetails {
			s.input, cmd = s.input.Update(msg)
		}
	}

	return s, tea.Batch(cmd, s.applyEvents())
}

func (s *WizardScreen) handleAttemptDone(msg attemptDoneMsg) tea.Cmd {
	_, err := s.flow.CompleteAttempt(msg.Ticket)
	if err != nil && !errors.Is(err, wiz.ErrStaleCompletion) {
		s.errMsg = err.Error()
	}
	return nil
}

func (s *WizardScreen) handlePlaybackResult(msg playbackResultMsg) tea.Cmd {
	_, err := s.flow.ResolvePlayback(msg.Key, msg.Err)
	if err != nil && !errors.Is(err, wiz.ErrStaleCompletion) {
		s.errMsg = err.Error()
	}
	return nil
}

func (s *WizardScreen) handleSpinnerTick(msg spinnerTickMsg) tea.Cmd {
	if msg.Gen != s.spinnerGen || !s.flow.Snapshot().Session.Processing {
		return nil
	}
	s.spinnerFrame = (s.spinnerFrame + 1) % len(spinnerFrames)
	return s.spinnerTickCmd()
}

func (s *WizardScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	snap := s.flow.Snapshot()

	// Overlays take every key while shown.
	if snap.Reveal.Visible() {
		switch key {
		case "x", "X", "esc":
			s.flow.CloseReveal()
		case "p", "P":
			if snap.Reveal == wiz.RevealBlocked {
				return s.replay()
			}
		}
		return nil
	}
	if snap.Gate == wiz.GatePending {
		switch key {
		case "y", "Y", "enter":
			return s.confirm()
		case "n", "N", "esc":
			s.absorb(s.flow.CancelGate())
		}
		return nil
	}

	switch snap.Step {
	case wiz.StepDetails:
		return s.handleDetailsKey(msg)

	case wiz.StepDraw:
		switch key {
		case "enter", "space", " ":
			return s.runDraw()
		case "b", "B", "left", "esc", "backspace":
			_, err := s.flow.GoBack()
			s.absorb(err)
		}

	case wiz.StepResult:
		switch key {
		case "r", "R", "enter":
			s.flow.Reset()
		}
	}
	return nil
}

func (s *WizardScreen) handleDetailsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		s.absorb(s.flow.SetIdentity(s.input.Value()))
		_, err := s.flow.Advance(s.ctx)
		if err != nil && !wiz.IsValidation(err) {
			s.errMsg = err.Error()
		}
		return nil

	case "f2":
		if s.runs == nil {
			return nil
		}
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: history.New(s.runs)}
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.absorb(s.flow.SetIdentity(s.input.Value()))
	return cmd
}

// runDraw starts one draw. A press while a draw is in flight does nothing.
func (s *WizardScreen) runDraw() tea.Cmd {
	ticket, err := s.flow.BeginAttempt()
	if err != nil {
		if !errors.Is(err, wiz.ErrAttemptInFlight) {
			s.errMsg = err.Error()
		}
		return nil
	}
	s.errMsg = ""

	done := tea.Tick(s.flow.Config().DrawDelay, func(time.Time) tea.Msg {
		return attemptDoneMsg{Ticket: ticket}
	})
	s.spinnerGen++
	return tea.Batch(done, s.spinnerTickCmd())
}

// confirm satisfies the gate. Playback is requested before this returns,
// inside the key press that confirmed it.
func (s *WizardScreen) confirm() tea.Cmd {
	pending, err := s.flow.ConfirmGate(s.ctx)
	if err != nil {
		s.absorb(err)
		return nil
	}
	return awaitPlayback(s.ctx, pending)
}

func (s *WizardScreen) replay() tea.Cmd {
	pending, err := s.flow.Replay(s.ctx)
	if err != nil {
		s.absorb(err)
		return nil
	}
	return awaitPlayback(s.ctx, pending)
}

// absorb shows unexpected errors without interrupting the wizard.
func (s *WizardScreen) absorb(err error) {
	if err != nil {
		s.errMsg = err.Error()
	}
}

// applyEvents applies queued flow events to the screen-local state.
func (s *WizardScreen) applyEvents() tea.Cmd {
	s.mu.Lock()
	events := s.inbox
	s.inbox = nil
	s.mu.Unlock()

	var cmds []tea.Cmd
	for _, e := range events {
		switch e.Kind {
		case wiz.EventReset:
			s.input.Reset()
			s.errMsg = ""
			s.spinnerGen++
		case wiz.EventFocusIdentity:
			s.errMsg = ""
			cmds = append(cmds, s.input.Focus())
		case wiz.EventValidationFailed:
			var verr *wiz.ValidationError
			if errors.As(e.Err, &verr) {
				s.input.SetError(verr.Message)
			}
		case wiz.EventStepChanged:
			if e.State.Step != wiz.StepDetails {
				s.input.Blur()
			}
		}
	}
	return tea.Batch(cmds...)
}

func awaitPlayback(ctx context.Context, pending *wiz.PendingPlayback) tea.Cmd {
	return func() tea.Msg {
		err := pending.Wait(ctx)
		return playbackResultMsg{Key: pending.Key, Err: err}
	}
}

func (s *WizardScreen) spinnerTickCmd() tea.Cmd {
	gen := s.spinnerGen
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg {
		return spinnerTickMsg{Gen: gen}
	})
}
