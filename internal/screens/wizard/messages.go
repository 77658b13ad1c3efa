package wizard

import wiz "github.com/abhisek/reward/internal/wizard"

// attemptDoneMsg is sent when the draw delay for a ticket has elapsed.
type attemptDoneMsg struct {
	Ticket wiz.AttemptTicket
}

func (attemptDoneMsg) Background() {}

// playbackResultMsg carries the start outcome of a reveal playback.
type playbackResultMsg struct {
	Key wiz.PlaybackKey
	Err error
}

func (playbackResultMsg) Background() {}

// spinnerTickMsg is sent at short intervals to animate the draw spinner.
// Ticks from an older chain carry an outdated Gen and are dropped.
type spinnerTickMsg struct {
	Gen uint64
}

func (spinnerTickMsg) Background() {}
