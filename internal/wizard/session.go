package wizard

import (
	"fmt"
	"strings"

	"github.com/abhisek/reward/internal/identity"
)

// Session is the per-run state. It is owned by a Flow and reinitialized on reset.
type Session struct {
	// IdentityLabel is the user-supplied name, stored as typed.
	IdentityLabel string

	// Token correlates everything this session produces. Stable until reset.
	Token identity.Token

	// AttemptCount is the number of Retry outcomes so far.
	AttemptCount int

	// Processing is true while a draw is in flight.
	Processing bool
}

// FirstName returns the first word of the identity label.
func (s Session) FirstName() string {
	fields := strings.Fields(s.IdentityLabel)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Snapshot is a read-only copy of the flow state for the presentation layer.
type Snapshot struct {
	Session     Session
	Step        Step
	Gate        GateState
	Reveal      RevealState
	Hint        string
	MaxAttempts int
}

// AttemptLabel renders the attempt counter as "n/max".
func (s Snapshot) AttemptLabel() string {
	return fmt.Sprintf("%d/%d", s.Session.AttemptCount, s.MaxAttempts)
}

// Progress returns the step progress fraction.
func (s Snapshot) Progress() float64 {
	return s.Step.Progress()
}

// ShowRetryNotice reports whether the "unlucky, try again" notice applies.
func (s Snapshot) ShowRetryNotice() bool {
	return s.Step == StepDraw &&
		!s.Session.Processing &&
		s.Session.AttemptCount > 0 &&
		s.Session.AttemptCount < s.MaxAttempts
}

// FinalDraw reports whether the next draw is the one that opens the gate.
func (s Snapshot) FinalDraw() bool {
	return s.Session.AttemptCount >= s.MaxAttempts-1
}

// EventKind names a state change published by the flow.
type EventKind string

const (
	EventFocusIdentity    EventKind = "focus_identity"
	EventValidationFailed EventKind = "validation_failed"
	EventStepChanged      EventKind = "step_changed"
	EventAttemptStarted   EventKind = "attempt_started"
	EventAttemptCompleted EventKind = "attempt_completed"
	EventGateOpened       EventKind = "gate_opened"
	EventGateCancelled    EventKind = "gate_cancelled"
	EventGateConfirmed    EventKind = "gate_confirmed"
	EventRevealChanged    EventKind = "reveal_changed"
	EventReset            EventKind = "reset"
)

// Event is published to listeners after the operation that caused it.
type Event struct {
	Kind    EventKind
	Outcome AttemptOutcome // set on EventAttemptCompleted
	Err     error          // set on EventValidationFailed and rejected playbacks
	State   Snapshot
}

// Listener receives flow events. Listeners run on the caller's goroutine
// after the flow lock is released, so they may read the flow.
type Listener func(Event)
