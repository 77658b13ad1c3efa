package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/reward/internal/identity"
	"github.com/abhisek/reward/internal/media"
)

// Option configures a Flow.
type Option func(*Flow)

// WithTokens sets the session token generator.
func WithTokens(g identity.Generator) Option {
	return func(f *Flow) { f.tokens = g }
}

// WithAfter replaces time.After for the blocking draw delay.
func WithAfter(after func(time.Duration) <-chan time.Time) Option {
	return func(f *Flow) { f.after = after }
}

// WithLogger sets the logger used for absorbed errors.
func WithLogger(l *zap.Logger) Option {
	return func(f *Flow) { f.log = l }
}

// Flow is the wizard state machine. It owns the session, the current step,
// the gate and the reveal; all state changes go through its methods.
type Flow struct {
	mu sync.Mutex

	cfg    Config
	player media.Player
	tokens identity.Generator
	after  func(time.Duration) <-chan time.Time
	log    *zap.Logger

	label    string
	token    identity.Token
	step     Step
	attempts attemptCounter
	gate     gate
	reveal   reveal

	listeners []listenerEntry
	nextID    int
	queued    []Event
}

type listenerEntry struct {
	id int
	fn Listener
}

// New creates a Flow at the Details step with a fresh session.
func New(cfg Config, player media.Player, opts ...Option) (*Flow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid wizard config: %w", err)
	}
	if player == nil {
		return nil, errors.New("media player is required")
	}

	f := &Flow{
		cfg:    cfg,
		player: player,
		tokens: identity.NewSource(),
		after:  time.After,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.token = f.tokens.Next()
	f.attempts = newAttemptCounter(cfg.MaxAttempts)
	return f, nil
}

// Config returns the flow configuration.
func (f *Flow) Config() Config {
	return f.cfg
}

// Subscribe registers l and returns a function that removes it.
func (f *Flow) Subscribe(l Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.listeners = append(f.listeners, listenerEntry{id: id, fn: l})

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, e := range f.listeners {
			if e.id == id {
				f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// SetIdentity updates the identity field. Only valid on Details.
func (f *Flow) SetIdentity(label string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepDetails {
		return invalidTransition("set identity", f.step)
	}
	f.label = label
	return nil
}

// Advance moves the flow forward. On Details it validates the identity and
// enters Draw. On Draw it runs one draw, returning immediately if a draw
// is already in flight. On Result only Reset is valid.
func (f *Flow) Advance(ctx context.Context) (Step, error) {
	f.mu.Lock()
	switch f.step {
	case StepDetails:
		defer f.unlockAndPublish()
		return f.enterDrawLocked()

	case StepDraw:
		if f.attempts.processing() {
			step := f.step
			f.mu.Unlock()
			return step, nil
		}
		f.mu.Unlock()

		_, err := f.RunAttempt(ctx)
		if errors.Is(err, ErrAttemptInFlight) {
			err = nil
		}
		return f.Step(), err

	default:
		defer f.mu.Unlock()
		return f.step, invalidTransition("advance", f.step)
	}
}

func (f *Flow) enterDrawLocked() (Step, error) {
	if strings.TrimSpace(f.label) == "" {
		err := &ValidationError{Field: "identity", Message: MsgIdentityRequired}
		f.queueLocked(Event{Kind: EventValidationFailed, Err: err})
		return f.step, err
	}

	f.attempts.abandon()
	f.step = StepDraw
	f.queueLocked(Event{Kind: EventStepChanged})
	return f.step, nil
}

// GoBack returns from Draw to Details, keeping the identity label.
func (f *Flow) GoBack() (Step, error) {
	f.mu.Lock()
	defer f.unlockAndPublish()

	if f.step != StepDraw {
		return f.step, invalidTransition("go back", f.step)
	}
	f.step = StepDetails
	f.queueLocked(Event{Kind: EventStepChanged})
	f.queueLocked(Event{Kind: EventFocusIdentity})
	return f.step, nil
}

// Reset discards the session and returns to Details with a new token.
// In-flight draws and playbacks become stale.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.unlockAndPublish()

	f.reveal.close()
	f.reveal = reveal{}
	f.gate = gate{}
	f.attempts = newAttemptCounter(f.cfg.MaxAttempts)
	f.label = ""
	f.token = identity.NextDistinct(f.tokens, f.token)
	f.step = StepDetails

	f.queueLocked(Event{Kind: EventReset})
	f.queueLocked(Event{Kind: EventFocusIdentity})
}

// BeginAttempt starts a draw on the Draw step. While another draw is in
// flight it returns ErrAttemptInFlight and changes nothing.
func (f *Flow) BeginAttempt() (AttemptTicket, error) {
	f.mu.Lock()
	defer f.unlockAndPublish()

	if f.step != StepDraw {
		return AttemptTicket{}, invalidTransition("run draw", f.step)
	}
	if f.gate.state == GatePending {
		return AttemptTicket{}, fmt.Errorf("run draw with open gate: %w", ErrInvalidTransition)
	}
	serial, err := f.attempts.begin()
	if err != nil {
		return AttemptTicket{}, err
	}

	f.queueLocked(Event{Kind: EventAttemptStarted})
	return AttemptTicket{Session: f.token.ID, Serial: serial}, nil
}

// CompleteAttempt finishes the draw identified by ticket. The third draw
// returns OutcomeGateRequired and opens the gate when the flow is on Draw.
func (f *Flow) CompleteAttempt(ticket AttemptTicket) (AttemptOutcome, error) {
	f.mu.Lock()
	defer f.unlockAndPublish()

	if ticket.Session != f.token.ID {
		f.log.Debug("discarding stale draw completion",
			zap.String("ticket_session", ticket.Session),
			zap.String("session", f.token.ID))
		return OutcomeNone, ErrStaleCompletion
	}
	outcome, err := f.attempts.complete(ticket.Serial)
	if err != nil {
		f.log.Debug("discarding abandoned draw completion", zap.Uint64("serial", ticket.Serial))
		return OutcomeNone, err
	}

	f.queueLocked(Event{Kind: EventAttemptCompleted, Outcome: outcome})
	if outcome == OutcomeGateRequired && f.step == StepDraw {
		f.gate.open()
		f.queueLocked(Event{Kind: EventGateOpened})
	}
	return outcome, nil
}

type attemptResult struct {
	outcome AttemptOutcome
	err     error
}

// RunAttempt performs a full draw: begin, wait the draw delay, complete.
// Once begun the draw cannot be cancelled; if ctx ends first the draw
// still completes in the background and ctx.Err() is returned.
func (f *Flow) RunAttempt(ctx context.Context) (AttemptOutcome, error) {
	ticket, err := f.BeginAttempt()
	if err != nil {
		return OutcomeNone, err
	}

	done := make(chan attemptResult, 1)
	go func() {
		<-f.after(f.cfg.DrawDelay)
		outcome, err := f.CompleteAttempt(ticket)
		done <- attemptResult{outcome: outcome, err: err}
	}()

	select {
	case r := <-done:
		return r.outcome, r.err
	case <-ctx.Done():
		return OutcomeNone, ctx.Err()
	}
}

// CancelGate closes an open gate. The session is untouched and the next
// draw opens the gate again.
func (f *Flow) CancelGate() error {
	f.mu.Lock()
	defer f.unlockAndPublish()

	if err := f.gate.cancel(); err != nil {
		return err
	}
	f.queueLocked(Event{Kind: EventGateCancelled})
	return nil
}

// ConfirmGate satisfies the gate, moves to Result and starts audible
// playback before returning. A second call is rejected without side effects.
func (f *Flow) ConfirmGate(ctx context.Context) (*PendingPlayback, error) {
	f.mu.Lock()
	defer f.unlockAndPublish()

	ticket, err := f.gate.confirm(f.token.ID)
	if err != nil {
		return nil, err
	}
	f.step = StepResult
	f.queueLocked(Event{Kind: EventGateConfirmed})
	f.queueLocked(Event{Kind: EventStepChanged})

	pending, err := f.redeemLocked(ctx, ticket)
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// Reveal redeems a ticket directly. Only the ticket issued by the last
// confirmation is accepted, and only once.
func (f *Flow) Reveal(ctx context.Context, ticket RevealTicket) (*PendingPlayback, error) {
	f.mu.Lock()
	defer f.unlockAndPublish()
	return f.redeemLocked(ctx, ticket)
}

func (f *Flow) redeemLocked(ctx context.Context, ticket RevealTicket) (*PendingPlayback, error) {
	if ticket.Session != f.token.ID {
		return nil, ErrStaleCompletion
	}
	if f.gate.state != GateSatisfied {
		return nil, ErrGateNotPending
	}
	if ticket.Serial == 0 || ticket.Serial != f.gate.serial {
		return nil, ErrUnknownTicket
	}
	pending, err := f.reveal.consume(ctx, f.player, f.mediaRequestLocked(), ticket)
	if err != nil {
		return nil, err
	}
	f.queueLocked(Event{Kind: EventRevealChanged})
	return pending, nil
}

// Replay re-requests playback after the player blocked it.
func (f *Flow) Replay(ctx context.Context) (*PendingPlayback, error) {
	f.mu.Lock()
	defer f.unlockAndPublish()

	if f.reveal.state != RevealBlocked {
		return nil, fmt.Errorf("replay while %s: %w", f.reveal.state, ErrInvalidTransition)
	}
	pending := f.reveal.start(ctx, f.player, f.mediaRequestLocked())
	f.queueLocked(Event{Kind: EventRevealChanged})
	return pending, nil
}

// ResolvePlayback applies a playback start outcome. Outcomes for a closed
// overlay, a superseded request, or a reset session are stale.
func (f *Flow) ResolvePlayback(key PlaybackKey, err error) (RevealState, error) {
	f.mu.Lock()
	defer f.unlockAndPublish()

	if key.Session != f.token.ID || !f.reveal.resolve(key.Generation, err) {
		f.log.Debug("discarding stale playback outcome",
			zap.String("session", key.Session),
			zap.Uint64("generation", key.Generation),
			zap.Error(err))
		return f.reveal.state, ErrStaleCompletion
	}
	if err != nil {
		f.log.Info("playback blocked", zap.String("session", key.Session), zap.Error(err))
	}
	f.queueLocked(Event{Kind: EventRevealChanged, Err: err})
	return f.reveal.state, nil
}

// AwaitPlayback waits for pending and applies its outcome.
func (f *Flow) AwaitPlayback(ctx context.Context, pending *PendingPlayback) (RevealState, error) {
	err := pending.Wait(ctx)
	if ctx.Err() != nil {
		return f.Snapshot().Reveal, ctx.Err()
	}
	return f.ResolvePlayback(pending.Key, err)
}

// CloseReveal hides the reveal overlay and stops playback. Step and
// session are unchanged.
func (f *Flow) CloseReveal() {
	f.mu.Lock()
	defer f.unlockAndPublish()

	if f.reveal.state == RevealHidden {
		return
	}
	f.reveal.close()
	f.queueLocked(Event{Kind: EventRevealChanged})
}

func (f *Flow) mediaRequestLocked() media.Request {
	return media.Request{
		Source:    f.cfg.MediaSource,
		SessionID: f.token.ID,
	}
}

func (f *Flow) snapshotLocked() Snapshot {
	return Snapshot{
		Session: Session{
			IdentityLabel: f.label,
			Token:         f.token,
			AttemptCount:  f.attempts.count,
			Processing:    f.attempts.processing(),
		},
		Step:        f.step,
		Gate:        f.gate.state,
		Reveal:      f.reveal.state,
		Hint:        f.reveal.hint,
		MaxAttempts: f.cfg.MaxAttempts,
	}
}

// queueLocked records an event with the state as of now.
func (f *Flow) queueLocked(e Event) {
	e.State = f.snapshotLocked()
	f.queued = append(f.queued, e)
}

// unlockAndPublish releases the lock and delivers queued events.
func (f *Flow) unlockAndPublish() {
	events := f.queued
	f.queued = nil
	listeners := make([]Listener, len(f.listeners))
	for i, e := range f.listeners {
		listeners[i] = e.fn
	}
	f.mu.Unlock()

	for _, e := range events {
		for _, l := range listeners {
			l(e)
		}
	}
}
