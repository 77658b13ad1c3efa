package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/reward/internal/identity"
	"github.com/abhisek/reward/internal/media"
	"github.com/abhisek/reward/internal/store"
	"github.com/abhisek/reward/internal/wizard"
)

type memRepo struct {
	mu     sync.Mutex
	events []store.RunEventData
	err    error
	hold   chan struct{} // when set, appends wait until it is closed
}

func (m *memRepo) AppendRunEvent(_ context.Context, data store.RunEventData) error {
	if m.hold != nil {
		<-m.hold
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, data)
	return nil
}

func (m *memRepo) QueryRunEvents(context.Context, store.QueryOpts) ([]store.RunEventRecord, error) {
	return nil, nil
}

func (m *memRepo) QueryRunSummaries(context.Context, store.QueryOpts) ([]store.RunSummaryRecord, error) {
	return nil, nil
}

func (m *memRepo) Purge(context.Context) (int64, error) { return 0, nil }

func (m *memRepo) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Kind
	}
	return out
}

type fixedTokens struct{ n int }

func (f *fixedTokens) Next() identity.Token {
	f.n++
	id := string(rune('a' + f.n))
	return identity.Token{ID: id, Label: "RID-" + id}
}

func newFlow(t *testing.T, repo store.RunEventRepo, log *zap.Logger) (*wizard.Flow, *Writer) {
	t.Helper()
	cfg := wizard.DefaultConfig()
	cfg.DrawDelay = 0
	f, err := wizard.New(cfg, media.NewMockPlayer(nil), wizard.WithTokens(&fixedTokens{}))
	require.NoError(t, err)
	w := NewWriter(repo, log, 0)
	t.Cleanup(w.Close)
	f.Subscribe(w.Listener())
	return f, w
}

func TestRecord_SkipsFocus(t *testing.T) {
	_, ok := Record(wizard.Event{Kind: wizard.EventFocusIdentity})
	assert.False(t, ok)
}

func TestRecord_Fields(t *testing.T) {
	e := wizard.Event{
		Kind:    wizard.EventAttemptCompleted,
		Outcome: wizard.OutcomeRetry,
		State: wizard.Snapshot{
			Session: wizard.Session{
				IdentityLabel: "Jane Doe",
				Token:         identity.Token{ID: "s1", Label: "RID-0001-000001"},
				AttemptCount:  1,
			},
			Step: wizard.StepDraw,
		},
	}

	data, ok := Record(e)
	require.True(t, ok)
	assert.Equal(t, store.RunEventData{
		SessionID:    "s1",
		Token:        "RID-0001-000001",
		Kind:         "attempt_completed",
		Step:         "draw",
		AttemptCount: 1,
		Gate:         "closed",
		Reveal:       "hidden",
		Identity:     "Jane Doe",
		Detail:       "retry",
	}, data)
}

func TestRecord_ValidationMessage(t *testing.T) {
	e := wizard.Event{
		Kind: wizard.EventValidationFailed,
		Err:  &wizard.ValidationError{Field: "identity", Message: wizard.MsgIdentityRequired},
	}
	data, ok := Record(e)
	require.True(t, ok)
	assert.Equal(t, wizard.MsgIdentityRequired, data.Detail)
}

func TestListener_JournalsFullRun(t *testing.T) {
	repo := &memRepo{}
	f, w := newFlow(t, repo, nil)
	ctx := context.Background()

	_, err := f.Advance(ctx)
	require.True(t, wizard.IsValidation(err))

	require.NoError(t, f.SetIdentity("Jane Doe"))
	_, err = f.Advance(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.RunAttempt(ctx)
		require.NoError(t, err)
	}
	pending, err := f.ConfirmGate(ctx)
	require.NoError(t, err)
	_, err = f.AwaitPlayback(ctx, pending)
	require.NoError(t, err)
	f.Reset()
	w.Close()

	assert.Equal(t, []string{
		"validation_failed",
		"step_changed",
		"attempt_started", "attempt_completed",
		"attempt_started", "attempt_completed",
		"attempt_started", "attempt_completed", "gate_opened",
		"gate_confirmed", "step_changed", "reveal_changed",
		"reveal_changed",
		"reset",
	}, repo.kinds())

	repo.mu.Lock()
	defer repo.mu.Unlock()
	last := repo.events[len(repo.events)-1]
	assert.NotEqual(t, repo.events[0].SessionID, last.SessionID, "reset starts a new session")
	assert.Equal(t, "playing", repo.events[len(repo.events)-2].Reveal)
}

func TestListener_LogsAppendFailure(t *testing.T) {
	repo := &memRepo{err: errors.New("database is locked")}
	core, logs := observer.New(zap.WarnLevel)
	f, w := newFlow(t, repo, zap.New(core))

	require.NoError(t, f.SetIdentity("Jane Doe"))
	_, err := f.Advance(context.Background())
	require.NoError(t, err)
	w.Close()

	entries := logs.FilterMessage("failed to journal run event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "step_changed", entries[0].ContextMap()["kind"])
}

func TestWriter_SlowJournalDoesNotBlockFlow(t *testing.T) {
	repo := &memRepo{hold: make(chan struct{})}
	f, w := newFlow(t, repo, nil)
	release := sync.OnceFunc(func() { close(repo.hold) })
	t.Cleanup(release)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = f.SetIdentity("Jane Doe")
		_, _ = f.Advance(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flow blocked on a stalled journal write")
	}
	assert.Empty(t, repo.kinds())

	release()
	w.Close()
	assert.Equal(t, []string{"step_changed"}, repo.kinds())
}

func TestWriter_FullQueueDropsWithWarning(t *testing.T) {
	repo := &memRepo{hold: make(chan struct{})}
	core, logs := observer.New(zap.WarnLevel)
	w := NewWriter(repo, zap.New(core), 1)

	e := wizard.Event{Kind: wizard.EventReset}
	listener := w.Listener()
	// At most one event is held by the writer and one sits in the queue.
	for i := 0; i < 5; i++ {
		listener(e)
	}
	require.Eventually(t, func() bool {
		return logs.FilterMessage("journal queue full, dropping run event").Len() >= 3
	}, time.Second, 10*time.Millisecond)

	close(repo.hold)
	w.Close()
	assert.NotEmpty(t, repo.kinds())
}

func TestWriter_CloseIsIdempotent(t *testing.T) {
	repo := &memRepo{}
	w := NewWriter(repo, nil, 0)
	w.Close()
	w.Close()
	w.Listener()(wizard.Event{Kind: wizard.EventReset})
	assert.Empty(t, repo.kinds())
}
