package media

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

	"github.com/abhisek/reward/internal/store"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []store.RunEventData
	err    error
}

func (r *recordingRepo) AppendRunEvent(_ context.Context, data store.RunEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingRepo) QueryRunEvents(context.Context, store.QueryOpts) ([]store.RunEventRecord, error) {
	return nil, nil
}

func (r *recordingRepo) QueryRunSummaries(context.Context, store.QueryOpts) ([]store.RunSummaryRecord, error) {
	return nil, nil
}

func (r *recordingRepo) Purge(context.Context) (int64, error) { return 0, nil }

func (r *recordingRepo) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Kind+":"+e.Detail)
	}
	return out
}

func waitResult(t *testing.T, pb Playback) error {
	t.Helper()
	select {
	case err := <-pb.Result():
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("playback outcome never arrived")
		return nil
	}
}

func TestRejectedError(t *testing.T) {
	cause := errors.New("autoplay denied")
	err := Reject(cause)

	assert.True(t, IsRejected(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "autoplay denied")
	assert.False(t, IsRejected(ErrStopped))
	assert.Equal(t, ErrPlaybackRejected.Error(), Reject(nil).Error())
}

func TestMockPlayer_AutoResolve(t *testing.T) {
	p := NewMockPlayer(nil)
	pb := p.Start(context.Background(), Request{Source: "/clip.mp4"})

	assert.NoError(t, waitResult(t, pb))
	assert.Equal(t, 1, p.StartCount())
	assert.Equal(t, "/clip.mp4", p.Calls[0].Source)
}

func TestMockPlayer_ManualResolve(t *testing.T) {
	p := &MockPlayer{}
	pb := p.Start(context.Background(), Request{})

	select {
	case <-pb.Result():
		t.Fatal("outcome delivered before Resolve")
	default:
	}

	p.Last().Resolve(Reject(nil))
	p.Last().Resolve(nil) // ignored
	assert.True(t, IsRejected(waitResult(t, pb)))
}

func TestMockPlayback_StopDeliversStopped(t *testing.T) {
	p := &MockPlayer{}
	pb := p.Start(context.Background(), Request{})

	require.NoError(t, pb.Stop())
	require.NoError(t, pb.Stop())
	assert.ErrorIs(t, waitResult(t, pb), ErrStopped)
	assert.True(t, p.Last().Stopped())
}

func TestExecPlayer_MissingCommandIsRejected(t *testing.T) {
	p := NewExecPlayer(Config{Command: "reward-no-such-player-binary", SettleWindow: time.Second})
	pb := p.Start(context.Background(), Request{Source: "/clip.mp4"})

	assert.True(t, IsRejected(waitResult(t, pb)))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "mpv", cfg.Command)
	assert.NotEmpty(t, cfg.MuteArgs)
	assert.Positive(t, cfg.SettleWindow)
}

func TestLoggingPlayer_JournalsOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome error
		want    string
	}{
		{"playing", nil, "playback_result:playing"},
		{"rejected", Reject(errors.New("denied")), "playback_result:rejected"},
		{"stopped", ErrStopped, "playback_result:stopped"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &recordingRepo{}
			core, logs := observer.New(zap.InfoLevel)
			p := WithLogging(NewMockPlayer(tt.outcome), repo, zap.New(core))

			pb := p.Start(context.Background(), Request{Source: "/clip.mp4", SessionID: "s1"})
			err := waitResult(t, pb)

			if tt.outcome == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.outcome)
			}
			assert.Equal(t, []string{"playback_started:/clip.mp4", tt.want}, repo.kinds())
			assert.Equal(t, 1, logs.Len())
		})
	}
}

func TestLoggingPlayer_JournalFailureDoesNotFailPlayback(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	core, logs := observer.New(zap.WarnLevel)
	p := WithLogging(NewMockPlayer(nil), repo, zap.New(core))

	pb := p.Start(context.Background(), Request{SessionID: "s1"})
	assert.NoError(t, waitResult(t, pb))
	assert.Equal(t, 2, logs.FilterMessage("failed to journal playback event").Len())
}

func TestLoggingPlayer_NilRepo(t *testing.T) {
	inner := &MockPlayer{}
	p := WithLogging(inner, nil, nil)

	pb := p.Start(context.Background(), Request{})
	require.NoError(t, pb.Stop())
	assert.ErrorIs(t, waitResult(t, pb), ErrStopped)
	assert.True(t, inner.Last().Stopped())
}
