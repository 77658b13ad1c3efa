package media

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/reward/internal/store"
)

// LoggingPlayer is a decorator that records every playback start and its
// outcome in the run journal.
type LoggingPlayer struct {
	inner Player
	repo  store.RunEventRepo
	log   *zap.Logger
}

var _ Player = (*LoggingPlayer)(nil)

// WithLogging wraps a Player with journaling. repo may be nil, in which
// case outcomes only go to log.
func WithLogging(p Player, repo store.RunEventRepo, log *zap.Logger) Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingPlayer{inner: p, repo: repo, log: log.Named("media")}
}

func (l *LoggingPlayer) Start(ctx context.Context, req Request) Playback {
	start := time.Now()
	inner := l.inner.Start(ctx, req)

	l.record(ctx, store.RunEventData{
		SessionID: req.SessionID,
		Kind:      "playback_started",
		Detail:    req.Source,
	})

	lp := &loggingPlayback{inner: inner, result: make(chan error, 1)}
	go func() {
		err, ok := <-inner.Result()
		if !ok {
			err = ErrStopped
		}
		latency := time.Since(start)

		data := store.RunEventData{
			SessionID: req.SessionID,
			Kind:      "playback_result",
			Detail:    outcomeLabel(err),
		}
		fields := []zap.Field{
			zap.String("session", req.SessionID),
			zap.String("source", req.Source),
			zap.Bool("muted", req.Muted),
			zap.Duration("latency", latency),
		}
		if err != nil {
			l.log.Warn("playback did not start", append(fields, zap.Error(err))...)
		} else {
			l.log.Info("playback started", fields...)
		}
		// Journal with a fresh context; the caller's may already be done.
		l.record(context.Background(), data)

		lp.result <- err
		close(lp.result)
	}()
	return lp
}

func (l *LoggingPlayer) record(ctx context.Context, data store.RunEventData) {
	if l.repo == nil {
		return
	}
	// Log the failure but never fail playback because of the journal.
	if err := l.repo.AppendRunEvent(ctx, data); err != nil {
		l.log.Warn("failed to journal playback event", zap.String("kind", data.Kind), zap.Error(err))
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "playing"
	case IsRejected(err):
		return "rejected"
	default:
		return "stopped"
	}
}

// loggingPlayback forwards the inner outcome once it has been journaled.
type loggingPlayback struct {
	inner  Playback
	result chan error
}

func (p *loggingPlayback) Result() <-chan error { return p.result }

func (p *loggingPlayback) Stop() error { return p.inner.Stop() }
