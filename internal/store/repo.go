package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // only this session
}

// RunEventData captures one wizard or playback event.
type RunEventData struct {
	SessionID    string
	Token        string
	Kind         string
	Step         string
	AttemptCount int
	Gate         string
	Reveal       string
	Identity     string
	Detail       string
}

// RunEventRecord is a journaled event.
type RunEventRecord struct {
	Sequence  int64
	Timestamp time.Time
	RunEventData
}

// RunSummaryRecord condenses all events of one session.
type RunSummaryRecord struct {
	SessionID    string
	Token        string
	Identity     string
	StartedAt    time.Time
	LastAt       time.Time
	LastSequence int64
	Attempts     int
	FurthestStep string
	Revealed     bool
	Playback     string // "playing", "blocked", or "" if never resolved
	Events       int
}

// Outcome summarizes how far the run got.
func (r RunSummaryRecord) Outcome() string {
	switch {
	case r.Playback == "playing":
		return "revealed"
	case r.Playback == "blocked":
		return "revealed (playback blocked)"
	case r.Revealed:
		return "revealed (no playback result)"
	default:
		return "stopped at " + r.FurthestStep
	}
}

// RunEventRepo provides append and query access to the run journal.
type RunEventRepo interface {
	// AppendRunEvent records an event.
	AppendRunEvent(ctx context.Context, data RunEventData) error

	// QueryRunEvents returns events in sequence order.
	QueryRunEvents(ctx context.Context, opts QueryOpts) ([]RunEventRecord, error)

	// QueryRunSummaries returns one summary per session, most recent first.
	QueryRunSummaries(ctx context.Context, opts QueryOpts) ([]RunSummaryRecord, error)

	// Purge deletes every journaled event and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
}
