package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// stepRank orders step names for the furthest-step summary.
var stepRank = map[string]int{
	"details": 0,
	"draw":    1,
	"result":  2,
}

// runEventRepo implements RunEventRepo on database/sql.
type runEventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *runEventRepo) AppendRunEvent(ctx context.Context, data RunEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO run_events
			(sequence, ts_ms, session_id, token, kind, step, attempt_count, gate, reveal, identity, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum,
		time.Now().UnixMilli(),
		data.SessionID,
		data.Token,
		data.Kind,
		data.Step,
		data.AttemptCount,
		data.Gate,
		data.Reveal,
		data.Identity,
		data.Detail,
	)
	if err != nil {
		return fmt.Errorf("save run event: %w", err)
	}
	return nil
}

func (r *runEventRepo) QueryRunEvents(ctx context.Context, opts QueryOpts) ([]RunEventRecord, error) {
	query, args := buildEventQuery(opts)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query run events: %w", err)
	}
	defer rows.Close()

	var out []RunEventRecord
	for rows.Next() {
		var rec RunEventRecord
		var tsMs int64
		if err := rows.Scan(
			&rec.Sequence,
			&tsMs,
			&rec.SessionID,
			&rec.Token,
			&rec.Kind,
			&rec.Step,
			&rec.AttemptCount,
			&rec.Gate,
			&rec.Reveal,
			&rec.Identity,
			&rec.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		rec.Timestamp = time.UnixMilli(tsMs)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run events: %w", err)
	}
	return out, nil
}

func (r *runEventRepo) QueryRunSummaries(ctx context.Context, opts QueryOpts) ([]RunSummaryRecord, error) {
	limit := opts.Limit
	opts.Limit = 0

	events, err := r.QueryRunEvents(ctx, opts)
	if err != nil {
		return nil, err
	}

	bySession := make(map[string]*RunSummaryRecord)
	var order []string
	for _, e := range events {
		s, ok := bySession[e.SessionID]
		if !ok {
			s = &RunSummaryRecord{
				SessionID: e.SessionID,
				StartedAt: e.Timestamp,
			}
			bySession[e.SessionID] = s
			order = append(order, e.SessionID)
		}
		applyEvent(s, e)
	}

	out := make([]RunSummaryRecord, 0, len(order))
	for _, id := range order {
		out = append(out, *bySession[id])
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastSequence > out[j].LastSequence
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// applyEvent folds one event into a session summary.
func applyEvent(s *RunSummaryRecord, e RunEventRecord) {
	s.Events++
	s.LastAt = e.Timestamp
	s.LastSequence = e.Sequence
	if e.Token != "" {
		s.Token = e.Token
	}
	if e.Identity != "" {
		s.Identity = e.Identity
	}
	if e.AttemptCount > s.Attempts {
		s.Attempts = e.AttemptCount
	}
	if rank, ok := stepRank[e.Step]; ok {
		if cur, seen := stepRank[s.FurthestStep]; !seen || rank > cur {
			s.FurthestStep = e.Step
		}
	}
	if e.Kind == "gate_confirmed" {
		s.Revealed = true
	}
	if e.Reveal == "playing" || e.Reveal == "blocked" {
		s.Playback = e.Reveal
	}
}

func (r *runEventRepo) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM run_events`)
	if err != nil {
		return 0, fmt.Errorf("purge run events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge run events: %w", err)
	}
	return n, nil
}

// buildEventQuery renders the SELECT for opts.
func buildEventQuery(opts QueryOpts) (string, []any) {
	var where []string
	var args []any

	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where = append(where, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where = append(where, "ts_ms >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "ts_ms <= ?")
		args = append(args, opts.To.UnixMilli())
	}
	if opts.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, opts.SessionID)
	}

	var b strings.Builder
	b.WriteString(`SELECT sequence, ts_ms, session_id, token, kind, step, attempt_count, gate, reveal, identity, detail FROM run_events`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY sequence ASC")
	if opts.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}
	return b.String(), args
}
