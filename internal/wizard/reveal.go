package wizard

import (
	"context"

	"github.com/abhisek/reward/internal/media"
)

// HintPlaybackBlocked is the passive hint shown when the player refuses to start.
const HintPlaybackBlocked = "If the video didn't start, press p to play it."

// PlaybackKey identifies one playback request. Results carrying an outdated
// key are stale.
type PlaybackKey struct {
	Session    string
	Generation uint64
}

// PendingPlayback is a started playback whose outcome has not been applied yet.
type PendingPlayback struct {
	Key      PlaybackKey
	playback media.Playback
}

// Wait blocks until the player reports the start outcome or ctx ends.
func (p *PendingPlayback) Wait(ctx context.Context) error {
	select {
	case err := <-p.playback.Result():
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reveal manages the playback lifecycle behind the gate.
type reveal struct {
	state      RevealState
	hint       string
	generation uint64
	lastTicket uint64
	playback   media.Playback
	cancel     context.CancelFunc
}

// consume redeems ticket and starts audible playback. The player is called
// on the caller's goroutine so the start stays inside the confirming key press.
func (r *reveal) consume(ctx context.Context, player media.Player, req media.Request, ticket RevealTicket) (*PendingPlayback, error) {
	if ticket.Serial == 0 || ticket.Serial <= r.lastTicket {
		return nil, ErrTicketConsumed
	}
	r.lastTicket = ticket.Serial
	return r.start(ctx, player, req), nil
}

// start issues a new playback request, superseding any previous one.
func (r *reveal) start(ctx context.Context, player media.Player, req media.Request) *PendingPlayback {
	r.stop()

	pctx, cancel := context.WithCancel(ctx)
	r.generation++
	r.cancel = cancel
	r.state = RevealAttempting
	r.hint = ""

	req.Muted = false
	r.playback = player.Start(pctx, req)

	return &PendingPlayback{
		Key:      PlaybackKey{Session: req.SessionID, Generation: r.generation},
		playback: r.playback,
	}
}

// resolve applies a start outcome. It returns false for stale outcomes.
func (r *reveal) resolve(generation uint64, err error) bool {
	if r.state != RevealAttempting || generation != r.generation {
		return false
	}
	if err != nil {
		r.state = RevealBlocked
		r.hint = HintPlaybackBlocked
		return true
	}
	r.state = RevealPlaying
	r.hint = ""
	return true
}

// close hides the overlay and releases the playback handle.
func (r *reveal) close() {
	r.stop()
	r.generation++
	r.state = RevealHidden
	r.hint = ""
}

func (r *reveal) stop() {
	if r.playback != nil {
		_ = r.playback.Stop()
		r.playback = nil
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
