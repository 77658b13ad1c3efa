package media

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrPlaybackRejected is returned when the player refuses to start audible playback.
	ErrPlaybackRejected = errors.New("playback rejected")

	// ErrStopped is delivered when a playback is stopped before it reported an outcome.
	ErrStopped = errors.New("playback stopped")
)

// Request describes one playback start.
type Request struct {
	// Source is the static path of the media asset. The player never validates it.
	Source string

	// Muted starts playback without sound.
	Muted bool

	// SessionID correlates the playback with the wizard session (for logging).
	SessionID string
}

// Player starts media playback. Start must not block: it issues the request
// and reports the start outcome on the returned Playback.
type Player interface {
	Start(ctx context.Context, req Request) Playback
}

// Playback is a handle to one started (or refused) playback.
type Playback interface {
	// Result delivers exactly one value: nil once playback is running,
	// or an error wrapping ErrPlaybackRejected or ErrStopped.
	Result() <-chan error

	// Stop tears the playback down. It is safe to call more than once.
	Stop() error
}

// RejectedError wraps the underlying cause of a refused playback.
type RejectedError struct {
	Cause error
}

func (e *RejectedError) Error() string {
	if e.Cause == nil {
		return ErrPlaybackRejected.Error()
	}
	return fmt.Sprintf("%s: %v", ErrPlaybackRejected, e.Cause)
}

func (e *RejectedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPlaybackRejected}
	}
	return []error{ErrPlaybackRejected, e.Cause}
}

// Reject builds a rejection error for cause.
func Reject(cause error) error {
	return &RejectedError{Cause: cause}
}
