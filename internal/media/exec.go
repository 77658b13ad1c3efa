package media

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"
)

// Config controls the external player process.
type Config struct {
	// Command is the player executable, resolved through PATH.
	Command string

	// Args are passed before the media source.
	Args []string

	// MuteArgs are appended to Args when a request is muted.
	MuteArgs []string

	// SettleWindow is how long the process must stay alive before
	// playback counts as started. An earlier non-zero exit is a rejection.
	SettleWindow time.Duration
}

// DefaultConfig returns a Config for mpv.
func DefaultConfig() Config {
	return Config{
		Command:      "mpv",
		Args:         []string{"--really-quiet"},
		MuteArgs:     []string{"--mute=yes"},
		SettleWindow: 750 * time.Millisecond,
	}
}

// ExecPlayer plays media by launching an external player process.
type ExecPlayer struct {
	cfg Config
}

var _ Player = (*ExecPlayer)(nil)

// NewExecPlayer creates an ExecPlayer.
func NewExecPlayer(cfg Config) *ExecPlayer {
	return &ExecPlayer{cfg: cfg}
}

// Start launches the player. The process is started synchronously; the
// outcome is reported once the settle window passes or the process exits.
func (p *ExecPlayer) Start(ctx context.Context, req Request) Playback {
	pctx, cancel := context.WithCancel(ctx)
	h := newHandle(cancel)

	args := append([]string{}, p.cfg.Args...)
	if req.Muted {
		args = append(args, p.cfg.MuteArgs...)
	}
	args = append(args, req.Source)

	cmd := exec.CommandContext(pctx, p.cfg.Command, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		h.resolve(Reject(err))
		return h
	}

	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	go func() {
		timer := time.NewTimer(p.cfg.SettleWindow)
		defer timer.Stop()

		select {
		case err := <-exited:
			switch {
			case pctx.Err() != nil:
				h.resolve(ErrStopped)
			case err != nil:
				h.resolve(Reject(err))
			default:
				// Short clip played through before the settle window closed.
				h.resolve(nil)
			}
		case <-timer.C:
			h.resolve(nil)
		}
	}()

	return h
}

// handle is the Playback shared by the players in this package.
type handle struct {
	result chan error
	once   sync.Once
	cancel context.CancelFunc
}

func newHandle(cancel context.CancelFunc) *handle {
	return &handle{
		result: make(chan error, 1),
		cancel: cancel,
	}
}

func (h *handle) resolve(err error) {
	h.once.Do(func() {
		h.result <- err
		close(h.result)
	})
}

func (h *handle) Result() <-chan error {
	return h.result
}

func (h *handle) Stop() error {
	if h.cancel != nil {
		h.cancel()
	}
	h.resolve(ErrStopped)
	return nil
}

// IsRejected reports whether err is a playback rejection.
func IsRejected(err error) bool {
	return errors.Is(err, ErrPlaybackRejected)
}
