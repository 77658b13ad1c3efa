package wizard

import (
	"errors"
	"time"
)

// Config holds the tunables of the flow.
type Config struct {
	// MaxAttempts is the draw count that triggers the gate. The counter
	// stops at MaxAttempts-1; the last draw opens the gate instead.
	MaxAttempts int

	// DrawDelay is the simulated verification latency of each draw.
	DrawDelay time.Duration

	// MediaSource is the static path of the reveal asset.
	MediaSource string
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		DrawDelay:   1200 * time.Millisecond,
		MediaSource: "assets/reveal.mp4",
	}
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if c.MaxAttempts < 1 {
		return errors.New("max attempts must be at least 1")
	}
	if c.DrawDelay < 0 {
		return errors.New("draw delay must not be negative")
	}
	if c.MediaSource == "" {
		return errors.New("media source is required")
	}
	return nil
}
