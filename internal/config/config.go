// Package config assembles runtime configuration from defaults and the
// REWARD_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/reward/internal/media"
	"github.com/abhisek/reward/internal/wizard"
)

// Config holds every setting the reward command reads from the environment.
// Command-line flags are applied on top by the caller.
type Config struct {
	// DBPath is the run journal location. Empty means the default path.
	DBPath string `env:"REWARD_DB"`

	// LogFile receives the structured log. Empty disables logging.
	LogFile string `env:"REWARD_LOG"`

	// NoJournal disables the run journal entirely.
	NoJournal bool `env:"REWARD_NO_JOURNAL"`

	MediaSource string        `env:"REWARD_MEDIA"`
	DrawDelay   time.Duration `env:"REWARD_DRAW_DELAY"`
	MaxAttempts int           `env:"REWARD_MAX_ATTEMPTS"`

	Player         string        `env:"REWARD_PLAYER"`
	PlayerArgs     []string      `env:"REWARD_PLAYER_ARGS" envSeparator:" "`
	PlayerMuteArgs []string      `env:"REWARD_PLAYER_MUTE_ARGS" envSeparator:" "`
	PlayerSettle   time.Duration `env:"REWARD_PLAYER_SETTLE"`
}

// Default returns a Config seeded from the package defaults.
func Default() Config {
	w := wizard.DefaultConfig()
	m := media.DefaultConfig()
	return Config{
		MediaSource:    w.MediaSource,
		DrawDelay:      w.DrawDelay,
		MaxAttempts:    w.MaxAttempts,
		Player:         m.Command,
		PlayerArgs:     m.Args,
		PlayerMuteArgs: m.MuteArgs,
		PlayerSettle:   m.SettleWindow,
	}
}

// ParseEnv overlays environment variables onto target. Unset variables
// leave the existing field values alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the defaults with the environment applied.
func Load() (Config, error) {
	cfg := Default()
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Wizard returns the flow configuration.
func (c Config) Wizard() wizard.Config {
	return wizard.Config{
		MaxAttempts: c.MaxAttempts,
		DrawDelay:   c.DrawDelay,
		MediaSource: c.MediaSource,
	}
}

// Media returns the external player configuration.
func (c Config) Media() media.Config {
	return media.Config{
		Command:      c.Player,
		Args:         c.PlayerArgs,
		MuteArgs:     c.PlayerMuteArgs,
		SettleWindow: c.PlayerSettle,
	}
}

// Validate checks the assembled configuration.
func (c Config) Validate() error {
	if err := c.Wizard().Validate(); err != nil {
		return fmt.Errorf("wizard config: %w", err)
	}
	if c.Player == "" {
		return fmt.Errorf("player command is required (REWARD_PLAYER)")
	}
	if c.PlayerSettle < 0 {
		return fmt.Errorf("player settle window must not be negative")
	}
	return nil
}
