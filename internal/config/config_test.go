package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/reward/internal/media"
	"github.com/abhisek/reward/internal/wizard"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, wizard.DefaultConfig(), cfg.Wizard())
	assert.Equal(t, media.DefaultConfig(), cfg.Media())
	assert.False(t, cfg.NoJournal)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REWARD_DB", "/tmp/r.db")
	t.Setenv("REWARD_LOG", "/tmp/r.log")
	t.Setenv("REWARD_NO_JOURNAL", "true")
	t.Setenv("REWARD_MEDIA", "/prank.mp4")
	t.Setenv("REWARD_DRAW_DELAY", "50ms")
	t.Setenv("REWARD_MAX_ATTEMPTS", "5")
	t.Setenv("REWARD_PLAYER", "vlc")
	t.Setenv("REWARD_PLAYER_ARGS", "--intf dummy")
	t.Setenv("REWARD_PLAYER_SETTLE", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/r.db", cfg.DBPath)
	assert.Equal(t, "/tmp/r.log", cfg.LogFile)
	assert.True(t, cfg.NoJournal)

	w := cfg.Wizard()
	assert.Equal(t, "/prank.mp4", w.MediaSource)
	assert.Equal(t, 50*time.Millisecond, w.DrawDelay)
	assert.Equal(t, 5, w.MaxAttempts)

	m := cfg.Media()
	assert.Equal(t, "vlc", m.Command)
	assert.Equal(t, []string{"--intf", "dummy"}, m.Args)
	assert.Equal(t, media.DefaultConfig().MuteArgs, m.MuteArgs)
	assert.Equal(t, 2*time.Second, m.SettleWindow)
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("REWARD_DRAW_DELAY", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"negative delay", func(c *Config) { c.DrawDelay = -time.Second }},
		{"empty media", func(c *Config) { c.MediaSource = "" }},
		{"empty player", func(c *Config) { c.Player = "" }},
		{"negative settle", func(c *Config) { c.PlayerSettle = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
