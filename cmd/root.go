package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/reward/internal/config"
	"github.com/abhisek/reward/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "reward",
	Short: "Terminal reward-draw wizard",
	Long:  "reward walks you through entering your details, running the luck draw, and revealing your reward.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite journal file (overrides REWARD_DB env var)")
	pf.String("log-file", "", "Write a JSON log to this file (overrides REWARD_LOG env var)")

	f := rootCmd.Flags()
	f.Bool("no-journal", false, "Do not record runs in the journal")
	f.String("media", "", "Reveal media file (overrides REWARD_MEDIA env var)")
	f.String("player", "", "Media player command (overrides REWARD_PLAYER env var)")
	f.Duration("draw-delay", 0, "Simulated draw latency (overrides REWARD_DRAW_DELAY env var)")
	f.Int("max-attempts", 0, "Draws before the final verification (overrides REWARD_MAX_ATTEMPTS env var)")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if flags.Changed("no-journal") {
		cfg.NoJournal, _ = flags.GetBool("no-journal")
	}
	if flags.Changed("media") {
		cfg.MediaSource, _ = flags.GetString("media")
	}
	if flags.Changed("player") {
		cfg.Player, _ = flags.GetString("player")
	}
	if flags.Changed("draw-delay") {
		cfg.DrawDelay, _ = flags.GetDuration("draw-delay")
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts, _ = flags.GetInt("max-attempts")
	}
	return cfg, nil
}

// resolveDBPath returns the journal path using --db or REWARD_DB,
// then the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads the configuration and opens the journal.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
