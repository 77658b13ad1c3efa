package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/reward/internal/app"
	"github.com/abhisek/reward/internal/journal"
	"github.com/abhisek/reward/internal/logging"
	"github.com/abhisek/reward/internal/media"
	"github.com/abhisek/reward/internal/store"
	"github.com/abhisek/reward/internal/wizard"
)

// runApp builds the flow and its dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = log.Sync() }()

	var runs store.RunEventRepo
	if !cfg.NoJournal {
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			// The wizard works without a journal.
			fmt.Fprintln(os.Stderr, "warning: run journal unavailable:", err)
			log.Warn("run journal unavailable", zap.String("path", dbPath), zap.Error(err))
		} else {
			defer st.Close()
			runs = st.RunEventRepo()
		}
	}

	player := media.WithLogging(media.NewExecPlayer(cfg.Media()), runs, log)

	flow, err := wizard.New(cfg.Wizard(), player, wizard.WithLogger(log.Named("wizard")))
	if err != nil {
		return err
	}
	if runs != nil {
		w := journal.NewWriter(runs, log, journal.DefaultQueueSize)
		defer w.Close()
		flow.Subscribe(w.Listener())
	}

	log.Info("starting wizard",
		zap.String("media", cfg.MediaSource),
		zap.String("player", cfg.Player),
		zap.Duration("draw_delay", cfg.DrawDelay),
		zap.Int("max_attempts", cfg.MaxAttempts),
		zap.Bool("journal", runs != nil),
	)

	return app.Run(app.Options{Flow: flow, Runs: runs})
}
