// Package cli is the qqtime command tree. Every command opens the
// configured database, runs one bank operation and closes it again, so the
// CLI and a running server can share a database file.
package cli

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/config"
	"github.com/tomwugdgz/qqtime/internal/database"
	"github.com/tomwugdgz/qqtime/internal/logging"
	"github.com/tomwugdgz/qqtime/internal/metrics"
	"github.com/tomwugdgz/qqtime/internal/store"
)

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "qqtime",
		Short: "Household time bank",
		Long: `qqtime keeps a child's time bank: minutes are earned through study,
exercise and chores, spent on free play or pocket money, and deducted
for rule breaks. The balance is capped and never goes below zero.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a TOML config file (default qqtime.toml or $QQTIME_CONFIG)")
	root.PersistentFlags().String("db", "", "SQLite database path (overrides config)")

	root.AddCommand(
		newServeCmd(),
		newBalanceCmd(),
		newHistoryCmd(),
		newEarnCmd(),
		newPlayCmd(),
		newCashCmd(),
		newPenaltyCmd(),
		newCatalogCmd(),
		newSettingsCmd(),
		newTrendCmd(),
		newCalendarCmd(),
		newExportCmd(),
		newBackupCmd(),
		newImportCmd(),
		newClearCmd(),
	)
	return root
}

// Execute runs the CLI against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// app is what a command needs once config and storage are open.
type app struct {
	cfg    config.Config
	db     *sql.DB
	bank   *bank.Bank
	logger *slog.Logger
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Database.Path = db
	}
	return cfg, nil
}

// openApp loads config, sets up logging and opens the bank. One-shot
// commands log warnings and up only, so their stdout stays readable.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if level == "" || level == "info" {
		level = "warn"
	}
	logger := logging.New(os.Stderr, level, cfg.Log.Format)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := store.NewBankStore(db).WithDefaultAgeGroup(cfg.Bank.AgeGroup)
	b, err := bank.New(repo, bank.Options{
		Limits:   cfg.Limits,
		Location: loc,
		Metrics:  metrics.Discard,
		Logger:   logger.With("component", "bank"),
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &app{cfg: cfg, db: db, bank: b, logger: logger}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// withApp wraps a RunE body with openApp/Close.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}

// confirmHint turns a confirmation request into an error telling the user
// how to proceed.
func confirmHint(err error) error {
	if ce, ok := bank.NeedsConfirmation(err); ok {
		return fmt.Errorf("%s\nre-run with --yes to proceed", ce.Prompt)
	}
	return err
}
