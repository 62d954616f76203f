package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"progression-engine/internal/catalog"
	"progression-engine/internal/config"
	"progression-engine/internal/domain"
	fxmodules "progression-engine/internal/fx"
	"progression-engine/internal/repository"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:           "progressionctl",
	Short:         "Operate the progression engine database and catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dbPath != "" {
			return os.Setenv("DB_PATH", dbPath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides DB_PATH)")
}

// app holds what the commands need from the storage graph.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	catalog  *catalog.Catalog
	quests   *repository.QuestRepository
	rewards  *repository.RewardRepository
	profiles *repository.ProfileRepository
	clock    domain.Clock
	logger   zerolog.Logger
}

// newApp builds the storage graph, migrating the database on the way.
func newApp() (*app, error) {
	var a app
	fxApp := fx.New(
		fxmodules.Storage,
		fx.NopLogger,
		fx.Decorate(consoleLogger),
		fx.Populate(&a.cfg, &a.db, &a.catalog, &a.quests, &a.rewards, &a.profiles, &a.clock, &a.logger),
	)
	if err := fxApp.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	return &a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("error closing database connection")
	}
}

// consoleLogger keeps stdout for command output.
func consoleLogger(logger zerolog.Logger) zerolog.Logger {
	return logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
