package main

import (
	"progression-engine/internal/config"
	"progression-engine/internal/database"
	"progression-engine/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|redo|reset]",
	Short:     "Run database migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "redo", "reset"},
	RunE: func(cmd *cobra.Command, args []string) error {
		log := consoleLogger(logger.New())

		cfg, err := config.Load(log)
		if err != nil {
			return err
		}
		logger.ApplyLevel(cfg, log)

		db, err := database.Open(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.Migrate(db, args[0], log)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
