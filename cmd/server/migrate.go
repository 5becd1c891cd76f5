package main

import (
	"github.com/befriend-app/befriend-backend/internal/config"
	"github.com/befriend-app/befriend-backend/internal/infrastructure/database"
	"github.com/befriend-app/befriend-backend/internal/repository/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending postgres migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.Store != config.StoreBackendPostgres {
			log.Info("nothing to migrate", zap.String("store", cfg.Store))
			return nil
		}

		db, err := database.NewPostgresDB(cmd.Context(), &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := postgres.Migrate(cmd.Context(), db)
		if err != nil {
			log.Error("migration failed", zap.Strings("applied", applied), zap.Error(err))
			return err
		}

		if len(applied) == 0 {
			log.Info("schema is up to date")
			return nil
		}
		log.Info("migrations applied", zap.Strings("applied", applied))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
