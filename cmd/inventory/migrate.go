package main

import (
	"github.com/fekuna/shelter-inventory-service/config"
	"github.com/fekuna/shelter-inventory-service/internal/database/postgres"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadEnv()
			appLogger := newLogger(cfg)
			defer appLogger.Sync()

			a := &app{cfg: cfg, logger: appLogger}
			db, err := a.connectPostgres()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(db); err != nil {
				appLogger.Error("migration failed", zap.Error(err))
				return err
			}
			appLogger.Info("migrations applied")
			return nil
		},
	}
}
