package main

import (
	"github.com/fekuna/shelter-inventory-service/config"
	"github.com/fekuna/shelter-inventory-service/internal/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Shelter inventory ledger and procurement service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newAuditCmd(),
		newExportStockCmd(),
		newRecordCmd(),
		newCreateItemCmd(),
		newOpenLotCmd(),
		newOnTheWayCmd(),
		newCancelOrderCmd(),
	)
	return root
}

func newLogger(cfg *config.Config) logger.ZapLogger {
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	return logger.NewZapLogger(logConfig)
}
