package main

import (
	"countryfx/internal/app"
	"countryfx/internal/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "countryfx",
	Short:         "countryfx - country and exchange-rate refresh service",
	Long:          "countryfx ingests country data and exchange rates, estimates GDP and keeps one record per country.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newStatusCmd())
}

// loadConfig reads config and applies the log level for one-shot commands.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Init()
	if err != nil {
		return nil, err
	}
	app.SetupLogging(cfg.Logging.Level)
	return cfg, nil
}
