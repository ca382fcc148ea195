package main

import (
	"countryfx/internal/app"
	"countryfx/internal/config"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var withScheduler bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (and the refresh scheduler when enabled)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Init()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("scheduler") {
				cfg.Refresh.SchedulerEnabled = withScheduler
			}
			return app.Run(cfg)
		},
	}

	cmd.Flags().BoolVar(&withScheduler, "scheduler", false, "Run refreshes periodically (overrides refresh.scheduler_enabled)")
	return cmd
}
