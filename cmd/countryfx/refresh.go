package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"countryfx/internal/app"

	"github.com/spf13/cobra"
)

func newRefreshCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh and print the counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.Refresh.BatchSize = batchSize
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := app.RefreshOnce(ctx, cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "processed=%d successful=%d failed=%d skipped=%d\n",
				summary.Processed, summary.Successful, summary.Failed, summary.Skipped)
			return err
		},
	}

	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 100, "Rows per upsert statement")
	return cmd
}
