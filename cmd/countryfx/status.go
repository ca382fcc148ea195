package main

import (
	"context"
	"encoding/json"
	"fmt"

	"countryfx/internal/adapters/summary"
	"countryfx/internal/app"

	"github.com/spf13/cobra"
)

type statusJSON struct {
	TotalCountries  int            `json:"total_countries"`
	LastRefreshedAt *string        `json:"last_refreshed_at"`
	TopCountries    []countryEntry `json:"top_countries"`
}

type countryEntry struct {
	Name         string  `json:"name"`
	EstimatedGDP *string `json:"estimated_gdp"`
}

func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last refresh and the countries with the highest estimated GDP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			report, err := app.Status(context.Background(), cfg)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				out := statusJSON{TotalCountries: report.TotalCountries, TopCountries: make([]countryEntry, 0, len(report.TopCountries))}
				if report.LastRefreshedAt != nil {
					s := report.LastRefreshedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
					out.LastRefreshedAt = &s
				}
				for _, c := range report.TopCountries {
					e := countryEntry{Name: c.Name}
					if c.EstimatedGDP.Valid {
						s := c.EstimatedGDP.Decimal.StringFixed(2)
						e.EstimatedGDP = &s
					}
					out.TopCountries = append(out.TopCountries, e)
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			case "table":
				return summary.Render(cmd.OutOrStdout(), report, summary.FormatText)
			case "markdown":
				return summary.Render(cmd.OutOrStdout(), report, summary.FormatMarkdown)
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, markdown, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, markdown, json)")
	return cmd
}
