package domain

import "time"

// RefreshMetadata is the singleton row describing the last committed refresh.
type RefreshMetadata struct {
	TotalCountries  int        `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// RefreshSummary is what a run reports back. Processed always equals
// Successful + Failed; Skipped counts records dropped by the transformer.
type RefreshSummary struct {
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// SummaryReport feeds the post-commit summary artifact.
type SummaryReport struct {
	TotalCountries  int
	TopCountries    []CountryGDP
	LastRefreshedAt *time.Time
}
