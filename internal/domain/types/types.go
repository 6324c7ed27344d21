// Package types contains common types used across the application
package types

// RunSummary is the API-facing digest of a completed bracket run.
type RunSummary struct {
	RunID       string `json:"run_id"`
	Seed        string `json:"seed"`
	BracketSize int    `json:"bracket_size"`
	Placement   int    `json:"placement"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}
