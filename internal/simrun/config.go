package simrun

import "time"

// Config holds configuration for the bracket run exercise
type Config struct {
	BaseURL     string        // Base URL of the service
	NumRuns     int           // Number of bracket runs to submit
	BracketSize int           // Bracket size for generated runs (8 or 16)
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for submitted runs
	LogFile     string        // Log file for exercise output
	Verbose     bool          // Enable verbose logging
}

// RunSubmission is the request payload for a bracket run
type RunSubmission struct {
	RunID       string            `json:"run_id"`
	Seed        string            `json:"seed"`
	BracketSize int               `json:"bracket_size"`
	Player      PlayerPayload     `json:"player"`
	Field       []OpponentPayload `json:"field,omitempty"`
}

// PlayerPayload mirrors the service's competitor schema
type PlayerPayload struct {
	Technique     float64 `json:"technique"`
	MatIQ         float64 `json:"mat_iq"`
	Conditioning  float64 `json:"conditioning"`
	Strength      float64 `json:"strength"`
	Speed         float64 `json:"speed"`
	Flexibility   float64 `json:"flexibility"`
	Energy        float64 `json:"energy"`
	Health        float64 `json:"health"`
	OverallRating float64 `json:"overall_rating"`
}

// OpponentPayload mirrors the service's opponent schema
type OpponentPayload struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	OverallRating float64 `json:"overall_rating"`
	Style         string  `json:"style"`
}

// AckResponse is the response from run submission
type AckResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// RunResult is the completed record fetched back from the service
type RunResult struct {
	RunID       string `json:"run_id"`
	Seed        string `json:"seed"`
	BracketSize int    `json:"bracket_size"`
	Result      struct {
		Placement int `json:"placement"`
		Matches   []struct {
			Round  string `json:"round"`
			Won    bool   `json:"won"`
			Method string `json:"method"`
		} `json:"matches"`
	} `json:"result"`
}

// Stats holds exercise statistics
type Stats struct {
	RunsGenerated  int
	RunsSubmitted  int
	RunsSuccessful int
	RunsFailed     int
	RunsRetrieved  int
	RunsVerified   int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
