package model

import "time"

// Method is how a match was decided.
type Method int

const (
	MethodDec Method = iota
	MethodMajor
	MethodTech
	MethodFall
)

func (m Method) String() string {
	switch m {
	case MethodMajor:
		return "Major"
	case MethodTech:
		return "Tech"
	case MethodFall:
		return "Fall"
	default:
		return "Dec"
	}
}

// MatchResult is the outcome of a single simulated match from the
// player's perspective.
type MatchResult struct {
	Won       bool    `json:"won"`
	Method    Method  `json:"-"`
	Intensity float64 `json:"intensity"` // [0,1], drives energy drain

	InjuryOccurred bool `json:"injury_occurred"`
	// InjuryPoints is the tournament-layer severity roll, 1-10, set only
	// when InjuryOccurred. Convert with CompetitorSnapshot.AddInjuryPoints.
	InjuryPoints int `json:"injury_points,omitempty"`
}

// BracketMatchEntry is one logged round of a bracket run. Entries are
// appended in chronological order; that order is the contract the
// validators check.
type BracketMatchEntry struct {
	Round          string  `json:"round"`
	OpponentID     string  `json:"opponent_id"`
	OpponentName   string  `json:"opponent_name"`
	OpponentRating float64 `json:"opponent_rating"`
	OpponentRank   int     `json:"opponent_rank,omitempty"`
	Won            bool    `json:"won"`
	Method         Method  `json:"-"`
	MethodName     string  `json:"method"`
}

// DoubleElimResult is the outcome of a full double-elimination run.
// Placement is 1..8 or 1..16 depending on bracket size.
type DoubleElimResult struct {
	Placement int                 `json:"placement"`
	Matches   []BracketMatchEntry `json:"matches"`
}

// Losses counts losses in the match log.
func (r DoubleElimResult) Losses() int {
	n := 0
	for _, m := range r.Matches {
		if !m.Won {
			n++
		}
	}
	return n
}

// BracketRunRequest is the job payload for an asynchronous bracket run.
// Field supplies the opponent pool the provider draws from, in seeding
// order.
type BracketRunRequest struct {
	RunID       string             `json:"run_id"`
	Seed        string             `json:"seed"`
	BracketSize int                `json:"bracket_size"`
	Player      CompetitorSnapshot `json:"player"`
	Field       []Opponent         `json:"field"`
	SubmittedAt time.Time          `json:"submitted_at"`
}

// BracketRunRecord is a completed run as held by the result store.
type BracketRunRecord struct {
	RunID       string             `json:"run_id"`
	Seed        string             `json:"seed"`
	BracketSize int                `json:"bracket_size"`
	Result      DoubleElimResult   `json:"result"`
	FinalState  CompetitorSnapshot `json:"final_state"`
	SubmittedAt time.Time          `json:"submitted_at"`
	CompletedAt time.Time          `json:"completed_at"`
}
