// Package model contains domain models passed between layers.
package model

// Attribute and resource bounds used across the simulators.
const (
	// MaxEnergy is the ceiling for the energy resource. Energy only
	// depletes as a result of simulator calls; it never regenerates.
	MaxEnergy = 100

	// MaxInjury is the ceiling of the canonical normalized injury scale.
	MaxInjury = 1.0

	// InjuryPointScale converts tournament-layer injury points (1-10)
	// into the canonical normalized 0-1 scale.
	InjuryPointScale = 10
)

// CompetitorSnapshot is the caller-owned view of a wrestler entering a
// match or bracket run. The simulators treat it as a value: they copy it
// in, and any fatigue or injury accumulated during a run is returned to
// the caller as a new snapshot rather than written through a shared
// pointer.
//
// InjurySeverity is the single canonical injury representation, a
// normalized value in [0, 1]. The tournament layer rolls integer injury
// points on a 1-10 scale; those convert at the boundary via
// AddInjuryPoints (points/10, clamped), so no other scale leaks out.
type CompetitorSnapshot struct {
	Technique    float64 `json:"technique"`
	MatIQ        float64 `json:"mat_iq"`
	Conditioning float64 `json:"conditioning"`
	Strength     float64 `json:"strength"`
	Speed        float64 `json:"speed"`
	Flexibility  float64 `json:"flexibility"`

	Energy         float64 `json:"energy"`          // 0-100, floors at 0
	Health         float64 `json:"health"`          // 0-100
	Stress         float64 `json:"stress"`          // 0-100, lowers composure
	InjurySeverity float64 `json:"injury_severity"` // normalized 0-1

	OverallRating float64 `json:"overall_rating"`

	// PerformanceMult is an optional external modifier multiplying win
	// probability. Zero means unset and is treated as 1.
	PerformanceMult float64 `json:"performance_mult,omitempty"`
}

// Composure derives the 0-100 composure input for the match model from
// accumulated stress.
func (c CompetitorSnapshot) Composure() float64 {
	comp := 100 - c.Stress
	if comp < 0 {
		return 0
	}
	if comp > 100 {
		return 100
	}
	return comp
}

// DrainEnergy lowers energy by amount, flooring at zero, and returns the
// amount actually drained.
func (c *CompetitorSnapshot) DrainEnergy(amount float64) float64 {
	if amount < 0 {
		amount = 0
	}
	if amount > c.Energy {
		amount = c.Energy
	}
	c.Energy -= amount
	return amount
}

// AddInjuryPoints folds tournament-layer injury points (1-10) into the
// canonical normalized severity, clamping at MaxInjury.
func (c *CompetitorSnapshot) AddInjuryPoints(points int) {
	if points <= 0 {
		return
	}
	c.InjurySeverity += float64(points) / InjuryPointScale
	if c.InjurySeverity > MaxInjury {
		c.InjurySeverity = MaxInjury
	}
}

// Style categorizes an opponent's wrestling approach.
type Style int

const (
	StyleUnspecified Style = iota
	StyleGrinder
	StyleScrambler
	StyleDefensive
)

func (s Style) String() string {
	switch s {
	case StyleGrinder:
		return "grinder"
	case StyleScrambler:
		return "scrambler"
	case StyleDefensive:
		return "defensive"
	default:
		return "unspecified"
	}
}

// ParseStyle maps a wire string onto a Style. Unknown strings map to
// StyleUnspecified, which derivation treats as a balanced opponent.
func ParseStyle(s string) Style {
	switch s {
	case "grinder":
		return StyleGrinder
	case "scrambler":
		return StyleScrambler
	case "defensive":
		return StyleDefensive
	default:
		return StyleUnspecified
	}
}

// Opponent describes the other side of a match. Matchup stats
// (Physicality through Escapes) are optional; when zero they are derived
// deterministically from OverallRating and Style, so the same opponent
// always presents the same derived stats.
type Opponent struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	OverallRating float64 `json:"overall_rating"`
	Style         Style   `json:"-"`
	Clutch        float64 `json:"clutch,omitempty"`

	Physicality float64 `json:"physicality,omitempty"`
	TDOffense   float64 `json:"td_offense,omitempty"`
	TDDefense   float64 `json:"td_defense,omitempty"`
	Riding      float64 `json:"riding,omitempty"`
	Escapes     float64 `json:"escapes,omitempty"`

	Rank int `json:"rank,omitempty"`
}

// HasMatchupStats reports whether explicit matchup stats were supplied.
func (o Opponent) HasMatchupStats() bool {
	return o.Physicality != 0 || o.TDOffense != 0 || o.TDDefense != 0 ||
		o.Riding != 0 || o.Escapes != 0
}
