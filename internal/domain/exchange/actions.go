package exchange

import (
	"github.com/Tencide/matsim/internal/domain/matchsim"
	"github.com/Tencide/matsim/internal/domain/model"
)

// Position is the wrestling position the player holds entering an
// exchange.
type Position int

const (
	PositionNeutral Position = iota
	PositionTop
	PositionBottom
)

func (p Position) String() string {
	switch p {
	case PositionTop:
		return "top"
	case PositionBottom:
		return "bottom"
	default:
		return "neutral"
	}
}

// OffenseWeights are the attribute weights an action's offense score is
// computed from, over the player's six attributes.
type OffenseWeights struct {
	Technique    float64
	MatIQ        float64
	Conditioning float64
	Strength     float64
	Speed        float64
	Flexibility  float64
}

// Score is the weighted attribute sum for the player.
func (w OffenseWeights) Score(c model.CompetitorSnapshot) float64 {
	return w.Technique*c.Technique + w.MatIQ*c.MatIQ + w.Conditioning*c.Conditioning +
		w.Strength*c.Strength + w.Speed*c.Speed + w.Flexibility*c.Flexibility
}

// DefenseWeights are the weights the opponent's matchup stats defend an
// action with.
type DefenseWeights struct {
	Physicality float64
	TDOffense   float64
	TDDefense   float64
	Riding      float64
	Escapes     float64
}

// Score is the weighted stat sum for the opponent.
func (w DefenseWeights) Score(s matchsim.MatchupStats) float64 {
	return w.Physicality*s.Physicality + w.TDOffense*s.TDOffense +
		w.TDDefense*s.TDDefense + w.Riding*s.Riding + w.Escapes*s.Escapes
}

// Outcome is the scripted consequence of an action succeeding or
// failing: points exchanged, the player's resulting position, and the
// momentum swing.
type Outcome struct {
	PointsFor     int
	PointsAgainst int
	NextPosition  Position
	MomentumDelta float64
	Note          string
}

// Action is one entry in the position-keyed catalog.
type Action struct {
	Key      string
	Label    string
	Position Position

	StaminaCost        float64 // energy cost, paid win or lose
	FailureStaminaCost float64 // extra cost on failure
	InjuryRisk         float64 // base per-exchange injury probability
	PinCapable         bool
	Hesitation         bool

	Offense OffenseWeights
	Defense DefenseWeights

	Success Outcome
	Failure Outcome
}

// HesitateKey is the universal fallback action present in every
// position set. It is forced when the caller's decision timer expires.
const HesitateKey = "hesitate"

// catalog is the legal-action set per position, built once so the state
// machine's options are explicit and enumerable.
var catalog = buildCatalog()

func buildCatalog() map[Position][]Action {
	hesitate := func(pos Position, failure Outcome) Action {
		return Action{
			Key:         HesitateKey,
			Label:       "Hesitate",
			Position:    pos,
			StaminaCost: 2,
			InjuryRisk:  0.01,
			Hesitation:  true,
			Success:     Outcome{MomentumDelta: -1, Note: "nothing happens"},
			Failure:     failure,
		}
	}

	neutral := []Action{
		{
			Key:         "double_leg",
			Label:       "Double-Leg Shot",
			Position:    PositionNeutral,
			StaminaCost: 8, FailureStaminaCost: 4,
			InjuryRisk: 0.02,
			Offense:    OffenseWeights{Technique: 0.45, Speed: 0.35, Strength: 0.2},
			Defense:    DefenseWeights{TDDefense: 0.7, Physicality: 0.3},
			Success:    Outcome{PointsFor: 2, NextPosition: PositionTop, MomentumDelta: 4, Note: "takedown"},
			Failure:    Outcome{PointsAgainst: 2, NextPosition: PositionBottom, MomentumDelta: -4, Note: "sprawled and countered"},
		},
		{
			Key:         "single_leg",
			Label:       "Single-Leg Shot",
			Position:    PositionNeutral,
			StaminaCost: 6, FailureStaminaCost: 2,
			InjuryRisk: 0.015,
			Offense:    OffenseWeights{Technique: 0.5, Speed: 0.3, MatIQ: 0.2},
			Defense:    DefenseWeights{TDDefense: 0.8, Escapes: 0.2},
			Success:    Outcome{PointsFor: 2, NextPosition: PositionTop, MomentumDelta: 3, Note: "takedown"},
			Failure:    Outcome{NextPosition: PositionNeutral, MomentumDelta: -2, Note: "shot defended"},
		},
		{
			Key:         "headlock_throw",
			Label:       "Headlock Throw",
			Position:    PositionNeutral,
			StaminaCost: 10, FailureStaminaCost: 4,
			InjuryRisk: 0.04,
			PinCapable: true,
			Offense:    OffenseWeights{Strength: 0.5, Technique: 0.3, Flexibility: 0.2},
			Defense:    DefenseWeights{Physicality: 0.5, TDDefense: 0.5},
			Success:    Outcome{PointsFor: 4, NextPosition: PositionTop, MomentumDelta: 6, Note: "throw to near-fall"},
			Failure:    Outcome{PointsAgainst: 2, NextPosition: PositionBottom, MomentumDelta: -5, Note: "throw countered"},
		},
		hesitate(PositionNeutral, Outcome{PointsAgainst: 2, NextPosition: PositionBottom, MomentumDelta: -3, Note: "shot on while flat-footed"}),
	}

	top := []Action{
		{
			Key:         "ride_out",
			Label:       "Ride Out",
			Position:    PositionTop,
			StaminaCost: 4, FailureStaminaCost: 2,
			InjuryRisk: 0.01,
			Offense:    OffenseWeights{Strength: 0.4, Conditioning: 0.3, MatIQ: 0.3},
			Defense:    DefenseWeights{Escapes: 0.8, Physicality: 0.2},
			Success:    Outcome{NextPosition: PositionTop, MomentumDelta: 2, Note: "ride maintained"},
			Failure:    Outcome{PointsAgainst: 1, NextPosition: PositionNeutral, MomentumDelta: -3, Note: "escape conceded"},
		},
		{
			Key:         "tilt",
			Label:       "Tilt Turn",
			Position:    PositionTop,
			StaminaCost: 7, FailureStaminaCost: 3,
			InjuryRisk: 0.02,
			PinCapable: true,
			Offense:    OffenseWeights{Technique: 0.5, MatIQ: 0.3, Strength: 0.2},
			Defense:    DefenseWeights{Escapes: 0.5, Physicality: 0.3, Riding: 0.2},
			Success:    Outcome{PointsFor: 2, NextPosition: PositionTop, MomentumDelta: 4, Note: "near-fall points"},
			Failure:    Outcome{PointsAgainst: 1, NextPosition: PositionNeutral, MomentumDelta: -3, Note: "opponent scrambles free"},
		},
		hesitate(PositionTop, Outcome{PointsAgainst: 1, NextPosition: PositionNeutral, MomentumDelta: -2, Note: "stall warning, escape conceded"}),
	}

	bottom := []Action{
		{
			Key:         "stand_up",
			Label:       "Stand-Up Escape",
			Position:    PositionBottom,
			StaminaCost: 6, FailureStaminaCost: 3,
			InjuryRisk: 0.015,
			Offense:    OffenseWeights{Speed: 0.4, Strength: 0.3, Conditioning: 0.3},
			Defense:    DefenseWeights{Riding: 0.8, Physicality: 0.2},
			Success:    Outcome{PointsFor: 1, NextPosition: PositionNeutral, MomentumDelta: 3, Note: "escape"},
			Failure:    Outcome{NextPosition: PositionBottom, MomentumDelta: -3, Note: "ridden out"},
		},
		{
			Key:         "switch",
			Label:       "Switch Reversal",
			Position:    PositionBottom,
			StaminaCost: 8, FailureStaminaCost: 3,
			InjuryRisk: 0.02,
			Offense:    OffenseWeights{Technique: 0.4, Flexibility: 0.3, MatIQ: 0.3},
			Defense:    DefenseWeights{Riding: 0.6, Physicality: 0.4},
			Success:    Outcome{PointsFor: 2, NextPosition: PositionTop, MomentumDelta: 5, Note: "reversal"},
			Failure:    Outcome{PointsAgainst: 2, NextPosition: PositionBottom, MomentumDelta: -4, Note: "caught in a tilt"},
		},
		{
			Key:         "granby_roll",
			Label:       "Granby Roll",
			Position:    PositionBottom,
			StaminaCost: 7, FailureStaminaCost: 3,
			InjuryRisk: 0.03,
			Offense:    OffenseWeights{Flexibility: 0.45, Speed: 0.35, Technique: 0.2},
			Defense:    DefenseWeights{Riding: 0.5, TDDefense: 0.2, Physicality: 0.3},
			Success:    Outcome{PointsFor: 1, NextPosition: PositionNeutral, MomentumDelta: 3, Note: "rolled free"},
			Failure:    Outcome{PointsAgainst: 2, NextPosition: PositionBottom, MomentumDelta: -4, Note: "roll covered for near-fall"},
		},
		hesitate(PositionBottom, Outcome{PointsAgainst: 2, NextPosition: PositionBottom, MomentumDelta: -3, Note: "broken down and turned"}),
	}

	return map[Position][]Action{
		PositionNeutral: neutral,
		PositionTop:     top,
		PositionBottom:  bottom,
	}
}

// ActionsFor returns the legal actions for a position. The returned
// slice is shared; callers must not modify it.
func ActionsFor(pos Position) []Action {
	return catalog[pos]
}

// findAction looks up an action by key within a position set.
func findAction(pos Position, key string) (Action, bool) {
	for _, a := range catalog[pos] {
		if a.Key == key {
			return a, true
		}
	}
	return Action{}, false
}
