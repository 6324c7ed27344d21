// Package matchsim wraps the elite match model with wrestling-specific
// matchup derivation and post-match energy and injury effects. It is the
// unit of work the bracket engine repeats across a tournament run.
package matchsim

import (
	"github.com/Tencide/matsim/internal/domain/elite"
	"github.com/Tencide/matsim/internal/domain/model"
	"github.com/Tencide/matsim/internal/domain/rng"
	"github.com/Tencide/matsim/pkg/logger"
	"github.com/Tencide/matsim/pkg/metrics"
)

// Matchup-term weights and derivation bounds.
const (
	tdOffenseWeight  = 0.08
	tdDefenseWeight  = 0.06
	ridingWeight     = 0.05
	escapesWeight    = 0.05
	derivedStatFloor = 40.0
	derivedStatCap   = 95.0

	// Opponent defaults when the caller supplies no state for them.
	defaultOpponentComposure = 80.0
	clutchFormFactor         = 0.04

	// Post-match effect constants.
	baseIntensity        = 0.35
	closenessIntensity   = 0.40
	lossIntensity        = 0.15
	intensityJitter      = 0.20
	drainScale           = 12.0
	conditioningRelief   = 0.6
	baseInjuryChance     = 0.08
	lowEnergyInjuryTerm  = 0.12
	physicalityTermScale = 0.0015
	toughnessRelief      = 0.10
	existingInjuryTerm   = 0.10
	minInjuryChance      = 0.02
	maxInjuryChance      = 0.45
	lowEnergyThreshold   = 30.0
	maxInjuryPoints      = 10

	// Loss-side method resolution draws (wins keep the elite method).
	lossFallChance = 0.30
	lossTechChance = 0.50
	majorUpgrade   = 0.25
)

// MatchupStats are the wrestling-specific terms a matchup is computed
// from, on the conventional 0-100 scale.
type MatchupStats struct {
	Physicality float64
	TDOffense   float64
	TDDefense   float64
	Riding      float64
	Escapes     float64
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithLogger sets the logger passed down to the elite model for upset
// diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		s.logger = l
	}
}

// Simulator resolves single tournament matches. It is stateless; all
// mutable match state lives in the caller-owned snapshot and the rng.
type Simulator struct {
	logger logger.Logger
	model  *elite.Model
}

// New creates a Simulator with configuration options.
func New(opts ...Option) *Simulator {
	s := &Simulator{}
	for _, opt := range opts {
		opt(s)
	}
	modelOpts := []elite.Option{}
	if s.logger != nil {
		modelOpts = append(modelOpts, elite.WithLogger(s.logger))
	}
	s.model = elite.New(modelOpts...)
	return s
}

// DeriveOpponentStats returns the opponent's matchup stats, using the
// explicit ones when present and otherwise deriving them from rating and
// style. Derivation is pure: the same opponent always yields the same
// stats.
func DeriveOpponentStats(o model.Opponent) MatchupStats {
	if o.HasMatchupStats() {
		return MatchupStats{
			Physicality: o.Physicality,
			TDOffense:   o.TDOffense,
			TDDefense:   o.TDDefense,
			Riding:      o.Riding,
			Escapes:     o.Escapes,
		}
	}

	base := o.OverallRating
	var s MatchupStats
	switch o.Style {
	case model.StyleGrinder:
		s = MatchupStats{
			Physicality: base + 8,
			TDOffense:   base - 2,
			TDDefense:   base + 4,
			Riding:      base + 6,
			Escapes:     base - 4,
		}
	case model.StyleScrambler:
		s = MatchupStats{
			Physicality: base - 2,
			TDOffense:   base + 6,
			TDDefense:   base,
			Riding:      base - 4,
			Escapes:     base + 6,
		}
	case model.StyleDefensive:
		s = MatchupStats{
			Physicality: base,
			TDOffense:   base - 6,
			TDDefense:   base + 8,
			Riding:      base + 2,
			Escapes:     base + 2,
		}
	default:
		s = MatchupStats{
			Physicality: base,
			TDOffense:   base,
			TDDefense:   base,
			Riding:      base,
			Escapes:     base,
		}
	}

	s.Physicality = clampStat(s.Physicality)
	s.TDOffense = clampStat(s.TDOffense)
	s.TDDefense = clampStat(s.TDDefense)
	s.Riding = clampStat(s.Riding)
	s.Escapes = clampStat(s.Escapes)
	return s
}

// PlayerStats derives the player's matchup stats from attribute blends.
func PlayerStats(p model.CompetitorSnapshot) MatchupStats {
	return MatchupStats{
		Physicality: 0.6*p.Strength + 0.4*p.Conditioning,
		TDOffense:   0.5*p.Technique + 0.3*p.Speed + 0.2*p.Strength,
		TDDefense:   0.4*p.Technique + 0.3*p.MatIQ + 0.3*p.Strength,
		Riding:      0.5*p.Strength + 0.3*p.Technique + 0.2*p.Conditioning,
		Escapes:     0.4*p.Speed + 0.3*p.Flexibility + 0.3*p.Technique,
	}
}

// MatchupTerm computes the additive form modifier the player carries
// into the elite model for this pairing.
func MatchupTerm(player, opp MatchupStats) float64 {
	return tdOffenseWeight*(player.TDOffense-opp.TDDefense) +
		tdDefenseWeight*(player.TDDefense-opp.TDOffense) +
		ridingWeight*(player.Riding-opp.Escapes) +
		escapesWeight*(player.Escapes-opp.Riding)
}

// EffectiveRating is a diagnostic blend of skill, physical tools, and
// composure, scaled by remaining energy and penalized by injury. It is
// surfaced for flavor and debugging; win probability stays with the
// elite model.
func EffectiveRating(p model.CompetitorSnapshot) float64 {
	skill := 0.5*p.Technique + 0.5*p.MatIQ
	physical := (p.Conditioning + p.Strength + p.Speed) / 3
	blend := 0.45*skill + 0.35*physical + 0.2*p.Composure()
	// Injury penalty preserves the historical 0-10 point magnitude
	// (2.5 per point) on the normalized scale.
	return blend*(p.Energy/100) - p.InjurySeverity*model.InjuryPointScale*2.5
}

// SimulateMatch resolves one tournament match. The snapshot is taken by
// value and never mutated; energy drain and injury accumulation are
// applied by the caller from the returned result, which keeps fatigue
// threading explicit across a bracket run.
func (s *Simulator) SimulateMatch(player model.CompetitorSnapshot, opp model.Opponent, src *rng.Source) model.MatchResult {
	oppStats := DeriveOpponentStats(opp)
	term := MatchupTerm(PlayerStats(player), oppStats)

	mu := elite.Matchup{
		A: elite.Side{
			Name:            "player",
			BaseRating:      player.OverallRating,
			Energy:          player.Energy,
			Injury:          player.InjurySeverity,
			Composure:       player.Composure(),
			FormMod:         term,
			PerformanceMult: player.PerformanceMult,
		},
		B: elite.Side{
			Name:       opp.Name,
			BaseRating: opp.OverallRating,
			Energy:     model.MaxEnergy,
			Injury:     0,
			Composure:  defaultOpponentComposure,
			FormMod:    (opp.Clutch - 50) * clutchFormFactor,
		},
	}
	if opp.Clutch == 0 {
		mu.B.FormMod = 0
	}

	eres := s.model.Simulate(mu, src)

	res := model.MatchResult{
		Won:    eres.Won,
		Method: methodFor(eres, src),
	}
	res.Intensity = rollIntensity(eres, src)
	res.InjuryOccurred, res.InjuryPoints = rollInjury(player, oppStats, src)

	metrics.RecordMatchSimulated(res.Won)
	if res.InjuryOccurred {
		metrics.RecordInjury()
	}
	return res
}

// ApplyEnergyDrain computes the post-match drain for the given intensity
// and returns the updated snapshot together with the energy actually
// removed. Drain is floored at the player's remaining energy.
func ApplyEnergyDrain(player model.CompetitorSnapshot, intensity float64) (model.CompetitorSnapshot, float64) {
	drain := intensity * (1.2 - conditioningRelief*player.Conditioning/100) * drainScale
	delta := player.DrainEnergy(drain)
	return player, delta
}

// methodFor settles the final match method. Wins keep the elite layer's
// method; losses, logged as plain decisions there, get the finer
// resolution here. Close decisions on either side can upgrade to majors.
func methodFor(eres elite.Result, src *rng.Source) model.Method {
	var m model.Method
	if eres.Won {
		switch eres.Method {
		case elite.MethodFall:
			m = model.MethodFall
		case elite.MethodTech:
			m = model.MethodTech
		default:
			m = model.MethodDec
		}
	} else {
		switch {
		case src.Chance(lossFallChance):
			m = model.MethodFall
		case src.Chance(lossTechChance):
			m = model.MethodTech
		default:
			m = model.MethodDec
		}
	}
	if m == model.MethodDec && src.Chance(majorUpgrade) {
		m = model.MethodMajor
	}
	return m
}

// rollIntensity maps result closeness onto the energy-drain driver.
// Closer matches and losses run hotter; jitter is bounded so intensity
// stays in [0, 1].
func rollIntensity(eres elite.Result, src *rng.Source) float64 {
	closeness := 1 - abs(2*eres.Probability-1)
	intensity := baseIntensity + closenessIntensity*closeness
	if !eres.Won {
		intensity += lossIntensity
	}
	intensity += src.Float64()*intensityJitter - intensityJitter/2
	return clamp01(intensity)
}

// rollInjury decides whether the match produced an injury and how many
// severity points (1-10) it carries.
func rollInjury(player model.CompetitorSnapshot, opp MatchupStats, src *rng.Source) (bool, int) {
	p := baseInjuryChance
	p += lowEnergyInjuryTerm * (1 - player.Energy/100)
	p += physicalityTermScale * (opp.Physicality - 50)
	p -= toughnessRelief * (0.6*player.Health + 0.4*player.Conditioning) / 100
	p += existingInjuryTerm * player.InjurySeverity
	if p < minInjuryChance {
		p = minInjuryChance
	}
	if p > maxInjuryChance {
		p = maxInjuryChance
	}

	if !src.Chance(p) {
		return false, 0
	}

	points := 1 + int(src.Float64()*5)
	if player.Energy < lowEnergyThreshold {
		points++
	}
	if points < 1 {
		points = 1
	}
	if points > maxInjuryPoints {
		points = maxInjuryPoints
	}
	return true, points
}

func clampStat(v float64) float64 {
	if v < derivedStatFloor {
		return derivedStatFloor
	}
	if v > derivedStatCap {
		return derivedStatCap
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
