// Package elite implements the abstract win/lose match model between two
// rated competitors. It is the probability core every other simulator
// leans on: the tournament layer feeds it matchup-adjusted form
// modifiers, and the exchange resolver falls back to it on a tied score.
package elite

import (
	"context"
	"math"

	"github.com/Tencide/matsim/internal/domain/rng"
	"github.com/Tencide/matsim/pkg/logger"
	"github.com/Tencide/matsim/pkg/metrics"
)

// Calibration constants. These are tuned as a set; changing one in
// isolation shifts the whole probability surface.
const (
	fatigueMax      = 26.0
	fatigueExponent = 2.3
	injuryMax       = 32.0
	baseSigma       = 3.6
	noiseCap        = 7.0
	logisticScale   = 11.5

	compromisedEnergy = 30.0
	compromisedInjury = 0.4

	multClampLo = 0.02
	multClampHi = 0.98

	fallChance = 0.30
	techChance = 0.50 // of the non-fall remainder

	upsetDiagnosticGap = 15.0

	defaultRivalryJitter = 2.5
)

// Side holds one competitor's inputs to the match model.
type Side struct {
	Name       string
	BaseRating float64
	Energy     float64 // 0-100
	Injury     float64 // normalized 0-1
	Composure  float64 // 0-100
	FormMod    float64 // additive situational modifier
	StyleMod   float64 // additive style modifier

	// PerformanceMult optionally multiplies win probability.
	// Zero means unset.
	PerformanceMult float64
}

// Matchup pairs two sides. Rivalry widens per-side noise with extra
// symmetric uniform jitter.
type Matchup struct {
	A       Side
	B       Side
	Rivalry bool
}

// Result is the outcome from side A's perspective, with the diagnostic
// fields consumers surface when the model acted as a tiebreak.
type Result struct {
	Won    bool
	Method Method

	Probability  float64 // pA after floors and multipliers
	EffectiveA   float64
	EffectiveB   float64
	FloorApplied bool
}

// Method mirrors the coarse method split at this layer. Losses are
// always logged as a decision here; finer method resolution happens in
// the tournament layer.
type Method int

const (
	MethodDec Method = iota
	MethodTech
	MethodFall
)

func (m Method) String() string {
	switch m {
	case MethodTech:
		return "Tech"
	case MethodFall:
		return "Fall"
	default:
		return "Dec"
	}
}

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithLogger sets the logger used for upset diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// WithRivalryJitter overrides the rivalry noise amplitude.
func WithRivalryJitter(j float64) Option {
	return func(m *Model) {
		if j >= 0 {
			m.rivalryJitter = j
		}
	}
}

// Model computes match outcomes. The zero-value configuration is fully
// usable; the logger is optional and only feeds calibration diagnostics.
type Model struct {
	logger        logger.Logger
	rivalryJitter float64
}

// New creates a Model with configuration options.
func New(opts ...Option) *Model {
	m := &Model{
		rivalryJitter: defaultRivalryJitter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FatiguePenalty is the rating penalty for depleted energy.
func FatiguePenalty(energy float64) float64 {
	frac := 1 - energy/100
	if frac < 0 {
		frac = 0
	}
	return fatigueMax * math.Pow(frac, fatigueExponent)
}

// InjuryPenalty is the rating penalty for a normalized injury severity.
func InjuryPenalty(severity float64) float64 {
	return injuryMax * clamp01(severity)
}

// Logistic maps a rating difference onto a win probability.
func Logistic(diff, scale float64) float64 {
	return 1 / (1 + math.Exp(-diff/scale))
}

// EffectiveRating is the side's base rating adjusted for form, style,
// fatigue, and injury.
func EffectiveRating(s Side) float64 {
	return s.BaseRating + s.FormMod + s.StyleMod -
		FatiguePenalty(s.Energy) - InjuryPenalty(s.Injury)
}

// Compromised reports whether a side has crossed the energy or injury
// threshold that disables probability floors.
func Compromised(s Side) bool {
	return s.Energy <= compromisedEnergy || s.Injury >= compromisedInjury
}

// WinProbability computes pA given already-drawn per-side noise. It is
// deterministic, which is what makes the floor table directly testable.
func (m *Model) WinProbability(mu Matchup, noiseA, noiseB float64) (float64, bool) {
	effA := EffectiveRating(mu.A)
	effB := EffectiveRating(mu.B)
	diff := effA - effB + (noiseA - noiseB)
	p := Logistic(diff, logisticScale)

	floorApplied := false
	if floor, favIsA := probabilityFloor(mu.A, mu.B); floor > 0 {
		if favIsA {
			if p < floor {
				p = floor
				floorApplied = true
			}
		} else {
			if 1-p < floor {
				p = 1 - floor
				floorApplied = true
			}
		}
	}

	// External performance multipliers, applied symmetrically and then
	// clamped away from certainty.
	if mu.A.PerformanceMult > 0 && mu.A.PerformanceMult != 1 {
		p = clampMult(p * mu.A.PerformanceMult)
	}
	if mu.B.PerformanceMult > 0 && mu.B.PerformanceMult != 1 {
		p = clampMult(1 - (1-p)*mu.B.PerformanceMult)
	}

	return p, floorApplied
}

// Simulate resolves a match. It consumes, in order: one Normal per side,
// two uniform draws when Rivalry is set, one Bernoulli outcome draw, and
// up to two method draws on a win.
func (m *Model) Simulate(mu Matchup, src *rng.Source) Result {
	noiseA := drawNoise(mu.A, src)
	noiseB := drawNoise(mu.B, src)
	if mu.Rivalry {
		noiseA += (src.Float64()*2 - 1) * m.rivalryJitter
		noiseB += (src.Float64()*2 - 1) * m.rivalryJitter
	}

	p, floorApplied := m.WinProbability(mu, noiseA, noiseB)
	if floorApplied {
		metrics.RecordProbabilityFloor()
	}

	res := Result{
		Probability:  p,
		EffectiveA:   EffectiveRating(mu.A),
		EffectiveB:   EffectiveRating(mu.B),
		FloorApplied: floorApplied,
	}

	res.Won = src.Chance(p)
	if res.Won {
		switch {
		case src.Chance(fallChance):
			res.Method = MethodFall
		case src.Chance(techChance):
			res.Method = MethodTech
		default:
			res.Method = MethodDec
		}
	} else {
		res.Method = MethodDec
	}

	m.recordUpset(mu, res)
	return res
}

// recordUpset emits the calibration diagnostic when a gap>=15 favorite
// loses. Not user-facing; this exists so floor tuning can be debugged
// from logs alone.
func (m *Model) recordUpset(mu Matchup, res Result) {
	fav, dog, favWon := mu.A, mu.B, res.Won
	if mu.B.BaseRating > mu.A.BaseRating {
		fav, dog, favWon = mu.B, mu.A, !res.Won
	}
	gap := fav.BaseRating - dog.BaseRating
	if favWon || gap < upsetDiagnosticGap {
		return
	}
	metrics.RecordUpset()
	if m.logger == nil {
		return
	}
	m.logger.Warn(context.Background(), "upset against heavy favorite",
		logger.String("favorite", fav.Name),
		logger.Float64("gap", gap),
		logger.Float64("favorite_energy", fav.Energy),
		logger.Float64("favorite_injury", fav.Injury),
		logger.Float64("effective_gap", res.EffectiveA-res.EffectiveB),
		logger.Float64("probability", res.Probability),
	)
}

// drawNoise produces one side's performance noise: a normal deviate
// scaled by composure and fatigue, clamped to +/-noiseCap.
func drawNoise(s Side, src *rng.Source) float64 {
	sigma := baseSigma * (1 - 0.55*s.Composure/100) * (1 + 0.9*(1-s.Energy/100))
	n := src.Normal() * sigma
	if n > noiseCap {
		return noiseCap
	}
	if n < -noiseCap {
		return -noiseCap
	}
	return n
}

// probabilityFloor returns the enforced minimum win probability for the
// base-rating favorite, and whether that favorite is side A. A zero
// floor means none applies: the gap is under 15, the sides are level, or
// the favorite is compromised.
func probabilityFloor(a, b Side) (float64, bool) {
	fav, dog, favIsA := a, b, true
	if b.BaseRating > a.BaseRating {
		fav, dog, favIsA = b, a, false
	}
	if fav.BaseRating == dog.BaseRating || Compromised(fav) {
		return 0, favIsA
	}

	gap := fav.BaseRating - dog.BaseRating
	switch {
	case gap >= 30:
		if fav.BaseRating >= 90 && dog.BaseRating >= 90 {
			return 0.995, favIsA
		}
		return 0.998, favIsA
	case gap >= 25:
		return 0.985, favIsA
	case gap >= 20:
		if fav.BaseRating >= 92 && dog.BaseRating <= 84 {
			return 0.985, favIsA
		}
		return 0.97, favIsA
	case gap >= 15:
		return 0.93, favIsA
	default:
		return 0, favIsA
	}
}

func clampMult(p float64) float64 {
	if p < multClampLo {
		return multClampLo
	}
	if p > multClampHi {
		return multClampHi
	}
	return p
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
