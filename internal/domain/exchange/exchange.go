// Package exchange implements the interactive per-exchange match
// resolver: a period-based state machine over wrestling positions where
// each timed decision is resolved probabilistically from attribute
// matchups, momentum, fatigue, and injury. A tied score after the third
// period falls back to the elite match model, the one point where the
// two simulators compose directly.
package exchange

import (
	"time"

	"github.com/Tencide/matsim/internal/domain/elite"
	"github.com/Tencide/matsim/internal/domain/matchsim"
	"github.com/Tencide/matsim/internal/domain/model"
	"github.com/Tencide/matsim/internal/domain/rng"
	"github.com/Tencide/matsim/pkg/logger"
	"github.com/Tencide/matsim/pkg/metrics"
)

// Resolution constants.
const (
	periods           = 3
	ratingWeight      = 0.6
	momentumWeight    = 0.8
	hesitationPenalty = 8.0
	logisticScale     = 12.0
	momentumCap       = 15.0

	pinBonusChance       = 0.08
	hesitateInjuryMult   = 1.4
	lowEnergyInjuryScale = 1.5
	injuryIncrementBase  = 0.05
	injuryIncrementSpan  = 0.10

	techMargin  = 15
	majorMargin = 8

	defaultExchangesPerPeriod = 4
	defaultDecisionTimer      = 10 * time.Second
)

// TimeoutKey is the pseudo action key a caller passes when the decision
// timer expired; it forces the hesitate fallback.
const TimeoutKey = "timeout"

// State is one in-progress interactive match. It is a value: Resolve
// returns the advanced state rather than mutating in place, so callers
// own serialization and can replay from any point.
type State struct {
	Me       model.CompetitorSnapshot `json:"me"`
	Opponent model.Opponent           `json:"opponent"`
	OppStats matchsim.MatchupStats    `json:"opp_stats"`

	Period           int      `json:"period"` // 1-3
	ExchangeInPeriod int      `json:"exchange_in_period"`
	Position         Position `json:"position"`
	ScoreFor         int      `json:"score_for"`
	ScoreAgainst     int      `json:"score_against"`
	Momentum         float64  `json:"momentum"` // clamped to [-15,15]

	Done   bool         `json:"done"`
	Result *MatchResult `json:"result,omitempty"`
}

// MatchResult is the final outcome of an interactive match, with the
// elite diagnostic fields populated only when the score was tied and
// the elite model broke the tie.
type MatchResult struct {
	Won          bool         `json:"won"`
	Method       model.Method `json:"-"`
	MethodName   string       `json:"method"`
	ScoreFor     int          `json:"score_for"`
	ScoreAgainst int          `json:"score_against"`

	Tiebreak     bool    `json:"tiebreak"`
	Probability  float64 `json:"probability,omitempty"`
	EffectiveMe  float64 `json:"effective_me,omitempty"`
	EffectiveOpp float64 `json:"effective_opp,omitempty"`
}

// LogEntry records one resolved exchange.
type LogEntry struct {
	Period        int     `json:"period"`
	Position      string  `json:"position"`
	ActionKey     string  `json:"action"`
	TimedOut      bool    `json:"timed_out"`
	Success       bool    `json:"success"`
	PointsFor     int     `json:"points_for"`
	PointsAgainst int     `json:"points_against"`
	EnergyBefore  float64 `json:"energy_before"`
	EnergyAfter   float64 `json:"energy_after"`
	InjuryBefore  float64 `json:"injury_before"`
	InjuryAfter   float64 `json:"injury_after"`
	MomentumBefore float64 `json:"momentum_before"`
	MomentumAfter  float64 `json:"momentum_after"`
	Pin           bool    `json:"pin,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// Choice is one selectable action in a prompt.
type Choice struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Prompt presents the legal actions for the current exchange together
// with the decision timer the caller configured.
type Prompt struct {
	Period   int           `json:"period"`
	Position string        `json:"position"`
	Choices  []Choice      `json:"choices"`
	Timer    time.Duration `json:"timer"`
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithLogger sets the logger handed to the elite tiebreak model.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithDecisionTimer sets the per-exchange decision timer echoed in
// prompts. The resolver never blocks on it; enforcing it is the
// caller's concern.
func WithDecisionTimer(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timer = d
		}
	}
}

// WithExchangesPerPeriod sets how many exchanges fill a period.
func WithExchangesPerPeriod(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.perPeriod = n
		}
	}
}

// Resolver advances interactive matches. All randomness flows through
// the rng passed per call, so resolution is replayable.
type Resolver struct {
	logger    logger.Logger
	timer     time.Duration
	perPeriod int
	model     *elite.Model
}

// New creates a Resolver with configuration options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		timer:     defaultDecisionTimer,
		perPeriod: defaultExchangesPerPeriod,
	}
	for _, opt := range opts {
		opt(r)
	}
	modelOpts := []elite.Option{}
	if r.logger != nil {
		modelOpts = append(modelOpts, elite.WithLogger(r.logger))
	}
	r.model = elite.New(modelOpts...)
	return r
}

// NewState starts an interactive match from the given position.
func (r *Resolver) NewState(me model.CompetitorSnapshot, opp model.Opponent, start Position) State {
	return State{
		Me:       me,
		Opponent: opp,
		OppStats: matchsim.DeriveOpponentStats(opp),
		Period:   1,
		Position: start,
	}
}

// BuildPrompt lists the legal actions for the state's current exchange.
// Returns a zero prompt when the match is over.
func (r *Resolver) BuildPrompt(st State) Prompt {
	if st.Done {
		return Prompt{}
	}
	actions := ActionsFor(st.Position)
	choices := make([]Choice, 0, len(actions))
	for _, a := range actions {
		choices = append(choices, Choice{Key: a.Key, Label: a.Label})
	}
	return Prompt{
		Period:   st.Period,
		Position: st.Position.String(),
		Choices:  choices,
		Timer:    r.timer,
	}
}

// Resolve advances the match by one exchange. The chosen key must be
// legal for the current position; TimeoutKey (or an empty key) forces
// the hesitate fallback. The returned prompt is nil once the match is
// decided.
func (r *Resolver) Resolve(st State, chosenKey string, src *rng.Source) (State, LogEntry, *Prompt, error) {
	if st.Done {
		return st, LogEntry{}, nil, ErrMatchOver
	}

	timedOut := chosenKey == TimeoutKey || chosenKey == ""
	key := chosenKey
	if timedOut {
		key = HesitateKey
	}
	action, ok := findAction(st.Position, key)
	if !ok {
		return st, LogEntry{}, nil, ErrUnknownAction
	}

	entry := LogEntry{
		Period:        st.Period,
		Position:      st.Position.String(),
		ActionKey:     action.Key,
		TimedOut:      timedOut,
		EnergyBefore:  st.Me.Energy,
		InjuryBefore:  st.Me.InjurySeverity,
		MomentumBefore: st.Momentum,
	}

	success := src.Chance(r.successProbability(st, action))
	outcome := action.Failure
	if success {
		outcome = action.Success
	}
	entry.Success = success
	entry.Note = outcome.Note

	pin := false
	if success && action.PinCapable && src.Chance(pinBonusChance) {
		pin = true
		entry.Pin = true
		entry.Note = "stuck for the fall"
	}

	st.ScoreFor += outcome.PointsFor
	st.ScoreAgainst += outcome.PointsAgainst
	st.Position = outcome.NextPosition
	st.Momentum = clampMomentum(st.Momentum + outcome.MomentumDelta)
	entry.PointsFor = outcome.PointsFor
	entry.PointsAgainst = outcome.PointsAgainst

	cost := action.StaminaCost
	if !success {
		cost += action.FailureStaminaCost
	}
	st.Me.DrainEnergy(cost)

	r.rollInjury(&st, action, src)

	entry.EnergyAfter = st.Me.Energy
	entry.InjuryAfter = st.Me.InjurySeverity
	entry.MomentumAfter = st.Momentum

	metrics.RecordExchangeResolved(success)

	if pin {
		st.Done = true
		st.Result = &MatchResult{
			Won:          true,
			Method:       model.MethodFall,
			MethodName:   model.MethodFall.String(),
			ScoreFor:     st.ScoreFor,
			ScoreAgainst: st.ScoreAgainst,
		}
		return st, entry, nil, nil
	}

	st.ExchangeInPeriod++
	if st.ExchangeInPeriod >= r.perPeriod {
		st.Period++
		st.ExchangeInPeriod = 0
		// Periods restart in neutral.
		st.Position = PositionNeutral
	}

	if st.Period > periods {
		st = r.finish(st, src)
		return st, entry, nil, nil
	}

	prompt := r.BuildPrompt(st)
	return st, entry, &prompt, nil
}

// successProbability computes the logistic success chance for an action
// in the current state.
func (r *Resolver) successProbability(st State, action Action) float64 {
	offense := action.Offense.Score(st.Me)
	defense := action.Defense.Score(st.OppStats)
	effective := offense - defense +
		ratingWeight*(st.Me.OverallRating-st.Opponent.OverallRating) +
		momentumWeight*st.Momentum -
		elite.FatiguePenalty(st.Me.Energy) -
		elite.InjuryPenalty(st.Me.InjurySeverity)
	if action.Hesitation {
		effective -= hesitationPenalty
	}
	return elite.Logistic(effective, logisticScale)
}

// rollInjury applies the per-exchange injury roll: base action risk,
// scaled up by depleted energy and by the hesitation multiplier. On
// occurrence, severity grows by a small random increment.
func (r *Resolver) rollInjury(st *State, action Action, src *rng.Source) {
	p := action.InjuryRisk * (1 + lowEnergyInjuryScale*(1-st.Me.Energy/100))
	if action.Hesitation {
		p *= hesitateInjuryMult
	}
	if !src.Chance(p) {
		return
	}
	st.Me.InjurySeverity += injuryIncrementBase + src.Float64()*injuryIncrementSpan
	if st.Me.InjurySeverity > model.MaxInjury {
		st.Me.InjurySeverity = model.MaxInjury
	}
	metrics.RecordInjury()
}

// finish settles the match after the third period: the score leader
// wins with a margin-based method, and a tied score is broken by the
// elite model with current momentum as a form modifier.
func (r *Resolver) finish(st State, src *rng.Source) State {
	st.Done = true
	margin := st.ScoreFor - st.ScoreAgainst

	if margin != 0 {
		res := &MatchResult{
			Won:          margin > 0,
			Method:       MethodForMargin(margin),
			ScoreFor:     st.ScoreFor,
			ScoreAgainst: st.ScoreAgainst,
		}
		res.MethodName = res.Method.String()
		st.Result = res
		return st
	}

	mu := elite.Matchup{
		A: elite.Side{
			Name:       "player",
			BaseRating: st.Me.OverallRating,
			Energy:     st.Me.Energy,
			Injury:     st.Me.InjurySeverity,
			Composure:  st.Me.Composure(),
			FormMod:    st.Momentum,
		},
		B: elite.Side{
			Name:       st.Opponent.Name,
			BaseRating: st.Opponent.OverallRating,
			Energy:     model.MaxEnergy,
			Composure:  80,
		},
	}
	eres := r.model.Simulate(mu, src)
	st.Result = &MatchResult{
		Won:          eres.Won,
		Method:       model.MethodDec,
		MethodName:   model.MethodDec.String(),
		ScoreFor:     st.ScoreFor,
		ScoreAgainst: st.ScoreAgainst,
		Tiebreak:     true,
		Probability:  eres.Probability,
		EffectiveMe:  eres.EffectiveA,
		EffectiveOpp: eres.EffectiveB,
	}
	return st
}

// MethodForMargin maps a final score margin onto the win method:
// 15 or more is a tech fall, 8 or more a major decision, anything
// else a decision. Exported so callers can label partial scores.
func MethodForMargin(margin int) model.Method {
	if margin < 0 {
		margin = -margin
	}
	switch {
	case margin >= techMargin:
		return model.MethodTech
	case margin >= majorMargin:
		return model.MethodMajor
	default:
		return model.MethodDec
	}
}

func clampMomentum(m float64) float64 {
	if m > momentumCap {
		return momentumCap
	}
	if m < -momentumCap {
		return -momentumCap
	}
	return m
}
