// Package bracket implements the double-elimination tournament engine.
// It sequences tournament match simulations through winners and losers
// brackets for 8-man and 16-man fields, threading the player's fatigue
// and injury forward between rounds as an explicit accumulator.
package bracket

import (
	"context"
	"fmt"

	"github.com/Tencide/matsim/internal/domain/matchsim"
	"github.com/Tencide/matsim/internal/domain/model"
	"github.com/Tencide/matsim/internal/domain/rng"
	"github.com/Tencide/matsim/pkg/logger"
	"github.com/Tencide/matsim/pkg/metrics"
)

// OpponentProvider maps a round label to the opponent waiting there.
// The callback is supplied by the caller, which keeps scheduling and
// seeding concerns out of the engine; it must be pure with respect to
// the round label.
type OpponentProvider func(round Round) model.Opponent

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the engine logger, which is also handed to the match
// simulator for upset diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithSimulator replaces the match simulator, mainly for tests.
func WithSimulator(sim *matchsim.Simulator) Option {
	return func(e *Engine) {
		if sim != nil {
			e.sim = sim
		}
	}
}

// Engine runs double-elimination brackets. It holds no per-run state;
// everything mutable lives in the run accumulator and the rng.
type Engine struct {
	logger logger.Logger
	sim    *matchsim.Simulator
}

// New creates an Engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.sim == nil {
		simOpts := []matchsim.Option{}
		if e.logger != nil {
			simOpts = append(simOpts, matchsim.WithLogger(e.logger))
		}
		e.sim = matchsim.New(simOpts...)
	}
	return e
}

// run accumulates one bracket run. The player snapshot here is the
// explicit fatigue/injury thread: every match updates it, and the final
// value is returned to the caller instead of mutating caller state.
type run struct {
	player  model.CompetitorSnapshot
	matches []model.BracketMatchEntry
}

// Run executes a full double-elimination bracket for the player.
// Matches execute strictly in bracket order; a 3rd/4th match, when
// reached, is always the last entry. The returned snapshot carries the
// energy and injury accumulated across the run.
func (e *Engine) Run(player model.CompetitorSnapshot, provider OpponentProvider, src *rng.Source, size int) (model.DoubleElimResult, model.CompetitorSnapshot, error) {
	if size != Size8 && size != Size16 {
		return model.DoubleElimResult{}, player, fmt.Errorf("%w: %d", ErrBracketSize, size)
	}
	if provider == nil {
		return model.DoubleElimResult{}, player, ErrNilProvider
	}

	st := &run{player: player}

	placement := e.runWinners(st, provider, src, size)

	result := model.DoubleElimResult{Placement: placement, Matches: st.matches}
	metrics.RecordBracketCompleted(size, placement)
	if e.logger != nil {
		e.logger.Debug(context.Background(), "bracket run complete",
			logger.Int("size", size),
			logger.Int("placement", placement),
			logger.Int("matches", len(st.matches)),
			logger.Float64("final_energy", st.player.Energy),
		)
	}
	return result, st.player, nil
}

// runWinners walks the winners bracket and dispatches to the
// championship or consolation phases on the first loss.
func (e *Engine) runWinners(st *run, provider OpponentProvider, src *rng.Source, size int) int {
	for _, round := range winnersRounds(size) {
		if e.playMatch(st, provider, src, round) {
			continue
		}
		if round == RoundWinnersFinal {
			return e.runFromLBFinal(st, provider, src)
		}
		entry, _ := consolationEntry(size, round)
		return e.runConsolation(st, provider, src, size, entry)
	}
	return e.runChampionshipAsFavorite(st, provider, src)
}

// runChampionshipAsFavorite is the undefeated path: the Final against
// the losers'-bracket champion, with a bracket reset if it is dropped.
func (e *Engine) runChampionshipAsFavorite(st *run, provider OpponentProvider, src *rng.Source) int {
	if e.playMatch(st, provider, src, RoundFinal) {
		return 1
	}
	// First loss of the run; the reset match settles the title.
	if e.playMatch(st, provider, src, RoundBracketReset) {
		return 1
	}
	return 2
}

// runFromLBFinal is the Winner's Final loser path: beat the
// losers'-bracket champion to force a rematch with the Winner's Final
// winner; a second loss anywhere here is terminal at placement 2.
func (e *Engine) runFromLBFinal(st *run, provider OpponentProvider, src *rng.Source) int {
	if !e.playMatch(st, provider, src, RoundLBFinal) {
		return 2
	}
	if !e.playMatch(st, provider, src, RoundFinal) {
		return 2
	}
	// Winning the Final hands the Winner's Final winner their first
	// loss, forcing the reset.
	if e.playMatch(st, provider, src, RoundBracketReset) {
		return 1
	}
	return 2
}

// runConsolation climbs the consolation ladder from the given entry
// round. A loss on the ladder is a second bracket-stage loss and is
// always terminal; its placement is settled between two adjacent slots.
func (e *Engine) runConsolation(st *run, provider OpponentProvider, src *rng.Source, size int, entry Round) int {
	ladder := consolationLadder(size)
	start := 0
	for i, r := range ladder {
		if r == entry {
			start = i
			break
		}
	}

	for _, round := range ladder[start:] {
		if !e.playMatch(st, provider, src, round) {
			hi, lo := eliminationSlots(size, round)
			return resolveEarlyExitPlacement(src, hi, lo)
		}
	}

	// The 3rd/4th match is always the wrestler's last match.
	if e.playMatch(st, provider, src, RoundThirdFourth) {
		return 3
	}
	return 4
}

// playMatch simulates one round, threads energy and injury into the run
// accumulator, and logs the entry. Returns whether the player won.
func (e *Engine) playMatch(st *run, provider OpponentProvider, src *rng.Source, round Round) bool {
	opp := provider(round)
	res := e.sim.SimulateMatch(st.player, opp, src)

	st.player, _ = matchsim.ApplyEnergyDrain(st.player, res.Intensity)
	if res.InjuryOccurred {
		st.player.AddInjuryPoints(res.InjuryPoints)
	}

	st.matches = append(st.matches, model.BracketMatchEntry{
		Round:          string(round),
		OpponentID:     opp.ID,
		OpponentName:   opp.Name,
		OpponentRating: opp.OverallRating,
		OpponentRank:   opp.Rank,
		Won:            res.Won,
		Method:         res.Method,
		MethodName:     res.Method.String(),
	})
	return res.Won
}

// resolveEarlyExitPlacement settles an elimination between two adjacent
// placement slots with a coin flip. Deliberately shallow: the engine
// does not model the full consolation sub-bracket, and isolating the
// flip here keeps the door open for a real ladder later.
func resolveEarlyExitPlacement(src *rng.Source, better, worse int) int {
	if src.Chance(0.5) {
		return better
	}
	return worse
}
