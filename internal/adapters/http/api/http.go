// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Tencide/matsim/internal/domain/exchange"
	"github.com/Tencide/matsim/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SimulateMatch resolves a single match synchronously.
	SimulateMatch(ctx context.Context, player model.CompetitorSnapshot, opp model.Opponent, seed string) (model.MatchResult, model.CompetitorSnapshot, string)

	// SubmitBracketRun queues a full double-elimination run. Returns the
	// run ID and false on backpressure or invalid size.
	SubmitBracketRun(ctx context.Context, req model.BracketRunRequest) (string, bool)

	// Read operations expose completed runs.
	BracketResult(ctx context.Context, runID string) (model.BracketRunRecord, error)
	RecentRuns(ctx context.Context, n int) ([]model.BracketRunRecord, error)

	// Interactive exchange sessions.
	CreateExchange(ctx context.Context, player model.CompetitorSnapshot, opp model.Opponent, seed string) (string, exchange.Prompt)
	ResolveExchange(ctx context.Context, sessionID, actionKey string) (exchange.State, exchange.LogEntry, *exchange.Prompt, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	matchesHandler   *MatchesHandler
	bracketsHandler  *BracketsHandler
	exchangesHandler *ExchangesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		matchesHandler:   NewMatchesHandler(deps),
		bracketsHandler:  NewBracketsHandler(deps),
		exchangesHandler: NewExchangesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandlePostMatch, "matches"))
	mux.HandleFunc("/brackets", MetricsMiddleware(s.bracketsHandler.HandleBrackets, "brackets"))
	mux.HandleFunc("/brackets/", MetricsMiddleware(s.bracketsHandler.HandleGetBracket, "bracket"))
	mux.HandleFunc("/exchanges", MetricsMiddleware(s.exchangesHandler.HandlePostExchange, "exchanges"))
	mux.HandleFunc("/exchanges/", MetricsMiddleware(s.exchangesHandler.HandlePostAction, "exchange_action"))
}

// competitorPayload mirrors the request schema for a player snapshot.
type competitorPayload struct {
	Technique      float64 `json:"technique"`
	MatIQ          float64 `json:"mat_iq"`
	Conditioning   float64 `json:"conditioning"`
	Strength       float64 `json:"strength"`
	Speed          float64 `json:"speed"`
	Flexibility    float64 `json:"flexibility"`
	Energy         float64 `json:"energy"`
	Health         float64 `json:"health"`
	Stress         float64 `json:"stress"`
	InjurySeverity float64 `json:"injury_severity"`
	OverallRating  float64 `json:"overall_rating"`
	PerformanceMul float64 `json:"performance_mult"`
}

func (c competitorPayload) snapshot() model.CompetitorSnapshot {
	energy := c.Energy
	if energy == 0 {
		energy = model.MaxEnergy
	}
	return model.CompetitorSnapshot{
		Technique:       c.Technique,
		MatIQ:           c.MatIQ,
		Conditioning:    c.Conditioning,
		Strength:        c.Strength,
		Speed:           c.Speed,
		Flexibility:     c.Flexibility,
		Energy:          energy,
		Health:          c.Health,
		Stress:          c.Stress,
		InjurySeverity:  c.InjurySeverity,
		OverallRating:   c.OverallRating,
		PerformanceMult: c.PerformanceMul,
	}
}

func (c competitorPayload) validate() error {
	if c.OverallRating <= 0 {
		return errors.New("missing player overall_rating")
	}
	return nil
}

// opponentPayload mirrors the request schema for an opponent.
type opponentPayload struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	OverallRating float64 `json:"overall_rating"`
	Style         string  `json:"style"`
	Clutch        float64 `json:"clutch"`
	Physicality   float64 `json:"physicality"`
	TDOffense     float64 `json:"td_offense"`
	TDDefense     float64 `json:"td_defense"`
	Riding        float64 `json:"riding"`
	Escapes       float64 `json:"escapes"`
	Rank          int     `json:"rank"`
}

func (o opponentPayload) opponent() model.Opponent {
	return model.Opponent{
		ID:            o.ID,
		Name:          o.Name,
		OverallRating: o.OverallRating,
		Style:         model.ParseStyle(o.Style),
		Clutch:        o.Clutch,
		Physicality:   o.Physicality,
		TDOffense:     o.TDOffense,
		TDDefense:     o.TDDefense,
		Riding:        o.Riding,
		Escapes:       o.Escapes,
		Rank:          o.Rank,
	}
}

func (o opponentPayload) validate() error {
	if o.OverallRating <= 0 {
		return errors.New("missing opponent overall_rating")
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
