// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/Tencide/matsim/internal/domain/model"
)

// matchRequest is the body for POST /matches.
type matchRequest struct {
	Player   competitorPayload `json:"player"`
	Opponent opponentPayload   `json:"opponent"`
	Seed     string            `json:"seed"`
}

// matchResponse echoes the resolved match with the player state after
// energy drain and injury accrual.
type matchResponse struct {
	Result model.MatchResult        `json:"result"`
	Method string                   `json:"method"`
	After  model.CompetitorSnapshot `json:"after"`
	Seed   string                   `json:"seed"`
}

// MatchesHandler resolves single matches synchronously.
type MatchesHandler struct {
	deps Dependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// HandlePostMatch handles POST /matches requests.
func (h *MatchesHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.Player.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.Opponent.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	result, after, seed := h.deps.SimulateMatch(r.Context(), req.Player.snapshot(), req.Opponent.opponent(), req.Seed)
	writeJSON(w, http.StatusOK, matchResponse{
		Result: result,
		Method: result.Method.String(),
		After:  after,
		Seed:   seed,
	})
}
