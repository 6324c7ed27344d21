// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/Tencide/matsim/internal/app"
	"github.com/Tencide/matsim/internal/domain/exchange"
)

// exchangeRequest is the body for POST /exchanges.
type exchangeRequest struct {
	Player   competitorPayload `json:"player"`
	Opponent opponentPayload   `json:"opponent"`
	Seed     string            `json:"seed"`
}

// exchangeCreated is the 201 body for a new interactive session.
type exchangeCreated struct {
	SessionID string          `json:"session_id"`
	Prompt    exchange.Prompt `json:"prompt"`
}

// actionRequest is the body for POST /exchanges/{id}/actions. An empty
// action resolves as a decision timeout.
type actionRequest struct {
	Action string `json:"action"`
}

// actionResponse carries the resolved exchange, the updated session
// state, and the next prompt when the match is still live.
type actionResponse struct {
	State  exchange.State    `json:"state"`
	Entry  exchange.LogEntry `json:"entry"`
	Prompt *exchange.Prompt  `json:"prompt,omitempty"`
}

// ExchangesHandler runs interactive match sessions.
type ExchangesHandler struct {
	deps Dependencies
}

// NewExchangesHandler creates a new exchanges handler.
func NewExchangesHandler(deps Dependencies) *ExchangesHandler {
	return &ExchangesHandler{deps: deps}
}

// HandlePostExchange handles POST /exchanges requests.
func (h *ExchangesHandler) HandlePostExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req exchangeRequest
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

	id, prompt := h.deps.CreateExchange(r.Context(), req.Player.snapshot(), req.Opponent.opponent(), req.Seed)
	writeJSON(w, http.StatusCreated, exchangeCreated{SessionID: id, Prompt: prompt})
}

// HandlePostAction handles POST /exchanges/{id}/actions requests.
func (h *ExchangesHandler) HandlePostAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/exchanges/")
	sessionID, tail, ok := strings.Cut(rest, "/")
	if !ok || sessionID == "" || tail != "actions" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	state, entry, prompt, err := h.deps.ResolveExchange(r.Context(), sessionID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.Is(err, exchange.ErrUnknownAction), errors.Is(err, exchange.ErrMatchOver):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, actionResponse{State: state, Entry: entry, Prompt: prompt})
}
