// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Tencide/matsim/internal/adapters/repository"
	"github.com/Tencide/matsim/internal/domain/model"
	"github.com/Tencide/matsim/internal/domain/types"
)

const defaultRecentRuns = 20

// bracketRequest is the body for POST /brackets.
type bracketRequest struct {
	RunID       string            `json:"run_id"`
	Seed        string            `json:"seed"`
	BracketSize int               `json:"bracket_size"`
	Player      competitorPayload `json:"player"`
	Field       []opponentPayload `json:"field"`
}

// bracketAccepted is the 202 body acknowledging a queued run.
type bracketAccepted struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// BracketsHandler queues bracket runs and serves completed results.
type BracketsHandler struct {
	deps Dependencies
}

// NewBracketsHandler creates a new brackets handler.
func NewBracketsHandler(deps Dependencies) *BracketsHandler {
	return &BracketsHandler{deps: deps}
}

// HandleBrackets handles POST /brackets and GET /brackets requests.
func (h *BracketsHandler) HandleBrackets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.listRecent(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *BracketsHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req bracketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := req.Player.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.BracketSize != 0 && req.BracketSize != 8 && req.BracketSize != 16 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	field := make([]model.Opponent, 0, len(req.Field))
	for _, o := range req.Field {
		field = append(field, o.opponent())
	}

	runID, accepted := h.deps.SubmitBracketRun(r.Context(), model.BracketRunRequest{
		RunID:       req.RunID,
		Seed:        req.Seed,
		BracketSize: req.BracketSize,
		Player:      req.Player.snapshot(),
		Field:       field,
	})
	if !accepted {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}

	writeJSON(w, http.StatusAccepted, bracketAccepted{RunID: runID, Status: "accepted"})
}

func (h *BracketsHandler) listRecent(w http.ResponseWriter, r *http.Request) {
	n := defaultRecentRuns
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		n = parsed
	}

	runs, err := h.deps.RecentRuns(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	summaries := make([]types.RunSummary, 0, len(runs))
	for _, rec := range runs {
		summaries = append(summaries, types.RunSummary{
			RunID:       rec.RunID,
			Seed:        rec.Seed,
			BracketSize: rec.BracketSize,
			Placement:   rec.Result.Placement,
			Wins:        len(rec.Result.Matches) - rec.Result.Losses(),
			Losses:      rec.Result.Losses(),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// HandleGetBracket handles GET /brackets/{id} requests.
func (h *BracketsHandler) HandleGetBracket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	runID := strings.TrimPrefix(r.URL.Path, "/brackets/")
	if runID == "" || strings.Contains(runID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	rec, err := h.deps.BracketResult(r.Context(), runID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
