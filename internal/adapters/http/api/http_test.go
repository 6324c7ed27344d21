package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tencide/matsim/internal/adapters/http/api"
	"github.com/Tencide/matsim/internal/adapters/repository"
	service "github.com/Tencide/matsim/internal/app"
	"github.com/Tencide/matsim/internal/domain/exchange"
	"github.com/Tencide/matsim/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDeps implements api.Dependencies and api.StatsProvider for handler tests.
type mockDeps struct {
	runs        map[string]model.BracketRunRecord
	sessions    map[string]bool
	rejectRuns  bool
	resolveErr  error
	lastRunSize int
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		runs:     make(map[string]model.BracketRunRecord),
		sessions: make(map[string]bool),
	}
}

func (m *mockDeps) SimulateMatch(ctx context.Context, player model.CompetitorSnapshot, opp model.Opponent, seed string) (model.MatchResult, model.CompetitorSnapshot, string) {
	if seed == "" {
		seed = "generated-seed"
	}
	player.Energy -= 10
	return model.MatchResult{Won: true, Intensity: 0.5}, player, seed
}

func (m *mockDeps) SubmitBracketRun(ctx context.Context, req model.BracketRunRequest) (string, bool) {
	if m.rejectRuns {
		return req.RunID, false
	}
	if req.RunID == "" {
		req.RunID = "generated-run-id"
	}
	m.lastRunSize = req.BracketSize
	return req.RunID, true
}

func (m *mockDeps) BracketResult(ctx context.Context, runID string) (model.BracketRunRecord, error) {
	rec, ok := m.runs[runID]
	if !ok {
		return model.BracketRunRecord{}, fmt.Errorf("run %s: %w", runID, repository.ErrNotFound)
	}
	return rec, nil
}

func (m *mockDeps) RecentRuns(ctx context.Context, n int) ([]model.BracketRunRecord, error) {
	out := make([]model.BracketRunRecord, 0, len(m.runs))
	for _, rec := range m.runs {
		out = append(out, rec)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *mockDeps) CreateExchange(ctx context.Context, player model.CompetitorSnapshot, opp model.Opponent, seed string) (string, exchange.Prompt) {
	id := "session-1"
	m.sessions[id] = true
	return id, exchange.Prompt{
		Period:   1,
		Position: "neutral",
		Choices:  []exchange.Choice{{Key: exchange.HesitateKey, Label: "Hesitate"}},
		Timer:    10 * time.Second,
	}
}

func (m *mockDeps) ResolveExchange(ctx context.Context, sessionID, actionKey string) (exchange.State, exchange.LogEntry, *exchange.Prompt, error) {
	if m.resolveErr != nil {
		return exchange.State{}, exchange.LogEntry{}, nil, m.resolveErr
	}
	if !m.sessions[sessionID] {
		return exchange.State{}, exchange.LogEntry{}, nil, service.ErrSessionNotFound
	}
	st := exchange.State{Period: 1, ExchangeInPeriod: 1}
	entry := exchange.LogEntry{Period: 1, ActionKey: actionKey}
	return st, entry, &exchange.Prompt{Period: 1, Position: "neutral"}, nil
}

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true}
}

func newTestServer(deps *mockDeps) *httptest.Server {
	mux := http.NewServeMux()
	srv := api.NewServer(deps, deps)
	srv.Register(context.Background(), mux, deps)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

const playerJSON = `{"technique":70,"mat_iq":70,"conditioning":70,"strength":70,"speed":70,"flexibility":70,"energy":100,"health":90,"overall_rating":70}`

const opponentJSON = `{"id":"opp-1","name":"Opponent One","overall_rating":72,"style":"grinder"}`

func TestMatchesEndpoint(t *testing.T) {
	Convey("Given a running API server", t, func() {
		deps := newMockDeps()
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When posting a valid match request", func() {
			resp := postJSON(t, ts.URL+"/matches", `{"player":`+playerJSON+`,"opponent":`+opponentJSON+`,"seed":"s1"}`)
			defer resp.Body.Close()

			Convey("Then it resolves with the seed echoed", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out struct {
					Seed  string `json:"seed"`
					After struct {
						Energy float64 `json:"energy"`
					} `json:"after"`
				}
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out.Seed, ShouldEqual, "s1")
				So(out.After.Energy, ShouldEqual, 90)
			})
		})

		Convey("When posting a match without an opponent rating", func() {
			resp := postJSON(t, ts.URL+"/matches", `{"player":`+playerJSON+`,"opponent":{"id":"x"}}`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using the wrong method", func() {
			resp, err := http.Get(ts.URL + "/matches")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestBracketsEndpoint(t *testing.T) {
	Convey("Given a running API server", t, func() {
		deps := newMockDeps()
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When submitting a bracket run", func() {
			resp := postJSON(t, ts.URL+"/brackets", `{"run_id":"r1","seed":"s","bracket_size":8,"player":`+playerJSON+`}`)
			defer resp.Body.Close()

			Convey("Then the run is accepted", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				var out struct {
					RunID  string `json:"run_id"`
					Status string `json:"status"`
				}
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out.RunID, ShouldEqual, "r1")
				So(out.Status, ShouldEqual, "accepted")
				So(deps.lastRunSize, ShouldEqual, 8)
			})
		})

		Convey("When submitting an unsupported bracket size", func() {
			resp := postJSON(t, ts.URL+"/brackets", `{"bracket_size":12,"player":`+playerJSON+`}`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue is under backpressure", func() {
			deps.rejectRuns = true
			resp := postJSON(t, ts.URL+"/brackets", `{"bracket_size":8,"player":`+playerJSON+`}`)
			defer resp.Body.Close()

			Convey("Then the request reports too many requests", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
			})
		})

		Convey("When fetching a completed run", func() {
			deps.runs["done-1"] = model.BracketRunRecord{
				RunID:       "done-1",
				BracketSize: 8,
				Result:      model.DoubleElimResult{Placement: 3},
				CompletedAt: time.Now(),
			}
			resp, err := http.Get(ts.URL + "/brackets/done-1")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the record is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var rec model.BracketRunRecord
				So(json.NewDecoder(resp.Body).Decode(&rec), ShouldBeNil)
				So(rec.RunID, ShouldEqual, "done-1")
				So(rec.Result.Placement, ShouldEqual, 3)
			})
		})

		Convey("When fetching an unknown run", func() {
			resp, err := http.Get(ts.URL + "/brackets/missing")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When listing recent runs", func() {
			deps.runs["done-2"] = model.BracketRunRecord{RunID: "done-2", BracketSize: 8}
			resp, err := http.Get(ts.URL + "/brackets?limit=5")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then summaries are returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out []map[string]any
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(len(out), ShouldEqual, 1)
			})
		})

		Convey("When listing with an invalid limit", func() {
			resp, err := http.Get(ts.URL + "/brackets?limit=zero")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestExchangesEndpoint(t *testing.T) {
	Convey("Given a running API server", t, func() {
		deps := newMockDeps()
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When opening a session", func() {
			resp := postJSON(t, ts.URL+"/exchanges", `{"player":`+playerJSON+`,"opponent":`+opponentJSON+`}`)
			defer resp.Body.Close()

			Convey("Then the session ID and opening prompt come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				var out struct {
					SessionID string          `json:"session_id"`
					Prompt    exchange.Prompt `json:"prompt"`
				}
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out.SessionID, ShouldEqual, "session-1")
				So(out.Prompt.Position, ShouldEqual, "neutral")
				So(len(out.Prompt.Choices), ShouldEqual, 1)
			})
		})

		Convey("When resolving an action on an open session", func() {
			deps.sessions["session-1"] = true
			resp := postJSON(t, ts.URL+"/exchanges/session-1/actions", `{"action":"hesitate"}`)
			defer resp.Body.Close()

			Convey("Then the resolved exchange is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var out struct {
					Entry  exchange.LogEntry `json:"entry"`
					Prompt *exchange.Prompt  `json:"prompt"`
				}
				So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
				So(out.Entry.ActionKey, ShouldEqual, "hesitate")
				So(out.Prompt, ShouldNotBeNil)
			})
		})

		Convey("When resolving against an unknown session", func() {
			resp := postJSON(t, ts.URL+"/exchanges/missing/actions", `{"action":"hesitate"}`)
			defer resp.Body.Close()

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the resolver returns a wrapped missing-session error", func() {
			deps.sessions["session-1"] = true
			deps.resolveErr = fmt.Errorf("resolve session-1: %w", service.ErrSessionNotFound)
			resp := postJSON(t, ts.URL+"/exchanges/session-1/actions", `{"action":"hesitate"}`)
			defer resp.Body.Close()

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the resolver fails with an unrelated error mentioning not found", func() {
			deps.sessions["session-1"] = true
			deps.resolveErr = fmt.Errorf("opponent profile not found in cache")
			resp := postJSON(t, ts.URL+"/exchanges/session-1/actions", `{"action":"hesitate"}`)
			defer resp.Body.Close()

			Convey("Then it is reported as an internal error", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When the resolver reports an illegal action", func() {
			deps.sessions["session-1"] = true
			deps.resolveErr = exchange.ErrUnknownAction
			resp := postJSON(t, ts.URL+"/exchanges/session-1/actions", `{"action":"moonsault"}`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the path is malformed", func() {
			resp := postJSON(t, ts.URL+"/exchanges/abc/other", `{"action":"hesitate"}`)
			defer resp.Body.Close()

			Convey("Then the request is rejected", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestStatsAndHealthEndpoints(t *testing.T) {
	Convey("Given a running API server", t, func() {
		deps := newMockDeps()
		ts := newTestServer(deps)
		defer ts.Close()

		Convey("When requesting stats", func() {
			resp, err := http.Get(ts.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the stats map is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var stats map[string]any
				So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
				So(stats["started"], ShouldEqual, true)
			})
		})

		Convey("When requesting health", func() {
			resp, err := http.Get(ts.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then metrics are served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
