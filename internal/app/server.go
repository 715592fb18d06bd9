package app

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/your-org/docrouter/pkg/intake"
)

const maxBodyBytes = 1 << 20

// Handler exposes the routing API:
//
//	POST /route          route one agent result
//	POST /route/batch    route a batch of agent results
//	POST /agents/json    validate a JSON event and route the outcome
//	POST /agents/email   analyze raw email text and route the outcome
//	GET  /healthz        liveness
//	GET  /stats          action-log and dispatch counters
//	GET  /actions/recent recent action-log records
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/route", a.handleRoute)
	r.Post("/route/batch", a.handleBatch)
	r.Post("/agents/json", a.handleJSONAgent)
	r.Post("/agents/email", a.handleEmailAgent)
	r.Get("/stats", a.handleStats)
	r.Get("/actions/recent", a.handleRecent)

	return r
}

func (a *App) handleRoute(w http.ResponseWriter, r *http.Request) {
	var agentResult intake.Result
	if err := decodeJSON(r, &agentResult); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, a.Router.Route(r.Context(), agentResult))
}

func (a *App) handleBatch(w http.ResponseWriter, r *http.Request) {
	var agentResults []intake.Result
	if err := decodeJSON(r, &agentResults); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, a.Router.ProcessBatch(r.Context(), agentResults))
}

// agentResponse pairs an agent's extraction with the routing that followed.
type agentResponse struct {
	Result  intake.Result `json:"result"`
	Routing any           `json:"routing"`
}

func (a *App) handleJSONAgent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := a.Validator.Validate(body)
	routing := a.Router.Route(r.Context(), result)
	writeJSON(w, http.StatusOK, agentResponse{Result: result, Routing: routing})
}

func (a *App) handleEmailAgent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result := a.Email.Process(string(body))
	routing := a.Router.Route(r.Context(), result)
	writeJSON(w, http.StatusOK, agentResponse{Result: result, Routing: routing})
}

func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"actions":  a.Store.Stats(),
		"dispatch": a.Metrics.Snapshot(),
	})
}

func (a *App) handleRecent(w http.ResponseWriter, r *http.Request) {
	n := 20
	if raw := r.URL.Query().Get("n"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			n = v
		}
	}
	writeJSON(w, http.StatusOK, a.Store.Recent(n))
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
