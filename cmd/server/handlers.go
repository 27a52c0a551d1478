package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/xtding233/awaken-backend/internal/awaken"
	"github.com/xtding233/awaken-backend/internal/logger"
	"github.com/xtding233/awaken-backend/internal/service"
)

type statsResp struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

type simulateResp struct {
	RunID  string    `json:"run_id,omitempty"`
	Policy string    `json:"policy,omitempty"`
	Goal   int       `json:"goal"`
	Trials int       `json:"trials"`
	Seed   uint64    `json:"seed,omitempty"`
	Stats  statsResp `json:"stats"`
	Costs  []int     `json:"costs,omitempty"`
	Err    string    `json:"err,omitempty"`
}

type compareResp struct {
	RunID   string    `json:"run_id,omitempty"`
	A       string    `json:"a,omitempty"`
	B       string    `json:"b,omitempty"`
	PolicyA string    `json:"policy_a,omitempty"`
	PolicyB string    `json:"policy_b,omitempty"`
	Goal    int       `json:"goal"`
	Trials  int       `json:"trials"`
	Seed    uint64    `json:"seed,omitempty"`
	Wins    int       `json:"wins"`
	Losses  int       `json:"losses"`
	Draws   int       `json:"draws"`
	StatsA  statsResp `json:"stats_a"`
	StatsB  statsResp `json:"stats_b"`
	Err     string    `json:"err,omitempty"`
}

type handlers struct {
	svc *service.Service
}

func parseInt(r *http.Request, key string) (*int, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, "invalid " + key
	}
	return &v, ""
}

func parseUint(r *http.Request, key string) (*uint64, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, ""
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, "invalid " + key
	}
	return &v, ""
}

// parseCommon reads goal/trials/seed; msg is non-empty on bad input.
func (h *handlers) parseCommon(r *http.Request) (goal, trials *int, seed *uint64, msg string) {
	if goal, msg = parseInt(r, "goal"); msg != "" {
		return
	}
	if trials, msg = parseInt(r, "trials"); msg != "" {
		return
	}
	seed, msg = parseUint(r, "seed")
	return
}

func toStatsResp(st awaken.Stats) statsResp {
	return statsResp{
		Mean: st.Mean, Var: st.Var, StdDev: st.StdDev,
		Min: st.Min, Max: st.Max,
		P50: st.P50, P90: st.P90, P99: st.P99,
	}
}

func errStatus(err error) int {
	if service.IsConfigError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /simulate?profile=&policy=&goal=&trials=&seed=&costs=1
func (h *handlers) handleSimulate(w http.ResponseWriter, r *http.Request) {
	goal, trials, seed, msg := h.parseCommon(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	res, err := h.svc.Simulate(r.Context(), service.SimulateRequest{
		Profile: q.Get("profile"),
		Policy:  q.Get("policy"),
		Goal:    goal,
		Trials:  trials,
		Seed:    seed,
	})
	if err != nil {
		logger.Warning("simulate request rejected", "err", err)
		writeJSON(w, errStatus(err), simulateResp{Err: err.Error()})
		return
	}
	resp := simulateResp{
		RunID:  res.RunID,
		Policy: res.Policy,
		Goal:   res.Goal,
		Trials: res.Trials,
		Seed:   res.Seed,
		Stats:  toStatsResp(res.Stats),
	}
	if q.Get("costs") == "1" {
		resp.Costs = res.Stats.Samples
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /compare?profile=&a=&b=&goal=&trials=&seed=
func (h *handlers) handleCompare(w http.ResponseWriter, r *http.Request) {
	goal, trials, seed, msg := h.parseCommon(r)
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	q := r.URL.Query()
	res, err := h.svc.Compare(r.Context(), service.CompareRequest{
		Profile: q.Get("profile"),
		A:       q.Get("a"),
		B:       q.Get("b"),
		Goal:    goal,
		Trials:  trials,
		Seed:    seed,
	})
	if err != nil {
		logger.Warning("compare request rejected", "err", err)
		writeJSON(w, errStatus(err), compareResp{Err: err.Error()})
		return
	}
	c := res.Comparison
	writeJSON(w, http.StatusOK, compareResp{
		RunID:   res.RunID,
		A:       res.A,
		B:       res.B,
		PolicyA: res.PolicyA.String(),
		PolicyB: res.PolicyB.String(),
		Goal:    res.Goal,
		Trials:  res.Trials,
		Seed:    res.Seed,
		Wins:    c.Wins,
		Losses:  c.Losses,
		Draws:   c.Draws,
		StatsA:  toStatsResp(c.StatsA),
		StatsB:  toStatsResp(c.StatsB),
	})
}

func (h *handlers) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/simulate", h.handleSimulate)
	mux.HandleFunc("/compare", h.handleCompare)
	return mux
}
