package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Probe tracks liveness and readiness of the trading engine. The engine is
// live as soon as the process runs and ready once startup recovery has
// completed and the loops are running.
type Probe struct {
	startTime time.Time
	ready     atomic.Bool
	state     atomic.Value // string: what the engine is currently doing
}

// New creates a new Probe.
func New() *Probe {
	p := &Probe{
		startTime: time.Now(),
	}
	p.state.Store("starting")
	return p
}

// SetReady marks the engine as ready to trade.
func (p *Probe) SetReady(ready bool) {
	p.ready.Store(ready)
}

// SetState records a human-readable engine state ("recovering", "scanning",
// "trading", "paused") surfaced on the readiness endpoint.
func (p *Probe) SetState(state string) {
	p.state.Store(state)
}

// Response is the body of both probe endpoints.
type Response struct {
	Status string `json:"status"`
	State  string `json:"state,omitempty"`
	Uptime string `json:"uptime"`
}

// Health returns an HTTP handler for liveness checks. Always 200 while the
// process runs.
func (p *Probe) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Response{
			Status: "healthy",
			Uptime: time.Since(p.startTime).String(),
		})
	}
}

// Ready returns an HTTP handler for readiness checks. 200 once the engine is
// ready, 503 before that.
func (p *Probe) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, _ := p.state.Load().(string)

		if !p.ready.Load() {
			writeJSON(w, http.StatusServiceUnavailable, Response{
				Status: "not_ready",
				State:  state,
				Uptime: time.Since(p.startTime).String(),
			})
			return
		}

		writeJSON(w, http.StatusOK, Response{
			Status: "ready",
			State:  state,
			Uptime: time.Since(p.startTime).String(),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
