package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/okdaichi/graphd/internal/version"
)

// Status is the JSON body served at /healthz.
type Status struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	Uptime         string    `json:"uptime"`
	Version        string    `json:"version"`
	ActiveSessions int64     `json:"active_sessions"`
}

// StatusHandler tracks liveness/readiness state for the server's
// optional HTTP side-channel. graphd has no upstream dependency to
// degrade readiness on, so it is "healthy" the instant it starts
// listening.
type StatusHandler struct {
	startedAt time.Time
	active    atomic.Int64
}

// NewStatusHandler returns a StatusHandler whose uptime clock starts now.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{startedAt: time.Now()}
}

func (h *StatusHandler) IncrementSessions() { h.active.Add(1) }
func (h *StatusHandler) DecrementSessions() { h.active.Add(-1) }

// GetStatus returns a snapshot of the current health state.
func (h *StatusHandler) GetStatus() Status {
	return Status{
		Status:         "healthy",
		Timestamp:      time.Now(),
		Uptime:         time.Since(h.startedAt).String(),
		Version:        version.Short(),
		ActiveSessions: h.active.Load(),
	}
}

// ServeHTTP handles GET/HEAD /healthz.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	status := h.GetStatus()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(status)
}

// ServeLive handles GET /healthz/live: a process that can answer at
// all is, by definition, alive.
func (h *StatusHandler) ServeLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ServeReady handles GET /healthz/ready. graphd has no external
// dependency to wait on, so it is ready as soon as it is alive.
func (h *StatusHandler) ServeReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"ready": true})
}
