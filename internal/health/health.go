// Package health exposes the daemon's side-channel HTTP surface: a small
// gorilla/mux mux carrying /health, /ready and a Prometheus /metrics
// endpoint. None of this is part of the JSON-RPC wire protocol; it exists
// purely for operators and orchestrators to probe the daemon from outside
// a debugging client.
package health

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sys/unix"

	"github.com/lldb-mcp/server/internal/session"
)

// Metrics holds the Prometheus collectors the daemon updates as it serves
// RPCs.
type Metrics struct {
	Registry *prometheus.Registry

	ActiveSessions  prometheus.Gauge
	RPCRequests     *prometheus.CounterVec
	EventBufferSize *prometheus.GaugeVec
}

// NewMetrics builds and registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lldbmcp",
			Name:      "active_sessions",
			Help:      "Number of live debugging sessions.",
		}),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lldbmcp",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total RPC requests handled, by method and outcome.",
		}, []string{"method", "outcome"}),
		EventBufferSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lldbmcp",
			Subsystem: "events",
			Name:      "buffer_depth",
			Help:      "Current number of queued events per session.",
		}, []string{"sessionId"}),
	}
	reg.MustRegister(m.ActiveSessions, m.RPCRequests, m.EventBufferSize)
	return m
}

// RecordRPC increments the request counter for one dispatched call.
func (m *Metrics) RecordRPC(method string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.RPCRequests.WithLabelValues(method, outcome).Inc()
}

// Server is the health/readiness/metrics HTTP surface, independent of the
// RPC transport.
type Server struct {
	mgr       *session.Manager
	metrics   *Metrics
	startedAt time.Time
	mux       *mux.Router
}

// New builds a health Server wired to mgr for liveness/readiness checks and
// metrics reporting about active sessions.
func New(mgr *session.Manager, metrics *Metrics) *Server {
	s := &Server{mgr: mgr, metrics: metrics, startedAt: time.Now()}
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	metricsHandler := promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
	r.HandleFunc("/metrics", func(w http.ResponseWriter, req *http.Request) {
		s.refreshGauges()
		metricsHandler.ServeHTTP(w, req)
	}).Methods(http.MethodGet)
	s.mux = r
	return s
}

// Handler returns the http.Handler ready to be served.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.refreshGauges()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startedAt).String(),
	})
}

// refreshGauges recomputes the session-derived gauges on demand. Scrape-time
// refresh keeps gauge bookkeeping off the hot RPC path, which only
// increments the request counter; stale session
// labels are reset wholesale so a terminated session's depth doesn't linger.
func (s *Server) refreshGauges() {
	s.metrics.ActiveSessions.Set(float64(len(s.mgr.ListSessions())))
	s.metrics.EventBufferSize.Reset()
	for id, depth := range s.mgr.EventBufferDepths() {
		s.metrics.EventBufferSize.WithLabelValues(id).Set(float64(depth))
	}
}

// handleReady reports readiness plus a liveness cross-check: a tracked
// debuggee PID that no longer exists means the native process died behind
// the engine's back without a corresponding event, which the caller should
// treat as a stale session worth terminating.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stale := make([]string, 0)
	for id, pid := range s.mgr.ProcessPIDs() {
		if err := unix.Kill(int(pid), 0); err != nil {
			stale = append(stale, id)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ready":          true,
		"sessions":       len(s.mgr.ListSessions()),
		"staleProcesses": stale,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
