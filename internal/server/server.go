package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/drewdunne/mrboard/internal/metrics"
	"github.com/drewdunne/mrboard/internal/poller"
)

// HealthResponse represents the health check response structure.
type HealthResponse struct {
	Status string        `json:"status"`
	Tick   poller.Status `json:"tick"`
}

// StatusSource reports the outcome of the latest refresh.
type StatusSource interface {
	Status() poller.Status
}

// Server is the local status endpoint for the dashboard.
type Server struct {
	addr         string
	source       StatusSource
	mux          *http.ServeMux
	httpServer   *httpServer
	httpServerMu sync.RWMutex  // protects httpServer pointer
	ready        chan struct{} // closed when server is ready to accept connections
}

// New creates a new Server listening on addr once started.
func New(addr string, source StatusSource) *Server {
	s := &Server{
		addr:   addr,
		source: source,
		mux:    http.NewServeMux(),
		ready:  make(chan struct{}),
	}
	s.routes()
	return s
}

// Ready returns a channel that is closed when the server is ready to accept connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// routes sets up the HTTP routes.
func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
}

// handleHealth responds with the status of the latest tick.
// "starting" until the first tick, "degraded" after a failed one.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tick := s.source.Status()

	status := "ok"
	switch {
	case tick.TickID == "":
		status = "starting"
	case !tick.Healthy():
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: status, Tick: tick})
}

// handleMetrics responds with current operational metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := metrics.Get()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}
