// Package api exposes a small status endpoint for the continuous tracker.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"arango-etl/internal/tracker"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Server serves /healthz and /status for one running tracker.
type Server struct {
	mux *http.ServeMux

	mu     sync.RWMutex
	status Status
}

// NewServer builds a server for the given stream.
func NewServer(stream string) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux: mux,
		status: Status{
			RunID:     uuid.NewString(),
			Stream:    stream,
			StartedAt: time.Now().UTC(),
		},
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/status", s.handleStatus)
}

// RecordTick is wired as the tracker's OnTick callback.
func (s *Server) RecordTick(r tracker.TickReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Ticks++
	s.status.LastTickAt = r.At
	s.status.Watermark = r.Watermark
	s.status.TotalLoaded += r.Summary.Loaded
	s.status.TotalFailed += r.Summary.Failed
	if r.Err != nil {
		s.status.LastError = r.Err.Error()
	} else {
		s.status.LastError = ""
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logrus.Warnf("failed to encode status response: %v", err)
	}
}

// Run starts the HTTP server on the provided port and blocks.
func (s *Server) Run(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logrus.Infof("status API listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}
