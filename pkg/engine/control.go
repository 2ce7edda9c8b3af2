// Control endpoints for test harnesses: health, readiness, store
// inspection, and state reset without a process restart.

package engine

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/parkit/parkmock/pkg/httputil"
)

func newInstanceID() string {
	return uuid.NewString()
}

func (s *Server) controlRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/__parkmock/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/__parkmock/ready", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/__parkmock/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/__parkmock/state/reset", s.handleReset).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	uptime := time.Duration(0)
	if s.running {
		uptime = time.Since(s.startTime)
	}
	s.mu.Unlock()

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"instance": s.instanceID,
		"uptime":   uptime.String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ready": true})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.handler.Store()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"users":         len(st.Users()),
		"vehicles":      len(st.Vehicles()),
		"parking_spots": len(st.ParkingSpots()),
		"reservations":  st.ReservationCount(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.handler.Store().Reset()
	s.log.Info("store reset to seed state")
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "reset"})
}
