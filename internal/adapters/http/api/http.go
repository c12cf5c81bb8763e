// Package api serves the run-mode observer: health, Prometheus metrics, the
// live persona view and, when an archive is attached, past analysis runs.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/persona/internal/adapters/repository"
	"github.com/okian/persona/internal/app"
)

// ViewProvider exposes the latest session snapshot.
type ViewProvider interface {
	View() *app.View
}

// Server wires the observer routes.
type Server struct {
	healthHandler  *HealthHandler
	personaHandler *PersonaHandler
	reportsHandler *ReportsHandler
}

// NewServer creates the observer. reports may be nil.
func NewServer(views ViewProvider, reports repository.Store) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(views),
		personaHandler: NewPersonaHandler(views),
	}
	if reports != nil {
		s.reportsHandler = NewReportsHandler(reports, defaultMaxLimit)
	}
	return s
}

// Register attaches all routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/persona", MetricsMiddleware(s.personaHandler.HandlePersona, "persona"))
	if s.reportsHandler != nil {
		mux.HandleFunc("/reports/latest", MetricsMiddleware(s.reportsHandler.HandleLatest, "reports_latest"))
		mux.HandleFunc("/reports/top", MetricsMiddleware(s.reportsHandler.HandleTop, "reports_top"))
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
