package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/persona/pkg/metrics"
)

// HealthHandler handles liveness probes.
type HealthHandler struct {
	views ViewProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(views ViewProvider) *HealthHandler {
	return &HealthHandler{views: views}
}

type healthResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
	Closed    bool   `json:"closed"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := healthResponse{Status: "ok"}
	if v := h.views.View(); v != nil {
		resp.SessionID, resp.Closed = v.SessionID, v.Closed
	}
	writeJSON(w, http.StatusOK, resp)
}

// MetricsHandler serves the custom Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
