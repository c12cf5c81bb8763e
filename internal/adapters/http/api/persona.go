package api

import "net/http"

// PersonaHandler serves the live session view.
type PersonaHandler struct {
	views ViewProvider
}

// NewPersonaHandler creates a new persona handler.
func NewPersonaHandler(views ViewProvider) *PersonaHandler {
	return &PersonaHandler{views: views}
}

// HandlePersona handles GET /persona requests.
func (h *PersonaHandler) HandlePersona(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	v := h.views.View()
	if v == nil {
		writeError(w, http.StatusServiceUnavailable, "no_session", ErrNoSession)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
