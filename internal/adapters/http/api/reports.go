package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/persona/internal/adapters/repository"
	"github.com/okian/persona/internal/domain/model"
)

const (
	defaultMaxLimit = 100
	defaultTopLimit = 10
)

// ReportsHandler serves archived analysis runs.
type ReportsHandler struct {
	store    repository.Store
	maxLimit int
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(store repository.Store, maxLimit int) *ReportsHandler {
	return &ReportsHandler{store: store, maxLimit: maxLimit}
}

// HandleLatest handles GET /reports/latest requests.
func (h *ReportsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	run, err := h.store.LatestRun(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleTop handles GET /reports/top?persona=P&limit=N requests against the
// latest run.
func (h *ReportsHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	p, err := model.ParsePersona(q.Get("persona"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	n := defaultTopLimit
	if s := q.Get("limit"); s != "" {
		n, err = strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: limit %q", ErrBadRequest, s))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit above %d", ErrBadRequest, h.maxLimit))
		return
	}

	run, err := h.store.LatestRun(r.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	entries, err := h.store.TopN(r.Context(), run.ID, string(p), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if entries == nil {
		entries = []repository.PersonaReport{}
	}
	writeJSON(w, http.StatusOK, entries)
}
