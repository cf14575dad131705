package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/models"
	"taskboard/internal/store"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store     *store.TaskStore
	templates *template.Template
	logger    *slog.Logger

	// StorageName describes the backend on the about page.
	StorageName string

	newID func() string
	now   func() time.Time
}

// New creates a new Handlers instance. tmpl may be nil, in which case
// page handlers only write the status code.
func New(s *store.TaskStore, tmpl *template.Template, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handlers{
		store:     s,
		templates: tmpl,
		logger:    logger,
		newID:     models.GenerateID,
		now:       time.Now,
	}
}

// taskID extracts the task id from URL parameters.
func taskID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	w.Write([]byte(message))
}

func (h *Handlers) respondServerError(w http.ResponseWriter, err error) {
	h.logger.Error("internal server error", "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error")
}

// respondStoreError maps a failed read or write of the task collection.
func (h *Handlers) respondStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrQuotaExceeded) {
		h.logger.Warn("task write rejected", "error", err)
		respondError(w, http.StatusInsufficientStorage, "storage quota exceeded")
		return
	}
	h.respondServerError(w, err)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}

func (h *Handlers) render(w http.ResponseWriter, name string, data interface{}) {
	if h.templates == nil {
		// For testing without templates
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.respondServerError(w, err)
	}
}
