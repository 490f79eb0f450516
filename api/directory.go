package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/garnizeh/jobboard/internal/store"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DirectoryHandler serves the admin-curated link lists: recruitment agencies
// and the external job and news sources.
type DirectoryHandler struct {
	store    *store.Store
	sessions *SessionRegistry
}

func NewDirectoryHandler(s *store.Store, sessions *SessionRegistry) *DirectoryHandler {
	return &DirectoryHandler{store: s, sessions: sessions}
}

func (h *DirectoryHandler) ListAgencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.Agencies(), http.StatusOK)
}

func (h *DirectoryHandler) CreateAgency(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	var a models.RecruitmentAgency
	if err := decodeJSON(r, &a); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(a.Name) == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	a.ID = uuid.NewString()
	if err := h.store.AddAgency(r.Context(), a); err != nil {
		writeStoreError(w, "add agency", err)
		return
	}
	writeJSON(w, a, http.StatusCreated)
}

func (h *DirectoryHandler) DeleteAgency(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "delete agency", h.store.DeleteAgency)
}

func (h *DirectoryHandler) ListJobSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.JobSources(), http.StatusOK)
}

func (h *DirectoryHandler) CreateJobSource(w http.ResponseWriter, r *http.Request) {
	h.createSource(w, r, "add job source", h.store.AddJobSource)
}

func (h *DirectoryHandler) DeleteJobSource(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "delete job source", h.store.DeleteJobSource)
}

func (h *DirectoryHandler) ListNewsSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.NewsSources(), http.StatusOK)
}

func (h *DirectoryHandler) CreateNewsSource(w http.ResponseWriter, r *http.Request) {
	h.createSource(w, r, "add news source", h.store.AddNewsSource)
}

func (h *DirectoryHandler) DeleteNewsSource(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "delete news source", h.store.DeleteNewsSource)
}

func (h *DirectoryHandler) createSource(w http.ResponseWriter, r *http.Request, op string, add func(context.Context, models.SourceItem) error) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	var v models.SourceItem
	if err := decodeJSON(r, &v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.URL) == "" {
		http.Error(w, "name and url required", http.StatusBadRequest)
		return
	}
	v.ID = uuid.NewString()
	if err := add(r.Context(), v); err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, v, http.StatusCreated)
}

func (h *DirectoryHandler) remove(w http.ResponseWriter, r *http.Request, op string, del func(context.Context, string) error) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := del(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
