package api

import (
	"net/http"

	"github.com/garnizeh/jobboard/internal/store"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/gorilla/mux"
)

// AdminHandler serves user administration, the dashboard counters and the
// site settings.
type AdminHandler struct {
	store    *store.Store
	sessions *SessionRegistry
}

func NewAdminHandler(s *store.Store, sessions *SessionRegistry) *AdminHandler {
	return &AdminHandler{store: s, sessions: sessions}
}

type roleRequest struct {
	Role models.UserRole `json:"role"`
}

type userStatusRequest struct {
	Status models.UserStatus `json:"status"`
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	writeJSON(w, h.store.Users(), http.StatusOK)
}

func (h *AdminHandler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	var req roleRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !req.Role.Valid() {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}
	if err := h.store.UpdateUserRole(r.Context(), mux.Vars(r)["id"], req.Role); err != nil {
		writeStoreError(w, "update user role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	var req userStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}
	if err := h.store.UpdateUserStatus(r.Context(), mux.Vars(r)["id"], req.Status); err != nil {
		writeStoreError(w, "update user status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteUser removes the user record only; their jobs, services and articles
// stay.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := h.store.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	writeJSON(w, h.store.Stats(), http.StatusOK)
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.Settings(), http.StatusOK)
}

func (h *AdminHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	var s models.SiteSettings
	if err := decodeJSON(r, &s); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.store.UpdateSettings(r.Context(), s); err != nil {
		writeStoreError(w, "update settings", err)
		return
	}
	writeJSON(w, h.store.Settings(), http.StatusOK)
}
