package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/garnizeh/jobboard/internal/store"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DefaultArticleCategory is used when an article is submitted without one.
const DefaultArticleCategory = "عام"

// ContentHandler serves the moderated community content: services, articles
// and announcements.
type ContentHandler struct {
	store    *store.Store
	sessions *SessionRegistry
	now      func() time.Time
}

func NewContentHandler(s *store.Store, sessions *SessionRegistry) *ContentHandler {
	return &ContentHandler{store: s, sessions: sessions, now: time.Now}
}

type publishedService struct {
	models.ServiceItem
	Publisher string `json:"publisher"`
}

type publishedArticle struct {
	models.Article
	Publisher string `json:"publisher"`
}

type statusRequest struct {
	Status models.ItemStatus `json:"status"`
}

func (h *ContentHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	items := h.store.ApprovedServices()
	out := make([]publishedService, 0, len(items))
	for _, v := range items {
		out = append(out, publishedService{ServiceItem: v, Publisher: h.store.PublisherName(v.UserID)})
	}
	writeJSON(w, out, http.StatusOK)
}

func (h *ContentHandler) ListPendingServices(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	writeJSON(w, h.store.PendingServices(), http.StatusOK)
}

func (h *ContentHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.sessions.currentUser(w, r)
	if !ok {
		return
	}

	var v models.ServiceItem
	if err := decodeJSON(r, &v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(v.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	v.ID = uuid.NewString()
	v.UserID = u.ID
	v.Status = models.ItemStatusPending
	if err := h.store.AddService(r.Context(), v); err != nil {
		writeStoreError(w, "add service", err)
		return
	}

	writeJSON(w, v, http.StatusCreated)
}

func (h *ContentHandler) SetServiceStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := h.moderate(w, r)
	if !ok {
		return
	}
	if err := h.store.SetServiceStatus(r.Context(), mux.Vars(r)["id"], status); err != nil {
		writeStoreError(w, "set service status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := h.store.DeleteService(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, "delete service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	items := h.store.ApprovedArticles()
	out := make([]publishedArticle, 0, len(items))
	for _, a := range items {
		out = append(out, publishedArticle{Article: a, Publisher: h.store.PublisherName(a.UserID)})
	}
	writeJSON(w, out, http.StatusOK)
}

func (h *ContentHandler) ListPendingArticles(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	writeJSON(w, h.store.PendingArticles(), http.StatusOK)
}

// CreateArticle queues a member's article for review. Articles written by an
// admin are published directly.
func (h *ContentHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.sessions.currentUser(w, r)
	if !ok {
		return
	}

	var a models.Article
	if err := decodeJSON(r, &a); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Content) == "" {
		http.Error(w, "title and content required", http.StatusBadRequest)
		return
	}
	if a.Category == "" {
		a.Category = DefaultArticleCategory
	}
	if !slices.Contains(models.ArticleCategories, a.Category) {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}

	a.ID = uuid.NewString()
	a.Author = u.Name
	a.UserID = u.ID
	a.Date = h.now().Format(time.DateOnly)
	a.Status = models.ItemStatusPending
	if u.Role == models.RoleAdmin {
		a.Status = models.ItemStatusApproved
	}
	if err := h.store.AddArticle(r.Context(), a); err != nil {
		writeStoreError(w, "add article", err)
		return
	}

	writeJSON(w, a, http.StatusCreated)
}

func (h *ContentHandler) SetArticleStatus(w http.ResponseWriter, r *http.Request) {
	status, ok := h.moderate(w, r)
	if !ok {
		return
	}
	if err := h.store.SetArticleStatus(r.Context(), mux.Vars(r)["id"], status); err != nil {
		writeStoreError(w, "set article status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := h.store.DeleteArticle(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, "delete article", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// moderate checks the caller is an admin and decodes the requested status.
func (h *ContentHandler) moderate(w http.ResponseWriter, r *http.Request) (models.ItemStatus, bool) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return "", false
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return "", false
	}
	if !req.Status.Valid() {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return "", false
	}
	return req.Status, true
}

func (h *ContentHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.store.Announcements(), http.StatusOK)
}

func (h *ContentHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}

	var a models.Announcement
	if err := decodeJSON(r, &a); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(a.Content) == "" {
		http.Error(w, "content required", http.StatusBadRequest)
		return
	}
	a.ID = uuid.NewString()
	if a.Date == "" {
		a.Date = h.now().Format(time.DateOnly)
	}
	if err := h.store.AddAnnouncement(r.Context(), a); err != nil {
		writeStoreError(w, "add announcement", err)
		return
	}

	writeJSON(w, a, http.StatusCreated)
}

func (h *ContentHandler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := h.store.DeleteAnnouncement(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, "delete announcement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContentHandler) ToggleAnnouncement(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := h.store.ToggleAnnouncementImportance(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, "toggle announcement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
