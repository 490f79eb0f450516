package api

import (
	"net/http"
	"strings"

	"github.com/garnizeh/jobboard/internal/store"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Defaults applied to jobs posted through the form.
const (
	JustPosted        = "الآن"
	UnknownCompany    = "شركة غير معروفة"
	UnspecifiedSalary = "غير محدد"
	CommunitySource   = "مجتمع العمل العراقي"
)

type JobsHandler struct {
	store    *store.Store
	sessions *SessionRegistry
}

func NewJobsHandler(s *store.Store, sessions *SessionRegistry) *JobsHandler {
	return &JobsHandler{store: s, sessions: sessions}
}

// ListJobs returns the jobs matching the q, governorate, sector and type
// query parameters.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.JobFilter{
		Query:       q.Get("q"),
		Governorate: q.Get("governorate"),
		Sector:      models.Sector(q.Get("sector")),
		Type:        models.JobType(q.Get("type")),
	}
	writeJSON(w, h.store.SearchJobs(f), http.StatusOK)
}

func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	for _, j := range h.store.Jobs() {
		if j.ID == id {
			writeJSON(w, j, http.StatusOK)
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	u, ok := h.sessions.requireRole(w, r, models.RoleRecruiter, models.RoleAdmin)
	if !ok {
		return
	}

	var j models.Job
	if err := decodeJSON(r, &j); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(j.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	j = withJobDefaults(j, u)
	if err := h.store.AddJob(r.Context(), j); err != nil {
		writeStoreError(w, "add job", err)
		return
	}

	writeJSON(w, j, http.StatusCreated)
}

// withJobDefaults fills the fields the posting form leaves to the server.
// The id and posting time are always assigned here.
func withJobDefaults(j models.Job, u *models.User) models.Job {
	j.ID = uuid.NewString()
	j.PostedAt = JustPosted
	if j.Company == "" {
		j.Company = u.CompanyName
	}
	if j.Company == "" {
		j.Company = UnknownCompany
	}
	if j.City == "" {
		j.City = j.Location
	}
	if j.Salary == "" {
		j.Salary = UnspecifiedSalary
	}
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	if j.Source == "" {
		j.Source = CommunitySource
	}
	j.Views = 0
	return j
}

func (h *JobsHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleRecruiter, models.RoleAdmin); !ok {
		return
	}

	var p models.JobPatch
	if err := decodeJSON(r, &p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.store.UpdateJob(r.Context(), mux.Vars(r)["id"], p); err != nil {
		writeStoreError(w, "update job", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if err := h.store.DeleteJob(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, "delete job", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
