package api_test

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/garnizeh/jobboard/api"
	"github.com/garnizeh/jobboard/pkg/models"
)

func TestListJobs_Filters(t *testing.T) {
	e := newEnv(t, envOptions{})
	token := e.session(t)

	tests := []struct {
		name  string
		query url.Values
		want  []string
	}{
		{name: "All", query: url.Values{}, want: []string{"1", "2"}},
		{name: "Governorate", query: url.Values{"governorate": {"البصرة"}}, want: []string{"2"}},
		{name: "Sector", query: url.Values{"sector": {string(models.SectorTech)}}, want: []string{"1"}},
		{name: "NoMatch", query: url.Values{"q": {"طبيب"}}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, token, http.MethodGet, "/v1/jobs?"+tt.query.Encode(), nil)
			expectStatus(t, w, http.StatusOK)
			var jobs []models.Job
			decode(t, w, &jobs)
			if len(jobs) != len(tt.want) {
				t.Fatalf("got %d jobs, want %v", len(jobs), tt.want)
			}
			for i, j := range jobs {
				if j.ID != tt.want[i] {
					t.Fatalf("jobs[%d] = %s, want %s", i, j.ID, tt.want[i])
				}
			}
		})
	}
}

func TestCreateJob_RoleGating(t *testing.T) {
	e := newEnv(t, envOptions{})
	body := map[string]any{"title": "محاسب", "location": "بغداد", "sector": models.SectorFinance}

	tests := []struct {
		name       string
		token      func(t *testing.T) string
		wantStatus int
	}{
		{name: "Anonymous", token: func(t *testing.T) string { return e.session(t) }, wantStatus: http.StatusUnauthorized},
		{name: "Seeker", token: func(t *testing.T) string { return e.login(t, "seeker") }, wantStatus: http.StatusForbidden},
		{name: "Employer", token: func(t *testing.T) string { return e.login(t, "employer") }, wantStatus: http.StatusCreated},
		{name: "Admin", token: func(t *testing.T) string { return e.login(t, "admin") }, wantStatus: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, e.do(t, tt.token(t), http.MethodPost, "/v1/jobs", body), tt.wantStatus)
		})
	}
}

func TestCreateJob_Defaults(t *testing.T) {
	e := newEnv(t, envOptions{})
	token := e.login(t, "employer")

	expectStatus(t, e.do(t, token, http.MethodPost, "/v1/jobs", map[string]any{"location": "بغداد"}), http.StatusBadRequest)

	w := e.do(t, token, http.MethodPost, "/v1/jobs", map[string]any{
		"title":    "مطور واجهات",
		"location": "البصرة",
		"sector":   models.SectorTech,
		"type":     models.JobTypeFullTime,
		"views":    99,
	})
	expectStatus(t, w, http.StatusCreated)
	var j models.Job
	decode(t, w, &j)

	if j.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if j.Company != "شركة النهرين للتقنية" {
		t.Fatalf("company = %q, want the recruiter's company", j.Company)
	}
	if j.Salary != api.UnspecifiedSalary || j.PostedAt != api.JustPosted || j.Source != api.CommunitySource {
		t.Fatalf("form defaults not applied: %+v", j)
	}
	if j.Views != 0 || j.Requirements == nil || len(j.Requirements) != 0 {
		t.Fatalf("expected zero views and empty requirements: %+v", j)
	}

	// newest first
	if got := e.store.Jobs()[0].ID; got != j.ID {
		t.Fatalf("new job not at the front, got %s", got)
	}

	// admins have no company
	admin := e.login(t, "admin")
	w = e.do(t, admin, http.MethodPost, "/v1/jobs", map[string]any{"title": "سائق"})
	expectStatus(t, w, http.StatusCreated)
	decode(t, w, &j)
	if j.Company != api.UnknownCompany {
		t.Fatalf("company = %q, want %q", j.Company, api.UnknownCompany)
	}
}

func TestCreateJob_ServerAssignsIDAndPostedAt(t *testing.T) {
	e := newEnv(t, envOptions{})
	employer := e.login(t, "employer")
	admin := e.login(t, "admin")

	w := e.do(t, employer, http.MethodPost, "/v1/jobs", map[string]any{
		"id":       "1",
		"title":    "مطور",
		"postedAt": "x",
	})
	expectStatus(t, w, http.StatusCreated)
	var j models.Job
	decode(t, w, &j)
	if j.ID == "" || j.ID == "1" {
		t.Fatalf("expected a fresh id, got %q", j.ID)
	}
	if j.PostedAt != api.JustPosted {
		t.Fatalf("postedAt = %q, want %q", j.PostedAt, api.JustPosted)
	}

	count := 0
	for _, job := range e.store.Jobs() {
		if job.ID == "1" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("jobs with id 1 = %d, want 1", count)
	}

	expectStatus(t, e.do(t, admin, http.MethodDelete, "/v1/jobs/1", nil), http.StatusNoContent)
	if n := len(e.store.Jobs()); n != 2 {
		t.Fatalf("delete of job 1 left %d jobs, want 2", n)
	}
	expectStatus(t, e.do(t, admin, http.MethodGet, "/v1/jobs/"+j.ID, nil), http.StatusOK)
}

func TestUpdateAndDeleteJob(t *testing.T) {
	e := newEnv(t, envOptions{})
	employer := e.login(t, "employer")
	admin := e.login(t, "admin")

	expectStatus(t, e.do(t, employer, http.MethodPatch, "/v1/jobs/1", map[string]any{"salary": "2,000,000 IQD", "isUrgent": true}), http.StatusNoContent)
	w := e.do(t, employer, http.MethodGet, "/v1/jobs/1", nil)
	expectStatus(t, w, http.StatusOK)
	var j models.Job
	decode(t, w, &j)
	if j.Salary != "2,000,000 IQD" || !j.IsUrgent {
		t.Fatalf("patch not applied: %+v", j)
	}
	if j.Title == "" || j.Company == "" {
		t.Fatalf("patch cleared untouched fields: %+v", j)
	}

	expectStatus(t, e.do(t, employer, http.MethodDelete, "/v1/jobs/1", nil), http.StatusForbidden)
	expectStatus(t, e.do(t, admin, http.MethodDelete, "/v1/jobs/1", nil), http.StatusNoContent)
	expectStatus(t, e.do(t, admin, http.MethodGet, "/v1/jobs/1", nil), http.StatusNotFound)
}

func TestCreateJob_WriteFailure(t *testing.T) {
	e := newEnv(t, envOptions{})
	token := e.login(t, "employer")
	e.backend.WriteErr = errors.New("unavailable")

	expectStatus(t, e.do(t, token, http.MethodPost, "/v1/jobs", map[string]any{"title": "مهندس"}), http.StatusBadGateway)
	if n := len(e.store.Jobs()); n != 2 {
		t.Fatalf("failed write must not change jobs, got %d", n)
	}
}
