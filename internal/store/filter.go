package store

import (
	"strings"

	"github.com/garnizeh/jobboard/pkg/models"
)

// JobFilter is the listing filter. Empty fields match everything.
type JobFilter struct {
	Query       string
	Governorate string
	Sector      models.Sector
	Type        models.JobType
}

// Matches reports whether j passes every non-empty component of f. Query is
// a case-insensitive substring match against the title or the company.
func (f JobFilter) Matches(j models.Job) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(j.Title), q) && !strings.Contains(strings.ToLower(j.Company), q) {
			return false
		}
	}
	if f.Governorate != "" && f.Governorate != j.Location {
		return false
	}
	if f.Sector != "" && f.Sector != j.Sector {
		return false
	}
	if f.Type != "" && f.Type != j.Type {
		return false
	}
	return true
}

// FilterJobs returns the jobs matching f in their original order.
func FilterJobs(jobs []models.Job, f JobFilter) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Matches(j) {
			out = append(out, j)
		}
	}
	return out
}
