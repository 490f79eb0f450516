package store

import "github.com/garnizeh/jobboard/pkg/models"

const (
	PlatformPublisher = "المنصة العامة"
	UnknownPublisher  = "مستخدم المنصة"
)

// SearchJobs filters the current jobs snapshot.
func (s *Store) SearchJobs(f JobFilter) []models.Job {
	return FilterJobs(s.Jobs(), f)
}

// visible reports whether a moderated item is shown publicly. Items created
// before moderation existed carry no status and stay visible.
func visible(status models.ItemStatus) bool {
	return status == "" || status == models.ItemStatusApproved
}

func (s *Store) ApprovedServices() []models.ServiceItem {
	return filter(s.Services(), func(v models.ServiceItem) bool { return visible(v.Status) })
}

func (s *Store) PendingServices() []models.ServiceItem {
	return filter(s.Services(), func(v models.ServiceItem) bool { return v.Status == models.ItemStatusPending })
}

func (s *Store) ApprovedArticles() []models.Article {
	return filter(s.Articles(), func(a models.Article) bool { return visible(a.Status) })
}

func (s *Store) PendingArticles() []models.Article {
	return filter(s.Articles(), func(a models.Article) bool { return a.Status == models.ItemStatusPending })
}

// PublisherName resolves the display name of a service or article owner.
func (s *Store) PublisherName(userID string) string {
	if userID == "" {
		return PlatformPublisher
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == userID {
			return u.Name
		}
	}
	return UnknownPublisher
}

// User returns the user with the given id from the users collection.
func (s *Store) User(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Stats holds the admin overview counters.
type Stats struct {
	Jobs            int `json:"jobs"`
	Users           int `json:"users"`
	Services        int `json:"services"`
	Articles        int `json:"articles"`
	PendingServices int `json:"pendingServices"`
	PendingArticles int `json:"pendingArticles"`
	Announcements   int `json:"announcements"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Jobs:          len(s.jobs),
		Users:         len(s.users),
		Services:      len(s.services),
		Articles:      len(s.articles),
		Announcements: len(s.announcements),
	}
	for _, v := range s.services {
		if v.Status == models.ItemStatusPending {
			st.PendingServices++
		}
	}
	for _, a := range s.articles {
		if a.Status == models.ItemStatusPending {
			st.PendingArticles++
		}
	}
	return st
}

func filter[T any](list []T, keep func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
