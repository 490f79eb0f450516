package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// mutate sends write to the backend. On success, and only for an optimistic
// backend, apply is run against in-memory state under the write lock.
func (s *Store) mutate(ctx context.Context, op string, write func(context.Context) error, apply func()) error {
	if err := write(ctx); err != nil {
		s.logger.Error("store: write failed", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if s.backend.Consistency() != repository.ConsistencyOptimistic {
		return nil
	}
	s.mu.Lock()
	apply()
	s.mu.Unlock()
	return nil
}

func (s *Store) add(ctx context.Context, coll repository.Collection, id string, doc any, apply func()) error {
	return s.mutate(ctx, "add "+string(coll), func(ctx context.Context) error {
		return s.backend.Add(ctx, coll, id, doc)
	}, apply)
}

func (s *Store) remove(ctx context.Context, coll repository.Collection, id string, apply func()) error {
	return s.mutate(ctx, "delete "+string(coll), func(ctx context.Context) error {
		return s.backend.Delete(ctx, coll, id)
	}, apply)
}

func (s *Store) patch(ctx context.Context, coll repository.Collection, id string, fields map[string]any, apply func()) error {
	return s.mutate(ctx, "patch "+string(coll), func(ctx context.Context) error {
		return s.backend.Patch(ctx, coll, id, fields)
	}, apply)
}

// prepend returns a new slice with v in front of list.
func prepend[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

// without returns a new slice holding every element of list whose id differs.
func without[T any](list []T, id string, idOf func(T) string) []T {
	return slices.DeleteFunc(slices.Clone(list), func(v T) bool { return idOf(v) == id })
}

// update returns a new slice where every element with the given id is replaced
// by fn applied to it.
func update[T any](list []T, id string, idOf func(T) string, fn func(T) T) []T {
	out := slices.Clone(list)
	for i := range out {
		if idOf(out[i]) == id {
			out[i] = fn(out[i])
		}
	}
	return out
}

func jobID(j models.Job) string { return j.ID }
func serviceID(v models.ServiceItem) string { return v.ID }
func announcementID(a models.Announcement) string { return a.ID }
func agencyID(a models.RecruitmentAgency) string { return a.ID }
func articleID(a models.Article) string { return a.ID }
func sourceID(v models.SourceItem) string { return v.ID }
func userID(u models.User) string { return u.ID }

// Jobs

func (s *Store) AddJob(ctx context.Context, j models.Job) error {
	return s.add(ctx, repository.Jobs, j.ID, j, func() { s.jobs = prepend(s.jobs, j) })
}

func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return s.remove(ctx, repository.Jobs, id, func() { s.jobs = without(s.jobs, id, jobID) })
}

func (s *Store) UpdateJob(ctx context.Context, id string, p models.JobPatch) error {
	return s.patch(ctx, repository.Jobs, id, p.Fields(), func() {
		s.jobs = update(s.jobs, id, jobID, p.Apply)
	})
}

// Services

func (s *Store) AddService(ctx context.Context, v models.ServiceItem) error {
	return s.add(ctx, repository.Services, v.ID, v, func() { s.services = prepend(s.services, v) })
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.remove(ctx, repository.Services, id, func() { s.services = without(s.services, id, serviceID) })
}

// SetServiceStatus moves a service through moderation.
func (s *Store) SetServiceStatus(ctx context.Context, id string, status models.ItemStatus) error {
	return s.patch(ctx, repository.Services, id, map[string]any{"status": status}, func() {
		s.services = update(s.services, id, serviceID, func(v models.ServiceItem) models.ServiceItem {
			v.Status = status
			return v
		})
	})
}

// Announcements

func (s *Store) AddAnnouncement(ctx context.Context, a models.Announcement) error {
	return s.add(ctx, repository.Announcements, a.ID, a, func() {
		s.announcements = prepend(s.announcements, a)
	})
}

func (s *Store) DeleteAnnouncement(ctx context.Context, id string) error {
	return s.remove(ctx, repository.Announcements, id, func() {
		s.announcements = without(s.announcements, id, announcementID)
	})
}

// ToggleAnnouncementImportance flips the importance flag of the announcement
// currently held in memory. An unknown id is a no-op.
func (s *Store) ToggleAnnouncementImportance(ctx context.Context, id string) error {
	s.mu.RLock()
	idx := slices.IndexFunc(s.announcements, func(a models.Announcement) bool { return a.ID == id })
	var next bool
	if idx >= 0 {
		next = !s.announcements[idx].IsImportant
	}
	s.mu.RUnlock()
	if idx < 0 {
		return nil
	}

	return s.patch(ctx, repository.Announcements, id, map[string]any{"isImportant": next}, func() {
		s.announcements = update(s.announcements, id, announcementID, func(a models.Announcement) models.Announcement {
			a.IsImportant = next
			return a
		})
	})
}

// Agencies

func (s *Store) AddAgency(ctx context.Context, a models.RecruitmentAgency) error {
	return s.add(ctx, repository.Agencies, a.ID, a, func() { s.agencies = prepend(s.agencies, a) })
}

func (s *Store) DeleteAgency(ctx context.Context, id string) error {
	return s.remove(ctx, repository.Agencies, id, func() { s.agencies = without(s.agencies, id, agencyID) })
}

// Articles

func (s *Store) AddArticle(ctx context.Context, a models.Article) error {
	return s.add(ctx, repository.Articles, a.ID, a, func() { s.articles = prepend(s.articles, a) })
}

func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	return s.remove(ctx, repository.Articles, id, func() { s.articles = without(s.articles, id, articleID) })
}

func (s *Store) SetArticleStatus(ctx context.Context, id string, status models.ItemStatus) error {
	return s.patch(ctx, repository.Articles, id, map[string]any{"status": status}, func() {
		s.articles = update(s.articles, id, articleID, func(a models.Article) models.Article {
			a.Status = status
			return a
		})
	})
}

// Sources

func (s *Store) AddJobSource(ctx context.Context, v models.SourceItem) error {
	return s.add(ctx, repository.JobSources, v.ID, v, func() { s.jobSources = prepend(s.jobSources, v) })
}

func (s *Store) DeleteJobSource(ctx context.Context, id string) error {
	return s.remove(ctx, repository.JobSources, id, func() { s.jobSources = without(s.jobSources, id, sourceID) })
}

func (s *Store) AddNewsSource(ctx context.Context, v models.SourceItem) error {
	return s.add(ctx, repository.NewsSources, v.ID, v, func() { s.newsSources = prepend(s.newsSources, v) })
}

func (s *Store) DeleteNewsSource(ctx context.Context, id string) error {
	return s.remove(ctx, repository.NewsSources, id, func() { s.newsSources = without(s.newsSources, id, sourceID) })
}

// Users

func (s *Store) UpdateUserRole(ctx context.Context, id string, role models.UserRole) error {
	return s.patch(ctx, repository.Users, id, map[string]any{"role": role}, func() {
		s.users = update(s.users, id, userID, func(u models.User) models.User {
			u.Role = role
			return u
		})
	})
}

func (s *Store) UpdateUserStatus(ctx context.Context, id string, status models.UserStatus) error {
	return s.patch(ctx, repository.Users, id, map[string]any{"status": status}, func() {
		s.users = update(s.users, id, userID, func(u models.User) models.User {
			u.Status = status
			return u
		})
	})
}

// DeleteUser removes the user record only; services and articles that
// reference it are left in place.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.remove(ctx, repository.Users, id, func() { s.users = without(s.users, id, userID) })
}

// UpdateSettings replaces the settings singleton in memory and in the local
// cache in every mode, then writes it to the backend.
func (s *Store) UpdateSettings(ctx context.Context, settings models.SiteSettings) error {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	if s.storage != nil {
		b, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("marshal settings: %w", err)
		}
		if err := s.storage.SetItem(ctx, repository.KeySiteSettings, string(b)); err != nil {
			s.logger.Warn("store: cache settings", slog.Any("error", err))
		}
	}

	if err := s.backend.PutSettings(ctx, settings); err != nil {
		s.logger.Error("store: write failed", slog.String("op", "put settings"), slog.Any("error", err))
		return fmt.Errorf("put settings: %w", err)
	}
	return nil
}
