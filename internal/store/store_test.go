package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/garnizeh/jobboard/pkg/repository/mock"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocalStore(t *testing.T) (*Store, *mock.Backend, *mock.Storage) {
	t.Helper()
	b := mock.NewBackend(repository.ConsistencyOptimistic)
	st := mock.NewStorage()
	s := New(b, st, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(s.Close)
	return s, b, st
}

func ids[T any](list []T, idOf func(T) string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, idOf(v))
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestNew_SeedsFixtures(t *testing.T) {
	s, _, _ := newLocalStore(t)

	if got := len(s.Jobs()); got != 2 {
		t.Fatalf("expected 2 fixture jobs, got %d", got)
	}
	if got := len(s.Users()); got != 3 {
		t.Fatalf("expected 3 fixture users, got %d", got)
	}
	if s.Settings() != models.DefaultSiteSettings() {
		t.Fatalf("expected default settings")
	}
}

func TestSnapshots_AreCopies(t *testing.T) {
	s, _, _ := newLocalStore(t)

	jobs := s.Jobs()
	jobs[0].Title = "mutated"
	if s.Jobs()[0].Title == "mutated" {
		t.Fatalf("snapshot mutation leaked into store")
	}
}

func TestLocal_AddDeleteRoundTrip(t *testing.T) {
	s, b, _ := newLocalStore(t)
	ctx := context.Background()
	before := ids(s.Jobs(), jobID)

	j := models.Job{ID: "new", Title: "مطور خلفيات", Company: "شركة"}
	if err := s.AddJob(ctx, j); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	got := s.Jobs()
	if got[0].ID != "new" {
		t.Fatalf("expected new job at the front, got %q", got[0].ID)
	}
	if len(got) != len(before)+1 {
		t.Fatalf("expected %d jobs, got %d", len(before)+1, len(got))
	}

	if err := s.DeleteJob(ctx, "new"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if after := ids(s.Jobs(), jobID); !equalIDs(before, after) {
		t.Fatalf("round trip changed jobs: before %v after %v", before, after)
	}

	w := b.Recorded()
	if len(w) != 2 || w[0].Op != "add" || w[1].Op != "delete" || w[1].ID != "new" {
		t.Fatalf("unexpected backend writes: %+v", w)
	}
}

func TestLocal_AddDeleteEveryCollection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		add   func(*Store) error
		del   func(*Store) error
		count func(*Store) int
		front func(*Store) string
	}{
		{
			name:  "services",
			add:   func(s *Store) error { return s.AddService(ctx, models.ServiceItem{ID: "x"}) },
			del:   func(s *Store) error { return s.DeleteService(ctx, "x") },
			count: func(s *Store) int { return len(s.Services()) },
			front: func(s *Store) string { return s.Services()[0].ID },
		},
		{
			name:  "announcements",
			add:   func(s *Store) error { return s.AddAnnouncement(ctx, models.Announcement{ID: "x"}) },
			del:   func(s *Store) error { return s.DeleteAnnouncement(ctx, "x") },
			count: func(s *Store) int { return len(s.Announcements()) },
			front: func(s *Store) string { return s.Announcements()[0].ID },
		},
		{
			name:  "agencies",
			add:   func(s *Store) error { return s.AddAgency(ctx, models.RecruitmentAgency{ID: "x"}) },
			del:   func(s *Store) error { return s.DeleteAgency(ctx, "x") },
			count: func(s *Store) int { return len(s.Agencies()) },
			front: func(s *Store) string { return s.Agencies()[0].ID },
		},
		{
			name:  "articles",
			add:   func(s *Store) error { return s.AddArticle(ctx, models.Article{ID: "x"}) },
			del:   func(s *Store) error { return s.DeleteArticle(ctx, "x") },
			count: func(s *Store) int { return len(s.Articles()) },
			front: func(s *Store) string { return s.Articles()[0].ID },
		},
		{
			name:  "job sources",
			add:   func(s *Store) error { return s.AddJobSource(ctx, models.SourceItem{ID: "x"}) },
			del:   func(s *Store) error { return s.DeleteJobSource(ctx, "x") },
			count: func(s *Store) int { return len(s.JobSources()) },
			front: func(s *Store) string { return s.JobSources()[0].ID },
		},
		{
			name:  "news sources",
			add:   func(s *Store) error { return s.AddNewsSource(ctx, models.SourceItem{ID: "x"}) },
			del:   func(s *Store) error { return s.DeleteNewsSource(ctx, "x") },
			count: func(s *Store) int { return len(s.NewsSources()) },
			front: func(s *Store) string { return s.NewsSources()[0].ID },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newLocalStore(t)
			n := tt.count(s)
			if err := tt.add(s); err != nil {
				t.Fatalf("add: %v", err)
			}
			if tt.front(s) != "x" {
				t.Fatalf("expected added item at the front")
			}
			if err := tt.del(s); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if got := tt.count(s); got != n {
				t.Fatalf("expected %d items after delete, got %d", n, got)
			}
		})
	}
}

func TestLocal_UpdateJobMerges(t *testing.T) {
	s, b, _ := newLocalStore(t)
	salary := "3,000,000 د.ع"
	urgent := true

	if err := s.UpdateJob(context.Background(), "1", models.JobPatch{Salary: &salary, IsUrgent: &urgent}); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	j := s.Jobs()[0]
	if j.Salary != salary || !j.IsUrgent {
		t.Fatalf("patch not applied: %+v", j)
	}
	if j.Title != "مطور واجهات أمامية (React)" {
		t.Fatalf("untouched field changed: %q", j.Title)
	}

	w := b.Recorded()
	if len(w) != 1 || w[0].Op != "patch" || len(w[0].Fields) != 2 {
		t.Fatalf("unexpected backend writes: %+v", w)
	}
}

func TestToggleAnnouncementImportance_Involution(t *testing.T) {
	s, _, _ := newLocalStore(t)
	ctx := context.Background()
	initial := s.Announcements()[0].IsImportant

	if err := s.ToggleAnnouncementImportance(ctx, "1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.Announcements()[0].IsImportant == initial {
		t.Fatalf("first toggle did not flip the flag")
	}
	if err := s.ToggleAnnouncementImportance(ctx, "1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.Announcements()[0].IsImportant != initial {
		t.Fatalf("two toggles should restore the initial state")
	}
}

func TestToggleAnnouncementImportance_UnknownIDIsNoop(t *testing.T) {
	s, b, _ := newLocalStore(t)

	if err := s.ToggleAnnouncementImportance(context.Background(), "missing"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(b.Recorded()) != 0 {
		t.Fatalf("expected no backend write for unknown id")
	}
}

func TestModerationAndUserAdmin(t *testing.T) {
	s, _, _ := newLocalStore(t)
	ctx := context.Background()

	if err := s.AddService(ctx, models.ServiceItem{ID: "p", Status: models.ItemStatusPending, UserID: "u1"}); err != nil {
		t.Fatalf("AddService: %v", err)
	}
	if got := len(s.PendingServices()); got != 1 {
		t.Fatalf("expected 1 pending service, got %d", got)
	}
	if got := len(s.ApprovedServices()); got != 3 {
		t.Fatalf("pending service should not be visible, got %d visible", got)
	}
	if err := s.SetServiceStatus(ctx, "p", models.ItemStatusApproved); err != nil {
		t.Fatalf("SetServiceStatus: %v", err)
	}
	if got := len(s.ApprovedServices()); got != 4 {
		t.Fatalf("expected approved service to be visible, got %d", got)
	}

	if err := s.UpdateUserRole(ctx, "u1", models.RoleRecruiter); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if err := s.UpdateUserStatus(ctx, "u2", models.UserStatusActive); err != nil {
		t.Fatalf("UpdateUserStatus: %v", err)
	}
	u1, _ := s.User("u1")
	u2, _ := s.User("u2")
	if u1.Role != models.RoleRecruiter || u2.Status != models.UserStatusActive {
		t.Fatalf("user updates not applied: %+v %+v", u1, u2)
	}

	if err := s.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if got := s.PublisherName("u1"); got != UnknownPublisher {
		t.Fatalf("orphaned service should resolve to %q, got %q", UnknownPublisher, got)
	}
	if got := len(s.Services()); got != 4 {
		t.Fatalf("deleting a user must not cascade, got %d services", got)
	}
}

func TestPublisherName(t *testing.T) {
	s, _, _ := newLocalStore(t)

	tests := []struct {
		id   string
		want string
	}{
		{"", PlatformPublisher},
		{"u2", "سارة محمد"},
		{"nobody", UnknownPublisher},
	}
	for _, tt := range tests {
		if got := s.PublisherName(tt.id); got != tt.want {
			t.Fatalf("PublisherName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestUpdateSettings_CachesInEveryMode(t *testing.T) {
	for _, mode := range []repository.Consistency{repository.ConsistencyOptimistic, repository.ConsistencyEventual} {
		t.Run(mode.String(), func(t *testing.T) {
			b := mock.NewBackend(mode)
			st := mock.NewStorage()
			s := New(b, st, quietLogger())

			next := models.DefaultSiteSettings()
			next.ContactEmail = "jobs@example.iq"
			if err := s.UpdateSettings(context.Background(), next); err != nil {
				t.Fatalf("UpdateSettings: %v", err)
			}
			if s.Settings().ContactEmail != "jobs@example.iq" {
				t.Fatalf("settings not applied in memory")
			}
			var cached models.SiteSettings
			if err := json.Unmarshal([]byte(st.Items[repository.KeySiteSettings]), &cached); err != nil {
				t.Fatalf("cached settings: %v", err)
			}
			if cached != next {
				t.Fatalf("cached settings mismatch: %+v", cached)
			}
			if w := b.Recorded(); len(w) != 1 || w[0].Op != "put" {
				t.Fatalf("expected one settings write, got %+v", w)
			}
		})
	}
}

func TestStart_RestoresCachedSettings(t *testing.T) {
	b := mock.NewBackend(repository.ConsistencyOptimistic)
	st := mock.NewStorage()
	cached := models.DefaultSiteSettings()
	cached.Mission = "cached mission"
	raw, _ := json.Marshal(cached)
	st.Items[repository.KeySiteSettings] = string(raw)

	s := New(b, st, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	if s.Settings().Mission != "cached mission" {
		t.Fatalf("expected cached settings, got %q", s.Settings().Mission)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStart_IgnoresUnreadableCache(t *testing.T) {
	b := mock.NewBackend(repository.ConsistencyOptimistic)
	st := mock.NewStorage()
	st.Items[repository.KeySiteSettings] = "{not json"

	s := New(b, st, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	if s.Settings() != models.DefaultSiteSettings() {
		t.Fatalf("expected defaults when the cache is unreadable")
	}
}

func TestRemote_WritesDoNotMutateMemory(t *testing.T) {
	b := mock.NewBackend(repository.ConsistencyEventual)
	s := New(b, nil, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.AddJob(ctx, models.Job{ID: "r1"}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if err := s.DeleteJob(ctx, "1"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if err := s.ToggleAnnouncementImportance(ctx, "1"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if got := ids(s.Jobs(), jobID); !equalIDs(got, []string{"1", "2"}) {
		t.Fatalf("remote writes must not touch memory, got %v", got)
	}
	if !s.Announcements()[0].IsImportant {
		t.Fatalf("remote toggle must not touch memory")
	}

	w := b.Recorded()
	if len(w) != 3 {
		t.Fatalf("expected 3 backend writes, got %d", len(w))
	}
	if w[2].Fields["isImportant"] != false {
		t.Fatalf("toggle should write the negated flag, got %+v", w[2].Fields)
	}
}

func TestRemote_WriteErrorsPropagate(t *testing.T) {
	for _, mode := range []repository.Consistency{repository.ConsistencyOptimistic, repository.ConsistencyEventual} {
		t.Run(mode.String(), func(t *testing.T) {
			boom := errors.New("unavailable")
			b := mock.NewBackend(mode)
			b.WriteErr = boom
			s := New(b, nil, quietLogger())

			if err := s.AddJob(context.Background(), models.Job{ID: "x"}); !errors.Is(err, boom) {
				t.Fatalf("expected wrapped backend error, got %v", err)
			}
			if err := s.UpdateSettings(context.Background(), models.DefaultSiteSettings()); !errors.Is(err, boom) {
				t.Fatalf("expected wrapped backend error, got %v", err)
			}
			if len(s.Jobs()) != 2 {
				t.Fatalf("failed write must not change memory")
			}
		})
	}
}

func TestRemote_SnapshotsReplaceCollections(t *testing.T) {
	b := mock.NewBackend(repository.ConsistencyEventual)
	s := New(b, nil, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	b.Jobs <- []models.Job{{ID: "r2"}, {ID: "r1"}}
	b.Users <- []models.User{{ID: "remote-user"}}
	settings := models.DefaultSiteSettings()
	settings.Vision = "remote vision"
	b.Settings <- &settings

	waitFor(t, func() bool { return equalIDs(ids(s.Jobs(), jobID), []string{"r2", "r1"}) })
	waitFor(t, func() bool { return equalIDs(ids(s.Users(), userID), []string{"remote-user"}) })
	waitFor(t, func() bool { return s.Settings().Vision == "remote vision" })
}

func TestRemote_EmptySnapshotIgnored(t *testing.T) {
	b := mock.NewBackend(repository.ConsistencyEventual)
	s := New(b, nil, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Close()

	// the non-empty snapshot is consumed after the empty one on the same
	// stream, so once it lands the empty one has been processed
	b.Jobs <- []models.Job{}
	b.Jobs <- []models.Job{{ID: "a"}}
	waitFor(t, func() bool { return equalIDs(ids(s.Jobs(), jobID), []string{"a"}) })
	b.Jobs <- nil
	b.Users <- []models.User{}
	b.Settings <- nil
	b.Jobs <- []models.Job{{ID: "a"}, {ID: "b"}}
	waitFor(t, func() bool { return len(s.Jobs()) == 2 })

	if got := len(s.Users()); got != 3 {
		t.Fatalf("empty users snapshot wiped fixtures, got %d users", got)
	}
}

func TestSnapshotGuard(t *testing.T) {
	s := New(mock.NewBackend(repository.ConsistencyEventual), nil, quietLogger())

	s.applyJobs(nil)
	s.applyJobs([]models.Job{})
	s.applyUsers([]models.User{})
	s.applySettings(nil)

	if len(s.Jobs()) != 2 || len(s.Users()) != 3 {
		t.Fatalf("empty snapshots must leave collections untouched")
	}
	if s.Settings() != models.DefaultSiteSettings() {
		t.Fatalf("missing settings document must leave settings untouched")
	}

	s.applyJobs([]models.Job{{ID: "only"}})
	if got := ids(s.Jobs(), jobID); !equalIDs(got, []string{"only"}) {
		t.Fatalf("non-empty snapshot should replace jobs, got %v", got)
	}
}

func TestClose_StopsSubscriptions(t *testing.T) {
	b := mock.NewBackend(repository.ConsistencyEventual)
	s := New(b, nil, quietLogger())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Close()
	// a second Close is harmless
	s.Close()
}

func TestClose_ConcurrentWithStart(t *testing.T) {
	b := mock.NewBackend(repository.ConsistencyEventual)
	s := New(b, nil, quietLogger())

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()
	s.Close()
	if err := <-done; err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Close may have run first; this one stops the subscriptions
	s.Close()
}

func TestStats(t *testing.T) {
	s, _, _ := newLocalStore(t)
	ctx := context.Background()
	_ = s.AddArticle(ctx, models.Article{ID: "p", Status: models.ItemStatusPending})

	st := s.Stats()
	if st.Jobs != 2 || st.Users != 3 || st.Services != 3 || st.Articles != 2 || st.PendingArticles != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
