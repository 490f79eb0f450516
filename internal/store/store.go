// Package store owns the job board's in-memory application state: eight
// entity collections and the site settings singleton.
//
// Consistency policy: eventually-consistent, client-wins. Writes go to the
// backend once and are never retried or rolled back. With an optimistic
// backend the store applies the write to memory itself; with an eventual
// backend memory only changes when the backend pushes a new snapshot, and the
// last snapshot wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

var ErrAlreadyStarted = errors.New("store already started")

type Store struct {
	backend repository.Backend
	storage repository.LocalStorage
	logger  *slog.Logger

	mu            sync.RWMutex
	jobs          []models.Job
	services      []models.ServiceItem
	announcements []models.Announcement
	agencies      []models.RecruitmentAgency
	articles      []models.Article
	jobSources    []models.SourceItem
	newsSources   []models.SourceItem
	users         []models.User
	settings      models.SiteSettings

	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New returns a store seeded with the bundled fixtures. storage holds the
// site settings cache and may be nil.
func New(backend repository.Backend, storage repository.LocalStorage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	f := Fixtures()
	return &Store{
		backend:       backend,
		storage:       storage,
		logger:        logger,
		jobs:          f.Jobs,
		services:      f.Services,
		announcements: f.Announcements,
		agencies:      f.Agencies,
		articles:      f.Articles,
		jobSources:    f.JobSources,
		newsSources:   f.NewsSources,
		users:         f.Users,
		settings:      f.Settings,
	}
}

// Start restores cached settings and, for an eventual backend, opens the
// jobs, users and settings subscriptions. They stay open until Close or until
// ctx is done.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	s.restoreSettings(ctx)

	if s.backend.Consistency() != repository.ConsistencyEventual {
		return nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	jobs, err := s.backend.WatchJobs(subCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("watch jobs: %w", err)
	}
	users, err := s.backend.WatchUsers(subCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("watch users: %w", err)
	}
	settings, err := s.backend.WatchSettings(subCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("watch settings: %w", err)
	}

	consume(s, jobs, s.applyJobs)
	consume(s, users, s.applyUsers)
	consume(s, settings, s.applySettings)
	s.logger.Info("store: subscriptions open", slog.String("consistency", s.backend.Consistency().String()))
	return nil
}

// Close tears the subscriptions down and waits for their consumers.
func (s *Store) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func consume[T any](s *Store, ch <-chan T, apply func(T)) {
	if ch == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for v := range ch {
			apply(v)
		}
	}()
}

// acceptSnapshot is the reconciliation guard: an empty snapshot never
// replaces a collection, so a transient empty read cannot wipe the fixtures.
func acceptSnapshot[T any](snapshot []T) bool {
	return len(snapshot) > 0
}

func (s *Store) applyJobs(snapshot []models.Job) {
	if !acceptSnapshot(snapshot) {
		s.logger.Debug("store: empty jobs snapshot ignored")
		return
	}
	s.mu.Lock()
	s.jobs = slices.Clone(snapshot)
	s.mu.Unlock()
}

func (s *Store) applyUsers(snapshot []models.User) {
	if !acceptSnapshot(snapshot) {
		s.logger.Debug("store: empty users snapshot ignored")
		return
	}
	s.mu.Lock()
	s.users = slices.Clone(snapshot)
	s.mu.Unlock()
}

// applySettings ignores a missing settings document.
func (s *Store) applySettings(snapshot *models.SiteSettings) {
	if snapshot == nil {
		return
	}
	s.mu.Lock()
	s.settings = *snapshot
	s.mu.Unlock()
}

func (s *Store) restoreSettings(ctx context.Context) {
	if s.storage == nil {
		return
	}
	raw, ok, err := s.storage.GetItem(ctx, repository.KeySiteSettings)
	if err != nil {
		s.logger.Warn("store: read cached settings", slog.Any("error", err))
		return
	}
	if !ok {
		return
	}
	var cached models.SiteSettings
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logger.Warn("store: cached settings unreadable", slog.Any("error", err))
		return
	}
	s.mu.Lock()
	s.settings = cached
	s.mu.Unlock()
}

// Consistency reports the active backend's consistency mode.
func (s *Store) Consistency() repository.Consistency {
	return s.backend.Consistency()
}

func (s *Store) Jobs() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.jobs)
}

func (s *Store) Services() []models.ServiceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.services)
}

func (s *Store) Announcements() []models.Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.announcements)
}

func (s *Store) Agencies() []models.RecruitmentAgency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.agencies)
}

func (s *Store) Articles() []models.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.articles)
}

func (s *Store) JobSources() []models.SourceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.jobSources)
}

func (s *Store) NewsSources() []models.SourceItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.newsSources)
}

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

func (s *Store) Settings() models.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}
