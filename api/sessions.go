package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/garnizeh/jobboard/internal/session"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/google/uuid"
)

var ErrUnknownSession = errors.New("unknown client session")

// ClientSessionRepo records the client sessions issued by this server.
type ClientSessionRepo interface {
	CreateClientSession(ctx context.Context, sid string) error
	ClientSessionExists(ctx context.Context, sid string) (bool, error)
	TouchClientSession(ctx context.Context, sid string) error
	DeleteClientSession(ctx context.Context, sid string) error
	IdleClientSessions(ctx context.Context, before time.Time) ([]string, error)
}

// SessionRegistry maps client session ids to their session providers. Each
// client gets its own local storage namespace, and in remote mode its own
// auth client.
type SessionRegistry struct {
	repo    ClientSessionRepo
	storage func(sid string) repository.LocalStorage
	auth    func(storage repository.LocalStorage) repository.AuthClient
	opts    session.Options

	mu        sync.Mutex
	providers map[string]*session.Provider
	stop      context.CancelFunc
	wg        sync.WaitGroup
}

// NewSessionRegistry builds a registry. auth is nil in demo mode. opts carries
// the settings shared by every provider; its Storage and Auth are ignored.
func NewSessionRegistry(repo ClientSessionRepo, storage func(sid string) repository.LocalStorage, auth func(repository.LocalStorage) repository.AuthClient, opts session.Options) *SessionRegistry {
	return &SessionRegistry{
		repo:      repo,
		storage:   storage,
		auth:      auth,
		opts:      opts,
		providers: make(map[string]*session.Provider),
	}
}

// Create issues a new client session id.
func (s *SessionRegistry) Create(ctx context.Context) (string, error) {
	sid := uuid.NewString()
	if err := s.repo.CreateClientSession(ctx, sid); err != nil {
		return "", fmt.Errorf("create client session: %w", err)
	}
	return sid, nil
}

// Get returns the provider for sid, restoring it from storage when this
// process has not seen the session yet.
func (s *SessionRegistry) Get(ctx context.Context, sid string) (*session.Provider, error) {
	s.mu.Lock()
	p, ok := s.providers[sid]
	s.mu.Unlock()
	if ok {
		s.touch(ctx, sid)
		return p, nil
	}

	exists, err := s.repo.ClientSessionExists(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("lookup client session: %w", err)
	}
	if !exists {
		return nil, ErrUnknownSession
	}

	opts := s.opts
	opts.Storage = s.storage(sid)
	opts.Auth = nil
	if s.auth != nil {
		opts.Auth = s.auth(opts.Storage)
	}
	p = session.New(opts)

	s.mu.Lock()
	if existing, ok := s.providers[sid]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.providers[sid] = p
	s.mu.Unlock()

	// Start outlives the request that triggered it
	p.Start(context.WithoutCancel(ctx))
	s.touch(ctx, sid)
	return p, nil
}

func (s *SessionRegistry) touch(ctx context.Context, sid string) {
	if err := s.repo.TouchClientSession(ctx, sid); err != nil {
		logger.Warn("touch client session", slog.String("sid", sid), slog.Any("error", err))
	}
}

// End drops the session and everything stored for it.
func (s *SessionRegistry) End(ctx context.Context, sid string) error {
	s.mu.Lock()
	p := s.providers[sid]
	delete(s.providers, sid)
	s.mu.Unlock()
	if p != nil {
		p.Close()
	}
	return s.repo.DeleteClientSession(ctx, sid)
}

// Sweep ends every session not seen for longer than idle and returns how
// many were ended.
func (s *SessionRegistry) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	sids, err := s.repo.IdleClientSessions(ctx, time.Now().Add(-idle))
	if err != nil {
		return 0, fmt.Errorf("list idle sessions: %w", err)
	}
	n := 0
	for _, sid := range sids {
		if err := s.End(ctx, sid); err != nil {
			logger.Warn("end idle session", slog.String("sid", sid), slog.Any("error", err))
			continue
		}
		n++
	}
	return n, nil
}

// StartSweeper runs Sweep every interval until Close or until ctx is done.
func (s *SessionRegistry) StartSweeper(ctx context.Context, every, idle time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		cancel()
		return
	}
	s.stop = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := s.Sweep(ctx, idle)
				if err != nil {
					logger.Warn("session sweep failed", slog.Any("error", err))
					continue
				}
				if n > 0 {
					logger.Info("idle sessions ended", slog.Int("count", n))
				}
			}
		}
	}()
}

// Close stops the sweeper and every provider.
func (s *SessionRegistry) Close() {
	s.mu.Lock()
	stop := s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	s.wg.Wait()

	s.mu.Lock()
	providers := s.providers
	s.providers = make(map[string]*session.Provider)
	s.mu.Unlock()
	for _, p := range providers {
		p.Close()
	}
}

// currentUser resolves the signed-in user of the request's client session.
// It writes 401 and returns false when there is none.
func (s *SessionRegistry) currentUser(w http.ResponseWriter, r *http.Request) (*session.Provider, *models.User, bool) {
	p, err := s.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return nil, nil, false
	}
	u := p.User()
	if u == nil {
		http.Error(w, "login required", http.StatusUnauthorized)
		return p, nil, false
	}
	return p, u, true
}

// requireRole is currentUser plus a role check; it writes 403 on mismatch.
func (s *SessionRegistry) requireRole(w http.ResponseWriter, r *http.Request, roles ...models.UserRole) (*models.User, bool) {
	_, u, ok := s.currentUser(w, r)
	if !ok {
		return nil, false
	}
	for _, role := range roles {
		if u.Role == role {
			return u, true
		}
	}
	http.Error(w, "forbidden", http.StatusForbidden)
	return nil, false
}
