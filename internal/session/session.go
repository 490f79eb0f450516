// Package session holds at most one signed-in identity per client and
// mediates login, registration, profile updates and logout.
//
// Without an AuthClient the provider runs in demo mode and keeps the session in
// local storage under demo_user. With one, identity comes from the remote auth
// service and profiles from the users collection.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

const (
	DefaultLoginDomain  = "iraqjobs.com"
	DefaultPassword     = "password123"
	fallbackProfileName = "مستخدم"
)

var ErrNoProfileStore = errors.New("remote registration requires a profile store")

// Options configures a Provider. Auth and Profiles are nil in demo mode.
type Options struct {
	Storage         repository.LocalStorage
	Auth            repository.AuthClient
	Profiles        repository.ProfileStore
	LoginDomain     string
	DefaultPassword string
	Logger          *slog.Logger
}

type Provider struct {
	storage         repository.LocalStorage
	auth            repository.AuthClient
	profiles        repository.ProfileStore
	loginDomain     string
	defaultPassword string
	logger          *slog.Logger

	mu          sync.RWMutex
	loading     bool
	user        *models.User
	unsubscribe func()
}

func New(opts Options) *Provider {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	if opts.LoginDomain == "" {
		opts.LoginDomain = DefaultLoginDomain
	}
	if opts.DefaultPassword == "" {
		opts.DefaultPassword = DefaultPassword
	}
	return &Provider{
		storage:         opts.Storage,
		auth:            opts.Auth,
		profiles:        opts.Profiles,
		loginDomain:     opts.LoginDomain,
		defaultPassword: opts.DefaultPassword,
		logger:          opts.Logger,
		loading:         true,
	}
}

// Remote reports whether the provider is backed by the remote auth service.
func (p *Provider) Remote() bool { return p.auth != nil }

// Start resolves the initial session. In demo mode the persisted demo user is
// restored; in remote mode the provider follows the auth-state channel until
// Close.
func (p *Provider) Start(ctx context.Context) {
	if !p.Remote() {
		u := p.readDemoUser(ctx)
		p.mu.Lock()
		p.user = u
		p.loading = false
		p.mu.Unlock()
		return
	}

	unsub := p.auth.OnAuthStateChanged(ctx, p.onAuthStateChanged)
	p.mu.Lock()
	p.unsubscribe = unsub
	p.mu.Unlock()
}

func (p *Provider) Close() {
	p.mu.Lock()
	unsub := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (p *Provider) onAuthStateChanged(ctx context.Context, au *repository.AuthUser) {
	if au == nil {
		p.mu.Lock()
		p.user = nil
		p.loading = false
		p.mu.Unlock()
		return
	}

	u, err := p.resolveProfile(ctx, au)
	if err != nil {
		// the previous state is kept
		p.logger.Error("session: fetch profile", slog.String("uid", au.UID), slog.Any("error", err))
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
		return
	}
	p.mu.Lock()
	p.user = u
	p.loading = false
	p.mu.Unlock()
}

func (p *Provider) resolveProfile(ctx context.Context, au *repository.AuthUser) (*models.User, error) {
	if p.profiles != nil {
		doc, err := p.profiles.GetUser(ctx, au.UID)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			doc.ID = au.UID
			return doc, nil
		}
	}
	name := au.DisplayName
	if name == "" {
		name = fallbackProfileName
	}
	return &models.User{ID: au.UID, Name: name, Email: au.Email, Role: models.RoleSeeker}, nil
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch {
	case p.loading:
		return StateLoading
	case p.user != nil:
		return StateAuthenticated
	}
	return StateAnonymous
}

// User returns a copy of the signed-in user, or nil.
func (p *Provider) User() *models.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return nil
	}
	u := *p.user
	return &u
}

// Login checks the demo identities first, then the remote auth service when
// one is configured. It never returns an error; failures yield false.
func (p *Provider) Login(ctx context.Context, identifier, secret string) bool {
	if u, ok := DemoUser(identifier, secret); ok {
		p.setUser(&u)
		p.writeDemoUser(ctx, &u)
		return true
	}
	if !p.Remote() {
		return false
	}

	if err := p.auth.SignIn(ctx, p.loginEmail(identifier), secret); err != nil {
		p.logger.Warn("session: login failed", slog.String("identifier", identifier), slog.Any("error", err))
		return false
	}
	return true
}

func (p *Provider) loginEmail(identifier string) string {
	if strings.Contains(identifier, "@") {
		return identifier
	}
	return identifier + "@" + p.loginDomain
}

// Register adopts u as the session. In remote mode it first creates the auth
// account and the profile document; those errors are returned.
func (p *Provider) Register(ctx context.Context, u models.User, secret string) error {
	if !p.Remote() {
		p.setUser(&u)
		p.writeDemoUser(ctx, &u)
		return nil
	}
	if p.profiles == nil {
		return ErrNoProfileStore
	}

	if secret == "" {
		secret = p.defaultPassword
	}
	au, err := p.auth.CreateAccount(ctx, u.Email, secret)
	if err != nil {
		p.logger.Error("session: registration failed", slog.String("email", u.Email), slog.Any("error", err))
		return fmt.Errorf("create account: %w", err)
	}
	if err := p.profiles.SetUser(ctx, au.UID, u); err != nil {
		p.logger.Error("session: registration failed", slog.String("uid", au.UID), slog.Any("error", err))
		return fmt.Errorf("create profile: %w", err)
	}
	u.ID = au.UID
	p.setUser(&u)
	return nil
}

// UpdateProfile merges patch into the current user immediately, then
// persists it. Persistence failures are logged and the merge is kept.
func (p *Provider) UpdateProfile(ctx context.Context, patch models.UserPatch) {
	p.mu.Lock()
	if p.user == nil {
		p.mu.Unlock()
		return
	}
	updated := patch.Apply(*p.user)
	p.user = &updated
	p.mu.Unlock()

	if p.Remote() && updated.ID != "" {
		if p.profiles == nil {
			return
		}
		if err := p.profiles.PatchUser(ctx, updated.ID, patch.Fields()); err != nil {
			p.logger.Error("session: update profile", slog.String("uid", updated.ID), slog.Any("error", err))
		}
		return
	}
	p.writeDemoUser(ctx, &updated)
}

// Logout clears the session and the persisted demo user. Remote sign-out is
// best-effort.
func (p *Provider) Logout(ctx context.Context) {
	if p.Remote() {
		if err := p.auth.SignOut(ctx); err != nil {
			p.logger.Warn("session: sign out", slog.Any("error", err))
		}
	}
	p.setUser(nil)
	if p.storage != nil {
		if err := p.storage.RemoveItem(ctx, repository.KeyDemoUser); err != nil {
			p.logger.Warn("session: clear demo user", slog.Any("error", err))
		}
	}
}

func (p *Provider) setUser(u *models.User) {
	p.mu.Lock()
	p.user = u
	p.loading = false
	p.mu.Unlock()
}

func (p *Provider) readDemoUser(ctx context.Context) *models.User {
	if p.storage == nil {
		return nil
	}
	raw, ok, err := p.storage.GetItem(ctx, repository.KeyDemoUser)
	if err != nil {
		p.logger.Warn("session: read demo user", slog.Any("error", err))
		return nil
	}
	if !ok {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		p.logger.Warn("session: demo user unreadable", slog.Any("error", err))
		return nil
	}
	return &u
}

func (p *Provider) writeDemoUser(ctx context.Context, u *models.User) {
	if p.storage == nil {
		return
	}
	b, err := json.Marshal(u)
	if err != nil {
		p.logger.Warn("session: marshal demo user", slog.Any("error", err))
		return
	}
	if err := p.storage.SetItem(ctx, repository.KeyDemoUser, string(b)); err != nil {
		p.logger.Warn("session: persist demo user", slog.Any("error", err))
	}
}
