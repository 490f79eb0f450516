package mongo

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/garnizeh/jobboard/pkg/repository"
)

type accountStore interface {
	Create(ctx context.Context, email, password string) (*repository.AuthUser, error)
	Verify(ctx context.Context, email, password string) (*repository.AuthUser, error)
	Get(ctx context.Context, uid string) (*repository.AuthUser, error)
}

// AuthClient is one client's signed-in state against Accounts. The signed-in
// uid survives restarts through the client's local storage.
type AuthClient struct {
	accounts accountStore
	storage  repository.LocalStorage
	logger   *slog.Logger

	mu        sync.Mutex
	current   *repository.AuthUser
	restored  bool
	listeners map[int]func(context.Context, *repository.AuthUser)
	next      int
}

var _ repository.AuthClient = (*AuthClient)(nil)

// Client returns an auth client whose session is kept in storage.
func (a *Accounts) Client(storage repository.LocalStorage, logger *slog.Logger) *AuthClient {
	return newAuthClient(a, storage, logger)
}

func newAuthClient(accounts accountStore, storage repository.LocalStorage, logger *slog.Logger) *AuthClient {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &AuthClient{
		accounts:  accounts,
		storage:   storage,
		logger:    logger,
		listeners: map[int]func(context.Context, *repository.AuthUser){},
	}
}

func (c *AuthClient) SignIn(ctx context.Context, email, password string) error {
	u, err := c.accounts.Verify(ctx, email, password)
	if err != nil {
		return err
	}
	c.setCurrent(ctx, u)
	return nil
}

func (c *AuthClient) CreateAccount(ctx context.Context, email, password string) (*repository.AuthUser, error) {
	u, err := c.accounts.Create(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setCurrent(ctx, u)
	cp := *u
	return &cp, nil
}

func (c *AuthClient) SignOut(ctx context.Context) error {
	if err := c.storage.RemoveItem(ctx, repository.KeyAuthUID); err != nil {
		c.logger.Warn("auth: clear stored uid", slog.Any("error", err))
	}
	c.mu.Lock()
	c.current = nil
	c.restored = true
	c.mu.Unlock()
	c.notify(ctx, nil)
	return nil
}

// OnAuthStateChanged restores a stored session on first use, then calls fn
// with the current state and after every later change.
func (c *AuthClient) OnAuthStateChanged(ctx context.Context, fn func(context.Context, *repository.AuthUser)) func() {
	c.restore(ctx)

	c.mu.Lock()
	id := c.next
	c.next++
	c.listeners[id] = fn
	cur := copyUser(c.current)
	c.mu.Unlock()

	fn(ctx, cur)
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *AuthClient) restore(ctx context.Context) {
	c.mu.Lock()
	done := c.restored
	c.restored = true
	c.mu.Unlock()
	if done {
		return
	}

	uid, ok, err := c.storage.GetItem(ctx, repository.KeyAuthUID)
	if err != nil {
		c.logger.Warn("auth: read stored uid", slog.Any("error", err))
		return
	}
	if !ok || uid == "" {
		return
	}
	u, err := c.accounts.Get(ctx, uid)
	if err != nil {
		c.logger.Warn("auth: restore session", slog.String("uid", uid), slog.Any("error", err))
		return
	}
	if u == nil {
		_ = c.storage.RemoveItem(ctx, repository.KeyAuthUID)
		return
	}
	c.mu.Lock()
	if c.current == nil {
		c.current = u
	}
	c.mu.Unlock()
}

func (c *AuthClient) setCurrent(ctx context.Context, u *repository.AuthUser) {
	if err := c.storage.SetItem(ctx, repository.KeyAuthUID, u.UID); err != nil {
		c.logger.Warn("auth: persist uid", slog.Any("error", err))
	}
	c.mu.Lock()
	c.current = copyUser(u)
	c.restored = true
	c.mu.Unlock()
	c.notify(ctx, copyUser(u))
}

func (c *AuthClient) notify(ctx context.Context, u *repository.AuthUser) {
	c.mu.Lock()
	fns := make([]func(context.Context, *repository.AuthUser), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, copyUser(u))
	}
}

func copyUser(u *repository.AuthUser) *repository.AuthUser {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
