package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Test helpers and mocks

// Write records one call made against Backend.
type Write struct {
	Op         string
	Collection repository.Collection
	ID         string
	Doc        any
	Fields     map[string]any
}

// Backend is a scriptable repository.Backend. Watch streams are buffered
// channels the test pushes snapshots into; they are closed when the watching
// context is canceled.
type Backend struct {
	Mode     repository.Consistency
	WriteErr error

	mu     sync.Mutex
	Writes []Write

	Jobs     chan []models.Job
	Users    chan []models.User
	Settings chan *models.SiteSettings
}

func NewBackend(mode repository.Consistency) *Backend {
	b := &Backend{Mode: mode}
	if mode == repository.ConsistencyEventual {
		b.Jobs = make(chan []models.Job, 8)
		b.Users = make(chan []models.User, 8)
		b.Settings = make(chan *models.SiteSettings, 8)
	}
	return b
}

var _ repository.Backend = (*Backend)(nil)

func (b *Backend) Consistency() repository.Consistency { return b.Mode }

func (b *Backend) record(w Write) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.Writes = append(b.Writes, w)
	return nil
}

// Recorded returns a copy of the writes seen so far.
func (b *Backend) Recorded() []Write {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Write(nil), b.Writes...)
}

func (b *Backend) Add(ctx context.Context, coll repository.Collection, id string, doc any) error {
	return b.record(Write{Op: "add", Collection: coll, ID: id, Doc: doc})
}

func (b *Backend) Delete(ctx context.Context, coll repository.Collection, id string) error {
	return b.record(Write{Op: "delete", Collection: coll, ID: id})
}

func (b *Backend) Patch(ctx context.Context, coll repository.Collection, id string, fields map[string]any) error {
	return b.record(Write{Op: "patch", Collection: coll, ID: id, Fields: fields})
}

func (b *Backend) PutSettings(ctx context.Context, s models.SiteSettings) error {
	return b.record(Write{Op: "put", Collection: repository.Config, ID: repository.SettingsDocumentID, Doc: s})
}

func (b *Backend) WatchJobs(ctx context.Context) (<-chan []models.Job, error) {
	return relay(ctx, b.Jobs), nil
}

func (b *Backend) WatchUsers(ctx context.Context) (<-chan []models.User, error) {
	return relay(ctx, b.Users), nil
}

func (b *Backend) WatchSettings(ctx context.Context) (<-chan *models.SiteSettings, error) {
	return relay(ctx, b.Settings), nil
}

func relay[T any](ctx context.Context, in chan T) <-chan T {
	if in == nil {
		return nil
	}
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-in:
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Storage is an in-memory repository.LocalStorage.
type Storage struct {
	mu     sync.Mutex
	Items  map[string]string
	SetErr error
}

func NewStorage() *Storage { return &Storage{Items: map[string]string{}} }

var _ repository.LocalStorage = (*Storage)(nil)

func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.Items[key]
	return v, ok, nil
}

func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.Items[key] = value
	return nil
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Items, key)
	return nil
}

// Profiles is an in-memory repository.ProfileStore.
type Profiles struct {
	mu       sync.Mutex
	Docs     map[string]models.User
	GetErr   error
	SetErr   error
	PatchErr error
	Patches  []map[string]any
}

func NewProfiles() *Profiles { return &Profiles{Docs: map[string]models.User{}} }

var _ repository.ProfileStore = (*Profiles)(nil)

func (p *Profiles) GetUser(ctx context.Context, id string) (*models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.GetErr != nil {
		return nil, p.GetErr
	}
	u, ok := p.Docs[id]
	if !ok {
		return nil, nil
	}
	u.ID = id
	return &u, nil
}

func (p *Profiles) SetUser(ctx context.Context, id string, u models.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SetErr != nil {
		return p.SetErr
	}
	p.Docs[id] = u
	return nil
}

func (p *Profiles) PatchUser(ctx context.Context, id string, fields map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PatchErr != nil {
		return p.PatchErr
	}
	p.Patches = append(p.Patches, fields)
	return nil
}

// Auth is an in-memory repository.AuthClient. Accounts maps email to password.
type Auth struct {
	mu        sync.Mutex
	Accounts  map[string]string
	UIDs      map[string]string
	Current   *repository.AuthUser
	CreateErr error
	SignOuts  int
	listeners map[int]func(context.Context, *repository.AuthUser)
	next      int
}

func NewAuth() *Auth {
	return &Auth{
		Accounts:  map[string]string{},
		UIDs:      map[string]string{},
		listeners: map[int]func(context.Context, *repository.AuthUser){},
	}
}

var _ repository.AuthClient = (*Auth)(nil)

func (a *Auth) SignIn(ctx context.Context, email, password string) error {
	a.mu.Lock()
	pw, ok := a.Accounts[email]
	if !ok || pw != password {
		a.mu.Unlock()
		return fmt.Errorf("invalid credentials for %s", email)
	}
	a.Current = &repository.AuthUser{UID: a.UIDs[email], Email: email}
	u := *a.Current
	a.mu.Unlock()
	a.notify(ctx, &u)
	return nil
}

func (a *Auth) CreateAccount(ctx context.Context, email, password string) (*repository.AuthUser, error) {
	a.mu.Lock()
	if a.CreateErr != nil {
		a.mu.Unlock()
		return nil, a.CreateErr
	}
	if _, ok := a.Accounts[email]; ok {
		a.mu.Unlock()
		return nil, fmt.Errorf("email already in use: %s", email)
	}
	a.Accounts[email] = password
	uid := fmt.Sprintf("uid-%d", len(a.Accounts))
	a.UIDs[email] = uid
	a.Current = &repository.AuthUser{UID: uid, Email: email}
	u := *a.Current
	a.mu.Unlock()
	a.notify(ctx, &u)
	return &u, nil
}

func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.Current = nil
	a.SignOuts++
	a.mu.Unlock()
	a.notify(ctx, nil)
	return nil
}

func (a *Auth) OnAuthStateChanged(ctx context.Context, fn func(context.Context, *repository.AuthUser)) func() {
	a.mu.Lock()
	id := a.next
	a.next++
	a.listeners[id] = fn
	var cur *repository.AuthUser
	if a.Current != nil {
		u := *a.Current
		cur = &u
	}
	a.mu.Unlock()

	fn(ctx, cur)
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *Auth) notify(ctx context.Context, u *repository.AuthUser) {
	a.mu.Lock()
	fns := make([]func(context.Context, *repository.AuthUser), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, u)
	}
}
