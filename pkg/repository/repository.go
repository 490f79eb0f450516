package repository

import (
	"context"

	"github.com/garnizeh/jobboard/pkg/models"
)

// Repository interfaces for the job board. These are the public contracts the
// store and the session provider depend on; concrete implementations live under
// internal/repository.

// Collection names a remote document collection.
type Collection string

const (
	Jobs          Collection = "jobs"
	Users         Collection = "users"
	Services      Collection = "services"
	Announcements Collection = "announcements"
	Agencies      Collection = "agencies"
	Articles      Collection = "articles"
	JobSources    Collection = "jobSources"
	NewsSources   Collection = "newsSources"
	Config        Collection = "config"
)

// SettingsDocumentID is the id of the site settings document inside Config.
const SettingsDocumentID = "site"

// Consistency describes how a backend's writes become visible in memory.
//
// Both modes follow the same eventually-consistent, client-wins policy: writes
// are fire-and-forget, nothing is rolled back on failure, concurrent writes to
// the same entity are not detected and the last reconciliation snapshot wins.
type Consistency int

const (
	// ConsistencyOptimistic backends expect the caller to apply every accepted
	// write to in-memory state immediately.
	ConsistencyOptimistic Consistency = iota
	// ConsistencyEventual backends deliver the authoritative state later through
	// their watch streams; callers must not mutate memory on write.
	ConsistencyEventual
)

func (c Consistency) String() string {
	switch c {
	case ConsistencyOptimistic:
		return "optimistic"
	case ConsistencyEventual:
		return "eventual"
	}
	return "unknown"
}

// Backend is the persistence substrate behind the store, selected once at startup.
type Backend interface {
	Consistency() Consistency

	Add(ctx context.Context, coll Collection, id string, doc any) error
	Delete(ctx context.Context, coll Collection, id string) error
	Patch(ctx context.Context, coll Collection, id string, fields map[string]any) error
	PutSettings(ctx context.Context, s models.SiteSettings) error

	// Watch streams deliver a full snapshot every time the collection changes,
	// including changes made by this process. A nil stream means the backend
	// has nothing to push. Streams are closed when ctx is done.
	WatchJobs(ctx context.Context) (<-chan []models.Job, error)
	WatchUsers(ctx context.Context) (<-chan []models.User, error)
	// WatchSettings delivers nil when the settings document does not exist.
	WatchSettings(ctx context.Context) (<-chan *models.SiteSettings, error)
}

// ProfileStore reads and writes user profile documents.
type ProfileStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SetUser(ctx context.Context, id string, u models.User) error
	PatchUser(ctx context.Context, id string, fields map[string]any) error
}

// AuthUser is the identity reported by the remote auth service.
type AuthUser struct {
	UID         string
	Email       string
	DisplayName string
}

// AuthClient is one client's connection to the remote auth service.
type AuthClient interface {
	SignIn(ctx context.Context, email, password string) error
	CreateAccount(ctx context.Context, email, password string) (*AuthUser, error)
	SignOut(ctx context.Context) error
	// OnAuthStateChanged registers fn and invokes it once with the current
	// state, then after every sign-in and sign-out. u is nil when signed out.
	OnAuthStateChanged(ctx context.Context, fn func(ctx context.Context, u *AuthUser)) (unsubscribe func())
}

// LocalStorage is one client's persisted key/value storage.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Well-known local storage keys.
const (
	KeyDemoUser     = "demo_user"
	KeySiteSettings = "site_settings"
	KeyAuthUID      = "auth_uid"
)

// SchemaRepo stores JSON schemas for structured generation.
type SchemaRepo interface {
	CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error)
	GetSchemaByVersion(ctx context.Context, version string) (*models.Schema, error)
	ListSchemas(ctx context.Context) ([]models.Schema, error)
	DeleteSchema(ctx context.Context, version string) error
}

// TemplateRepo stores prompt templates.
type TemplateRepo interface {
	CreateTemplate(ctx context.Context, name, version, templateText string, schemaVersion *string, metadata *string) (int64, error)
	GetTemplate(ctx context.Context, name, version string) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, name, version string) error
}
