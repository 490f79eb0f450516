package api

import (
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/genai"
	"github.com/garnizeh/jobboard/internal/store"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/gorilla/mux"
)

// Deps are the components the router serves. Engine may be nil.
type Deps struct {
	Store     *store.Store
	Sessions  *SessionRegistry
	Engine    *genai.Engine
	Schemas   repository.SchemaRepo
	Templates repository.TemplateRepo
}

func SetupRoutes(cfg *config.Config, version, buildTime string, deps Deps) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{Mode: deps.Store.Consistency().String()}
	authHandler := NewAuthHandler(deps.Sessions, cfg.JWTSecret, cfg.TokenDuration)
	jobsHandler := NewJobsHandler(deps.Store, deps.Sessions)
	contentHandler := NewContentHandler(deps.Store, deps.Sessions)
	directoryHandler := NewDirectoryHandler(deps.Store, deps.Sessions)
	adminHandler := NewAdminHandler(deps.Store, deps.Sessions)
	aiHandler := NewAIHandler(deps.Engine, deps.Schemas, deps.Templates, deps.Sessions)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/sessions", authHandler.CreateSession).Methods("POST")

	// API v1 routes; every client holds a session token
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	apiV1.HandleFunc("/sessions/current", authHandler.EndSession).Methods("DELETE")

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/login", authHandler.Login).Methods("POST")
	authV1.HandleFunc("/register", authHandler.Register).Methods("POST")
	authV1.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	authV1.HandleFunc("/me", authHandler.Me).Methods("GET")
	authV1.HandleFunc("/me", authHandler.UpdateMe).Methods("PATCH")

	// Jobs
	apiV1.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.GetJob).Methods("GET")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.UpdateJob).Methods("PATCH")
	apiV1.HandleFunc("/jobs/{id}", jobsHandler.DeleteJob).Methods("DELETE")

	// Services and articles
	apiV1.HandleFunc("/services", contentHandler.ListServices).Methods("GET")
	apiV1.HandleFunc("/services", contentHandler.CreateService).Methods("POST")
	apiV1.HandleFunc("/services/pending", contentHandler.ListPendingServices).Methods("GET")
	apiV1.HandleFunc("/services/{id}/status", contentHandler.SetServiceStatus).Methods("PUT")
	apiV1.HandleFunc("/services/{id}", contentHandler.DeleteService).Methods("DELETE")
	apiV1.HandleFunc("/articles", contentHandler.ListArticles).Methods("GET")
	apiV1.HandleFunc("/articles", contentHandler.CreateArticle).Methods("POST")
	apiV1.HandleFunc("/articles/pending", contentHandler.ListPendingArticles).Methods("GET")
	apiV1.HandleFunc("/articles/{id}/status", contentHandler.SetArticleStatus).Methods("PUT")
	apiV1.HandleFunc("/articles/{id}", contentHandler.DeleteArticle).Methods("DELETE")

	// Announcements
	apiV1.HandleFunc("/announcements", contentHandler.ListAnnouncements).Methods("GET")
	apiV1.HandleFunc("/announcements", contentHandler.CreateAnnouncement).Methods("POST")
	apiV1.HandleFunc("/announcements/{id}", contentHandler.DeleteAnnouncement).Methods("DELETE")
	apiV1.HandleFunc("/announcements/{id}/importance", contentHandler.ToggleAnnouncement).Methods("POST")

	// Directory
	apiV1.HandleFunc("/agencies", directoryHandler.ListAgencies).Methods("GET")
	apiV1.HandleFunc("/agencies", directoryHandler.CreateAgency).Methods("POST")
	apiV1.HandleFunc("/agencies/{id}", directoryHandler.DeleteAgency).Methods("DELETE")
	apiV1.HandleFunc("/job-sources", directoryHandler.ListJobSources).Methods("GET")
	apiV1.HandleFunc("/job-sources", directoryHandler.CreateJobSource).Methods("POST")
	apiV1.HandleFunc("/job-sources/{id}", directoryHandler.DeleteJobSource).Methods("DELETE")
	apiV1.HandleFunc("/news-sources", directoryHandler.ListNewsSources).Methods("GET")
	apiV1.HandleFunc("/news-sources", directoryHandler.CreateNewsSource).Methods("POST")
	apiV1.HandleFunc("/news-sources/{id}", directoryHandler.DeleteNewsSource).Methods("DELETE")

	// Admin
	apiV1.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	apiV1.HandleFunc("/users/{id}/role", adminHandler.SetUserRole).Methods("PUT")
	apiV1.HandleFunc("/users/{id}/status", adminHandler.SetUserStatus).Methods("PUT")
	apiV1.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods("DELETE")
	apiV1.HandleFunc("/admin/stats", adminHandler.Stats).Methods("GET")
	apiV1.HandleFunc("/settings", adminHandler.GetSettings).Methods("GET")
	apiV1.HandleFunc("/settings", adminHandler.PutSettings).Methods("PUT")

	// AI
	aiV1 := apiV1.PathPrefix("/ai").Subrouter()
	aiV1.HandleFunc("/job-description", aiHandler.JobDescriptionHandler).Methods("POST")
	aiV1.HandleFunc("/search", aiHandler.SearchHandler).Methods("POST")
	aiV1.HandleFunc("/admin-task", aiHandler.AdminTaskHandler).Methods("POST")
	aiV1.HandleFunc("/reload", aiHandler.adminOnly(aiHandler.ReloadHandler)).Methods("POST")
	aiV1.HandleFunc("/schemas", aiHandler.adminOnly(aiHandler.ListSchemasHandler)).Methods("GET")
	aiV1.HandleFunc("/schemas", aiHandler.adminOnly(aiHandler.CreateOrUpdateSchemaHandler)).Methods("POST")
	aiV1.HandleFunc("/schema", aiHandler.adminOnly(aiHandler.GetSchemaHandler)).Methods("GET")
	aiV1.HandleFunc("/schema", aiHandler.adminOnly(aiHandler.DeleteSchemaHandler)).Methods("DELETE")
	aiV1.HandleFunc("/templates", aiHandler.adminOnly(aiHandler.ListTemplatesHandler)).Methods("GET")
	aiV1.HandleFunc("/templates", aiHandler.adminOnly(aiHandler.CreateOrUpdateTemplateHandler)).Methods("POST")
	aiV1.HandleFunc("/template", aiHandler.adminOnly(aiHandler.GetTemplateHandler)).Methods("GET")
	aiV1.HandleFunc("/template", aiHandler.adminOnly(aiHandler.DeleteTemplateHandler)).Methods("DELETE")

	return r
}
