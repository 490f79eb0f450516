package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/garnizeh/jobboard/internal/genai"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/qri-io/jsonschema"
)

type AIHandler struct {
	engine       *genai.Engine
	schemaRepo   repository.SchemaRepo
	templateRepo repository.TemplateRepo
	sessions     *SessionRegistry
}

// NewAIHandler wires the generation endpoints. engine may be nil when no
// model server is configured; those endpoints then answer 503.
func NewAIHandler(
	engine *genai.Engine,
	schemaRepo repository.SchemaRepo,
	templateRepo repository.TemplateRepo,
	sessions *SessionRegistry,
) *AIHandler {
	return &AIHandler{
		engine:       engine,
		schemaRepo:   schemaRepo,
		templateRepo: templateRepo,
		sessions:     sessions,
	}
}

type jobDescriptionRequest struct {
	Title    string `json:"title"`
	Sector   string `json:"sector"`
	Location string `json:"location"`
	Keywords string `json:"keywords"`
}

type jobDescriptionResponse struct {
	Description string `json:"description"`
}

type searchRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

type adminTaskRequest struct {
	Prompt string `json:"prompt"`
}

func (h *AIHandler) available(w http.ResponseWriter) bool {
	if h.engine == nil {
		http.Error(w, "ai unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// JobDescriptionHandler drafts a job description for the posting form.
func (h *AIHandler) JobDescriptionHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleRecruiter, models.RoleAdmin); !ok {
		return
	}
	if !h.available(w) {
		return
	}

	var req jobDescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Sector == "" || req.Location == "" {
		http.Error(w, "title, sector and location required", http.StatusBadRequest)
		return
	}

	text := h.engine.GenerateJobDescription(r.Context(), req.Title, req.Sector, req.Location, req.Keywords)
	writeJSON(w, jobDescriptionResponse{Description: text}, http.StatusOK)
}

// SearchHandler looks for live openings outside the board.
func (h *AIHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Get(r.Context(), SessionID(r.Context())); err != nil {
		writeSessionError(w, err)
		return
	}
	if !h.available(w) {
		return
	}

	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query required", http.StatusBadRequest)
		return
	}

	res, err := h.engine.SearchRealTimeJobs(r.Context(), req.Query, req.Location)
	if err != nil {
		logger.Error("search jobs", slog.Any("error", err))
		http.Error(w, "search failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

// AdminTaskHandler turns an admin's request into a suggested announcement or
// article.
func (h *AIHandler) AdminTaskHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
		return
	}
	if !h.available(w) {
		return
	}

	var req adminTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt required", http.StatusBadRequest)
		return
	}

	res, err := h.engine.AdminTask(r.Context(), req.Prompt)
	if err != nil {
		logger.Error("admin task", slog.Any("error", err))
		if errors.Is(err, genai.ErrSchemaMismatch) || errors.Is(err, genai.ErrNoJSON) {
			http.Error(w, fmt.Sprintf("unusable suggestion: %v", err), http.StatusBadGateway)
			return
		}
		http.Error(w, "admin task failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

// adminOnly wraps the prompt management handlers.
func (h *AIHandler) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.sessions.requireRole(w, r, models.RoleAdmin); !ok {
			return
		}
		next(w, r)
	}
}

func (h *AIHandler) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	if !h.available(w) {
		return
	}
	if err := h.engine.ReloadSchemas(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("reload schemas: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AIHandler) ListSchemasHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.schemaRepo.ListSchemas(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("list schemas: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, rows, http.StatusOK)
}

type schemaPayload struct {
	Version     string          `json:"version"`
	Description string          `json:"description,omitempty"`
	SchemaJSON  json.RawMessage `json:"schema_json"`
}

// CreateOrUpdateSchemaHandler validates and stores a schema
func (h *AIHandler) CreateOrUpdateSchemaHandler(w http.ResponseWriter, r *http.Request) {
	var p schemaPayload
	if err := decodeJSON(r, &p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if p.Version == "" {
		http.Error(w, "version required", http.StatusBadRequest)
		return
	}

	// basic compile check using qri-io/jsonschema
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(p.SchemaJSON, rs); err != nil {
		http.Error(w, fmt.Sprintf("invalid schema json: %v", err), http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	if _, err := rs.ValidateBytes(ctx, p.SchemaJSON); err != nil {
		// ValidateBytes returns execution error; treat as bad schema
		http.Error(w, fmt.Sprintf("schema compile error: %v", err), http.StatusBadRequest)
		return
	}

	if _, err := h.schemaRepo.CreateSchema(ctx, p.Version, p.Description, string(p.SchemaJSON)); err != nil {
		http.Error(w, fmt.Sprintf("store schema: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSchemaHandler returns a single schema by version (expects ?version=...)
func (h *AIHandler) GetSchemaHandler(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("version")
	if version == "" {
		http.Error(w, "version required", http.StatusBadRequest)
		return
	}

	s, err := h.schemaRepo.GetSchemaByVersion(r.Context(), version)
	if err != nil {
		http.Error(w, fmt.Sprintf("get schema: %v", err), http.StatusInternalServerError)
		return
	}
	if s == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, s, http.StatusOK)
}

// DeleteSchemaHandler deletes schema by version (expects ?version=...)
func (h *AIHandler) DeleteSchemaHandler(w http.ResponseWriter, r *http.Request) {
	version := r.URL.Query().Get("version")
	if version == "" {
		http.Error(w, "version required", http.StatusBadRequest)
		return
	}

	if err := h.schemaRepo.DeleteSchema(r.Context(), version); err != nil {
		http.Error(w, fmt.Sprintf("delete schema: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListTemplatesHandler returns all templates
func (h *AIHandler) ListTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := h.templateRepo.ListTemplates(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("list templates: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, rows, http.StatusOK)
}

type templatePayload struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	TemplateTxt string  `json:"template_text"`
	SchemaVer   *string `json:"schema_version,omitempty"`
}

// CreateOrUpdateTemplateHandler stores a template, enforcing size limit
func (h *AIHandler) CreateOrUpdateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	// limit read to 64KB
	const maxSize = 64 * 1024
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
	if err != nil {
		http.Error(w, "read body failed", http.StatusBadRequest)
		return
	}

	if len(body) > maxSize {
		http.Error(w, "template too large", http.StatusBadRequest)
		return
	}

	var p templatePayload
	if err := json.Unmarshal(body, &p); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if p.Name == "" || p.Version == "" || p.TemplateTxt == "" {
		http.Error(w, "name, version and template_text required", http.StatusBadRequest)
		return
	}

	if _, err := h.templateRepo.CreateTemplate(r.Context(), p.Name, p.Version, p.TemplateTxt, p.SchemaVer, nil); err != nil {
		http.Error(w, fmt.Sprintf("store template: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTemplateHandler returns one template by query params name and version
func (h *AIHandler) GetTemplateHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	version := r.URL.Query().Get("version")
	if name == "" || version == "" {
		http.Error(w, "name and version required", http.StatusBadRequest)
		return
	}

	t, err := h.templateRepo.GetTemplate(r.Context(), name, version)
	if err != nil {
		http.Error(w, fmt.Sprintf("get template: %v", err), http.StatusInternalServerError)
		return
	}
	if t == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	writeJSON(w, t, http.StatusOK)
}

// DeleteTemplateHandler deletes a template
func (h *AIHandler) DeleteTemplateHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	version := r.URL.Query().Get("version")
	if name == "" || version == "" {
		http.Error(w, "name and version required", http.StatusBadRequest)
		return
	}

	if err := h.templateRepo.DeleteTemplate(r.Context(), name, version); err != nil {
		http.Error(w, fmt.Sprintf("delete template: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
