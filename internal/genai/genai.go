// Package genai produces the generative-text features of the job board: job
// descriptions, real-time job search with citations and structured admin
// suggestions. Prompts and response schemas are stored in the database.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/pkg/ollama"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const (
	TemplateJobDescription = "job_description"
	TemplateJobSearch      = "job_search"
	TemplateAdminTask      = "admin_task"
	TemplateVersion        = "v1"

	EmptyDescription  = "لم يتم إنشاء وصف وظيفي."
	FailedDescription = "حدث خطأ أثناء إنشاء الوصف الوظيفي. يرجى المحاولة مرة أخرى."
	EmptySearchText   = "لم أجد نتائج محددة حالياً."
	UntitledSource    = "مصدر خارجي"
	DefaultLocation   = "العراق"
)

var (
	ErrEmptyResponse  = errors.New("empty response")
	ErrNoJSON         = errors.New("no JSON object found in response")
	ErrSchemaMismatch = errors.New("response does not match schema")
)

// Generator is the subset of the ollama client the engine uses.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (ollama.GenerateResult, error)
	GenerateJSON(ctx context.Context, model, prompt string, format json.RawMessage) (ollama.GenerateResult, error)
}

var _ Generator = (*ollama.Client)(nil)

type prompt struct {
	text          string
	schemaVersion string
	schema        json.RawMessage
}

// Engine renders stored prompts, calls the model and shapes its output.
type Engine struct {
	client  Generator
	cfg     config.AIConfig
	loader  *Loader
	prompts map[string]prompt
	logger  *slog.Logger
}

type SearchSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

type SearchResult struct {
	Text    string         `json:"text"`
	Sources []SearchSource `json:"sources"`
}

// AdminContent is the suggested announcement or article.
type AdminContent struct {
	Title       string `json:"title,omitempty"`
	Text        string `json:"text,omitempty"`
	Category    string `json:"category,omitempty"`
	IsImportant bool   `json:"isImportant,omitempty"`
}

type AdminTaskResult struct {
	ActionType  string       `json:"actionType"`
	Content     AdminContent `json:"content"`
	Explanation string       `json:"explanation"`
}

// NewEngine loads the three prompt templates and the schemas. Every template
// must exist at TemplateVersion.
func NewEngine(ctx context.Context, client Generator, cfg config.AIConfig, sr repository.SchemaRepo, tr repository.TemplateRepo, logger *slog.Logger) (*Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if sr == nil {
		return nil, fmt.Errorf("schema repo is required")
	}
	if tr == nil {
		return nil, fmt.Errorf("template repo is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	loader, err := NewLoader(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}

	prompts := make(map[string]prompt, 3)
	for _, name := range []string{TemplateJobDescription, TemplateJobSearch, TemplateAdminTask} {
		tpl, err := tr.GetTemplate(ctx, name, TemplateVersion)
		if err != nil {
			return nil, fmt.Errorf("load template %s: %w", name, err)
		}
		if tpl == nil || tpl.TemplateTxt == "" {
			return nil, fmt.Errorf("template %s:%s not found", name, TemplateVersion)
		}
		p := prompt{text: tpl.TemplateTxt}
		if tpl.SchemaVer != nil && *tpl.SchemaVer != "" {
			sc, err := sr.GetSchemaByVersion(ctx, *tpl.SchemaVer)
			if err != nil {
				return nil, fmt.Errorf("load schema %s: %w", *tpl.SchemaVer, err)
			}
			if sc != nil {
				p.schemaVersion = sc.Version
				p.schema = json.RawMessage(sc.SchemaJSON)
			}
		}
		prompts[name] = p
	}

	return &Engine{client: client, cfg: cfg, loader: loader, prompts: prompts, logger: logger}, nil
}

func (e *Engine) ReloadSchemas(ctx context.Context) error {
	return e.loader.Reload(ctx)
}

func (e *Engine) render(name string, data any) (string, error) {
	out, err := ollama.RenderTemplate(e.prompts[name].text, data)
	if err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return out, nil
}

// GenerateJobDescription drafts an Arabic job description. It never fails:
// errors and empty output are replaced by fixed messages.
func (e *Engine) GenerateJobDescription(ctx context.Context, title, sector, location, keywords string) string {
	p, err := e.render(TemplateJobDescription, map[string]string{
		"Title":    title,
		"Sector":   sector,
		"Location": location,
		"Keywords": keywords,
	})
	if err != nil {
		e.logger.Error("genai: job description", slog.Any("error", err))
		return FailedDescription
	}

	ctxReq, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out, err := e.client.Generate(ctxReq, e.cfg.Model, p)
	if err != nil {
		e.logger.Error("genai: job description", slog.Any("error", err))
		return FailedDescription
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return EmptyDescription
	}
	return text
}

// SearchRealTimeJobs asks the model for current openings. Sources without a
// URI are dropped and untitled ones get a placeholder title.
func (e *Engine) SearchRealTimeJobs(ctx context.Context, query, location string) (*SearchResult, error) {
	if strings.TrimSpace(location) == "" {
		location = DefaultLocation
	}
	p, err := e.render(TemplateJobSearch, map[string]string{"Query": query, "Location": location})
	if err != nil {
		return nil, err
	}

	ctxReq, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out, err := e.client.GenerateJSON(ctxReq, e.cfg.Model, p, e.prompts[TemplateJobSearch].schema)
	if err != nil {
		e.logger.Error("genai: search", slog.Any("error", err))
		return nil, fmt.Errorf("generate: %w", err)
	}
	return ParseSearchResult(out.Text), nil
}

// ParseSearchResult reads the model's {text, sources} object. Output that is
// not such an object is used verbatim as the text.
func ParseSearchResult(raw string) *SearchResult {
	res := &SearchResult{Sources: []SearchSource{}}

	var parsed SearchResult
	if j := extractJSON(raw); j != "" && json.Unmarshal([]byte(j), &parsed) == nil {
		res.Text = strings.TrimSpace(parsed.Text)
		for _, s := range parsed.Sources {
			if strings.TrimSpace(s.URI) == "" {
				continue
			}
			if strings.TrimSpace(s.Title) == "" {
				s.Title = UntitledSource
			}
			res.Sources = append(res.Sources, s)
		}
	} else {
		res.Text = strings.TrimSpace(raw)
	}

	if res.Text == "" {
		res.Text = EmptySearchText
	}
	return res
}

// AdminTask returns a structured suggestion for an admin request, validated
// against the template's schema.
func (e *Engine) AdminTask(ctx context.Context, request string) (*AdminTaskResult, error) {
	p, err := e.render(TemplateAdminTask, map[string]string{"Prompt": request})
	if err != nil {
		return nil, err
	}

	// the stored schema doubles as the structured-output format
	format := e.prompts[TemplateAdminTask].schema
	schemaVer := e.prompts[TemplateAdminTask].schemaVersion

	ctxReq, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	out, err := e.client.GenerateJSON(ctxReq, e.cfg.Model, p, format)
	if err != nil {
		e.logger.Error("genai: admin task", slog.Any("error", err))
		return nil, fmt.Errorf("generate: %w", err)
	}

	res, j, err := ParseAdminTask(out.Text)
	if err != nil {
		e.logger.Warn("genai: admin task parse", slog.Any("error", err), slog.String("raw", out.Text))
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if schemaVer != "" {
		if err := e.loader.Validate(ctxReq, schemaVer, []byte(j)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ParseAdminTask extracts the JSON object from the model output. It returns
// the decoded result and the JSON text it was decoded from.
func ParseAdminTask(s string) (*AdminTaskResult, string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, "", ErrEmptyResponse
	}
	j := extractJSON(s)
	if j == "" {
		return nil, "", ErrNoJSON
	}
	var r AdminTaskResult
	if err := json.Unmarshal([]byte(j), &r); err != nil {
		return nil, "", fmt.Errorf("json unmarshal: %w", err)
	}
	return &r, j, nil
}

// extractJSON returns the substring from the first '{' to the last '}' in the input.
// Model output often wraps JSON in text or markdown fences.
func extractJSON(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return s[first : last+1]
}
