package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/garnizeh/jobboard/api"
	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/config"
	dbpkg "github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/genai"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/internal/session"
	"github.com/garnizeh/jobboard/internal/store"
	"github.com/garnizeh/jobboard/pkg/ollama"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/garnizeh/jobboard/pkg/repository/mock"
)

const testSecret = "testsecret"

type testEnv struct {
	router   http.Handler
	store    *store.Store
	backend  *mock.Backend
	repo     *sqlite.SQLiteRepo
	sessions *api.SessionRegistry
}

type envOptions struct {
	gen  genai.Generator
	auth func(repository.LocalStorage) repository.AuthClient
	opts session.Options
}

// newEnv wires the router over a local store, an in-memory sqlite session
// repository and, when gen is set, a generation engine.
func newEnv(t *testing.T, o envOptions) *testEnv {
	t.Helper()
	ctx := context.Background()

	d, err := dbpkg.New(ctx, ":memory:", quietLogger())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := sqlite.New(d, quietLogger())

	backend := mock.NewBackend(repository.ConsistencyOptimistic)
	st := store.New(backend, mock.NewStorage(), quietLogger())
	if err := st.Start(ctx); err != nil {
		t.Fatalf("start store: %v", err)
	}
	t.Cleanup(st.Close)

	e := &testEnv{store: st, backend: backend, repo: repo}
	e.mount(t, o)
	return e
}

// newEnvOver builds a second router sharing base's store and session
// repository, as a restarted server would.
func newEnvOver(t *testing.T, base *testEnv) *testEnv {
	t.Helper()
	e := &testEnv{store: base.store, backend: base.backend, repo: base.repo}
	e.mount(t, envOptions{})
	return e
}

func (e *testEnv) mount(t *testing.T, o envOptions) {
	t.Helper()
	ctx := context.Background()
	repo := e.repo

	var engine *genai.Engine
	if o.gen != nil {
		var err error
		engine, err = genai.NewEngine(ctx, o.gen, config.AIConfig{Model: "m", Timeout: 2 * time.Second}, repo, repo, quietLogger())
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
	}

	opts := o.opts
	opts.Logger = quietLogger()
	sessions := api.NewSessionRegistry(repo, func(sid string) repository.LocalStorage { return repo.Storage(sid) }, o.auth, opts)
	t.Cleanup(sessions.Close)
	e.sessions = sessions

	cfg := &config.Config{JWTSecret: testSecret, TokenDuration: time.Hour}
	e.router = api.SetupRoutes(cfg, "test", "now", api.Deps{
		Store:     e.store,
		Sessions:  sessions,
		Engine:    engine,
		Schemas:   repo,
		Templates: repo,
	})
}

func (e *testEnv) do(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// session opens an anonymous client session and returns its token.
func (e *testEnv) session(t *testing.T) string {
	t.Helper()
	w := e.do(t, "", http.MethodPost, "/v1/sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		SID   string `json:"sid"`
	}
	decode(t, w, &resp)
	if resp.Token == "" || resp.SID == "" {
		t.Fatalf("empty session response: %+v", resp)
	}
	return resp.Token
}

// login opens a session signed in as one of the demo identities.
func (e *testEnv) login(t *testing.T, demo string) string {
	t.Helper()
	token := e.session(t)
	w := e.do(t, token, http.MethodPost, "/v1/auth/login", map[string]string{"identifier": demo, "secret": demo})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", demo, w.Code, w.Body.String())
	}
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

// fakeGenerator returns canned output.
type fakeGenerator struct {
	mu   sync.Mutex
	text string
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string) (ollama.GenerateResult, error) {
	return f.GenerateJSON(ctx, model, prompt, nil)
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, model, prompt string, format json.RawMessage) (ollama.GenerateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return ollama.GenerateResult{}, f.err
	}
	return ollama.GenerateResult{Text: f.text}, nil
}
