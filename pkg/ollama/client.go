package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/garnizeh/jobboard/internal/config"
	"github.com/ollama/ollama/api"
)

var ErrCircuitOpen = errors.New("ollama circuit open")

// Client wraps the Ollama API client and adds retries, timeout, and circuit breaker.
type Client struct {
	api    *api.Client
	cfg    config.OllamaConfig
	client *http.Client

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32 // atomic flag for Close()
}

// GenerateResult is a typed representation of a model response.
type GenerateResult struct {
	Text string          `json:"text"`
	Raw  json.RawMessage `json:"raw"`
	Meta map[string]any  `json:"meta,omitempty"`
}

// NewClient creates a new Ollama client wrapper.
func NewClient(cfg config.OllamaConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{
		api:    api.NewClient(u, httpClient),
		cfg:    cfg,
		client: httpClient,
	}
	logger.Info("ollama: NewClient created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

func NewDefaultClient(cfg config.OllamaConfig) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

func (c *Client) isCircuitOpen() bool {
	if c.cfg.CircuitFailureThreshold <= 0 {
		return false
	}
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// attempt half-open: reset failures and allow a request
	atomic.StoreInt32(&c.failures, 0)
	return false
}

// Close releases idle connections on the underlying HTTP transport when
// supported. Close is idempotent.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
			logger.Info("ollama: client Close() called - CloseIdleConnections invoked")
		}
	}
	return nil
}

// package-level logger for pkg/ollama; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/ollama. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if c.cfg.CircuitFailureThreshold > 0 && v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
	}
}

// Health pings the Ollama instance by listing the installed models.
func (c *Client) Health(ctx context.Context) error {
	if c.isCircuitOpen() {
		return ErrCircuitOpen
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	models, err := c.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if len(models) == 0 {
		c.recordFailure()
		return fmt.Errorf("health check failed: no models returned")
	}

	return nil
}

// ModelInfo is a lightweight model descriptor returned by ListModels.
type ModelInfo struct {
	Name string          `json:"name"`
	Raw  json.RawMessage `json:"-"`
}

// ListModels returns the models installed on the Ollama instance.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if c.isCircuitOpen() {
		return nil, ErrCircuitOpen
	}

	resp, err := c.api.List(ctx)
	if err != nil {
		c.recordFailure()
		return nil, err
	}

	out := make([]ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		b, _ := json.Marshal(m)
		out = append(out, ModelInfo{Name: m.Name, Raw: b})
	}

	atomic.StoreInt32(&c.failures, 0)
	return out, nil
}

// Generate sends a prompt to the model and returns the concatenated streamed text.
func (c *Client) Generate(ctx context.Context, model string, prompt string) (GenerateResult, error) {
	return c.generate(ctx, &api.GenerateRequest{Model: model, Prompt: prompt})
}

// GenerateJSON asks the model for output constrained to format, either the
// literal "json" or a JSON schema document.
func (c *Client) GenerateJSON(ctx context.Context, model, prompt string, format json.RawMessage) (GenerateResult, error) {
	if len(format) == 0 {
		format = json.RawMessage(`"json"`)
	}
	return c.generate(ctx, &api.GenerateRequest{Model: model, Prompt: prompt, Format: format})
}

func (c *Client) generate(ctx context.Context, req *api.GenerateRequest) (GenerateResult, error) {
	var lastErr error
	var empty GenerateResult
	if c.isCircuitOpen() {
		return empty, ErrCircuitOpen
	}

	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		ctxReq, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		var sb strings.Builder
		var lastRaw []byte
		start := time.Now()
		err := c.api.Generate(ctxReq, req, func(r api.GenerateResponse) error {
			sb.WriteString(r.Response)
			if r.Done {
				lastRaw, _ = json.Marshal(r)
			}
			return nil
		})

		cancel()
		latency := time.Since(start)
		if err == nil {
			atomic.StoreInt32(&c.failures, 0)
			meta := map[string]any{"model": req.Model, "latency_ms": latency.Milliseconds()}
			return GenerateResult{Text: sb.String(), Raw: lastRaw, Meta: meta}, nil
		}

		lastErr = err
		c.recordFailure()
		logger.Warn("ollama: generate failed",
			slog.String("model", req.Model),
			slog.Int("attempt", attempt+1),
			slog.Any("error", err))

		if attempt == c.cfg.Retries {
			break
		}
		time.Sleep(c.cfg.Backoff * time.Duration(attempt+1))
		if c.isCircuitOpen() {
			return empty, ErrCircuitOpen
		}
	}

	return empty, fmt.Errorf("generate failed after %d attempt(s): %w", c.cfg.Retries+1, lastErr)
}
