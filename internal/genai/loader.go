package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/qri-io/jsonschema"
)

// Loader loads and caches compiled JSON schemas from the repository.
type Loader struct {
	repo  repository.SchemaRepo
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

func NewLoader(ctx context.Context, r repository.SchemaRepo) (*Loader, error) {
	l := &Loader{
		repo:  r,
		cache: make(map[string]*jsonschema.Schema),
	}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}

	return l, nil
}

// GetSchema returns a compiled schema for a version.
func (l *Loader) GetSchema(version string) (*jsonschema.Schema, bool) {
	l.mu.RLock()
	s, ok := l.cache[version]
	l.mu.RUnlock()

	return s, ok
}

// Reload loads all schemas from the DB and compiles them.
func (l *Loader) Reload(ctx context.Context) error {
	rows, err := l.repo.ListSchemas(ctx)
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}

	next := make(map[string]*jsonschema.Schema, len(rows))
	for _, r := range rows {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(r.SchemaJSON), rs); err != nil {
			return fmt.Errorf("compile schema %s: %w", r.Version, err)
		}
		next[r.Version] = rs
	}

	l.mu.Lock()
	l.cache = next
	l.mu.Unlock()
	return nil
}

// Validate checks doc against the schema stored under version.
func (l *Loader) Validate(ctx context.Context, version string, doc []byte) error {
	s, ok := l.GetSchema(version)
	if !ok || s == nil {
		return fmt.Errorf("no schema found for version %s", version)
	}
	verrs, err := s.ValidateBytes(ctx, doc)
	if err != nil {
		return fmt.Errorf("schema validate error: %w", err)
	}
	if len(verrs) > 0 {
		msg := ""
		for _, v := range verrs {
			msg += v.Message + "; "
		}
		return fmt.Errorf("%w: %s", ErrSchemaMismatch, msg)
	}
	return nil
}
