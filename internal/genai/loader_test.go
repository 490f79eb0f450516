package genai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/jobboard/internal/genai"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// fakeSchemaRepo is a small in-memory implementation of repository.SchemaRepo for tests.
type fakeSchemaRepo struct {
	schemas map[string]models.Schema
	listErr error
}

func newFakeSchemaRepo() *fakeSchemaRepo {
	return &fakeSchemaRepo{schemas: make(map[string]models.Schema)}
}

func (f *fakeSchemaRepo) CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error) {
	id := int64(len(f.schemas) + 1)
	f.schemas[version] = models.Schema{ID: id, Version: version, Description: description, SchemaJSON: schemaJSON}
	return id, nil
}

func (f *fakeSchemaRepo) GetSchemaByVersion(ctx context.Context, version string) (*models.Schema, error) {
	if s, ok := f.schemas[version]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeSchemaRepo) ListSchemas(ctx context.Context) ([]models.Schema, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Schema, 0, len(f.schemas))
	for _, s := range f.schemas {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSchemaRepo) DeleteSchema(ctx context.Context, version string) error {
	if _, ok := f.schemas[version]; !ok {
		return errors.New("not found")
	}
	delete(f.schemas, version)
	return nil
}

var _ repository.SchemaRepo = (*fakeSchemaRepo)(nil)

func TestLoader_ReloadAndValidate(t *testing.T) {
	fr := newFakeSchemaRepo()
	schema := `{"$schema":"http://json-schema.org/draft-07/schema#","type":"object","required":["text"],"properties":{"text":{"type":"string"}}}`
	if _, err := fr.CreateSchema(context.Background(), "search_v1", "search", schema); err != nil {
		t.Fatalf("seed schema failed: %v", err)
	}

	l, err := genai.NewLoader(context.Background(), fr)
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}
	if s, ok := l.GetSchema("search_v1"); !ok || s == nil {
		t.Fatalf("expected schema in cache for search_v1")
	}

	if err := l.Validate(context.Background(), "search_v1", []byte(`{"text":"ok"}`)); err != nil {
		t.Fatalf("expected valid document, got %v", err)
	}
	if err := l.Validate(context.Background(), "search_v1", []byte(`{"sources":[]}`)); !errors.Is(err, genai.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if err := l.Validate(context.Background(), "missing", []byte(`{}`)); err == nil {
		t.Fatalf("expected error for unknown schema version")
	}
}

func TestLoader_Reload_PicksUpChanges(t *testing.T) {
	fr := newFakeSchemaRepo()
	l, err := genai.NewLoader(context.Background(), fr)
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}
	if _, ok := l.GetSchema("v2"); ok {
		t.Fatalf("did not expect v2 before reload")
	}

	_, _ = fr.CreateSchema(context.Background(), "v2", "", `{"type":"object"}`)
	if err := l.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if _, ok := l.GetSchema("v2"); !ok {
		t.Fatalf("expected v2 after reload")
	}
}

func TestLoader_ListError(t *testing.T) {
	fr := newFakeSchemaRepo()
	fr.listErr = errors.New("db down")

	if _, err := genai.NewLoader(context.Background(), fr); err == nil {
		t.Fatalf("expected error when listing schemas fails")
	}
}

func TestLoader_InvalidSchemaJSON(t *testing.T) {
	fr := newFakeSchemaRepo()
	_, _ = fr.CreateSchema(context.Background(), "bad", "", `{not json`)

	if _, err := genai.NewLoader(context.Background(), fr); err == nil {
		t.Fatalf("expected compile error for invalid schema JSON")
	}
}
