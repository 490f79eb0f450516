package db_test

import (
	"context"
	"testing"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/db"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()

	d, err := db.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 migrations recorded, got %d", count)
	}

	var name string
	r1 := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='local_storage'`)
	if err := r1.Scan(&name); err != nil {
		t.Fatalf("expected local_storage table exists: %v", err)
	}
}

func TestMigrate_SeedsTemplatesAndSchemas(t *testing.T) {
	ctx := context.Background()

	d, err := db.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	tests := []struct {
		name      string
		wantLink  bool
		schemaVer string
	}{
		{"job_description", false, ""},
		{"job_search", true, "job_search_v1"},
		{"admin_task", true, "admin_task_v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var text string
			var schemaVer *string
			row := d.QueryRow(ctx, `SELECT template_text, schema_version FROM ai_templates WHERE name = ? AND version = 'v1'`, tt.name)
			if err := row.Scan(&text, &schemaVer); err != nil {
				t.Fatalf("template %s not seeded: %v", tt.name, err)
			}
			if text == "" {
				t.Fatalf("template %s is empty", tt.name)
			}
			if tt.wantLink {
				if schemaVer == nil || *schemaVer != tt.schemaVer {
					t.Fatalf("template %s schema link = %v, want %s", tt.name, schemaVer, tt.schemaVer)
				}
			} else if schemaVer != nil {
				t.Fatalf("template %s unexpectedly linked to %s", tt.name, *schemaVer)
			}
		})
	}
}
