package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Migrate applies migrations and seed files embedded in the repository.
// It creates a `schema_migrations` table to track applied migrations and applies
// any SQL files under `migrations/` that have not yet been recorded. Seeds under
// `seed/` are upserted on every run:
//
//	schema_<version>.json         -> ai_schemas
//	template_<name>_<version>.txt -> ai_templates
//
// A template whose schema_<name>_<version>.json exists is linked to it.
func Migrate(ctx context.Context, d *DB, migrationFS embed.FS, seedFS embed.FS) error {
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	migDir := "migrations"

	files, err := listFiles(migrationFS, migDir, ".sql")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for _, fname := range files {
		version := strings.TrimSuffix(fname, path.Ext(fname))

		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			continue
		}

		b, err := fs.ReadFile(migrationFS, path.Join(migDir, fname))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec migration %s: %w", fname, err)
		}

		if _, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
		d.logger.Info("migration applied", "version", version)
	}

	return seed(ctx, d, seedFS)
}

func seed(ctx context.Context, d *DB, seedFS embed.FS) error {
	seedDir := "seed"

	schemas, err := listFiles(seedFS, seedDir, ".json")
	if err != nil {
		// seeds are optional
		return nil
	}
	known := make(map[string]bool, len(schemas))
	for _, fname := range schemas {
		if !strings.HasPrefix(fname, "schema_") {
			continue
		}
		version := strings.TrimSuffix(strings.TrimPrefix(fname, "schema_"), ".json")
		b, err := fs.ReadFile(seedFS, path.Join(seedDir, fname))
		if err != nil {
			return fmt.Errorf("read seed %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, `INSERT INTO ai_schemas (version, description, schema_json, created, updated) VALUES (?, ?, ?, strftime('%s','now'), strftime('%s','now')) ON CONFLICT(version) DO UPDATE SET schema_json=excluded.schema_json, updated=strftime('%s','now')`, version, "seeded "+version, string(b)); err != nil {
			return fmt.Errorf("seed schema %s: %w", version, err)
		}
		known[version] = true
	}

	templates, err := listFiles(seedFS, seedDir, ".txt")
	if err != nil {
		return nil
	}
	for _, fname := range templates {
		if !strings.HasPrefix(fname, "template_") {
			continue
		}
		base := strings.TrimSuffix(strings.TrimPrefix(fname, "template_"), ".txt")
		i := strings.LastIndex(base, "_")
		if i <= 0 {
			return fmt.Errorf("seed template %s: expected template_<name>_<version>.txt", fname)
		}
		name, version := base[:i], base[i+1:]

		b, err := fs.ReadFile(seedFS, path.Join(seedDir, fname))
		if err != nil {
			return fmt.Errorf("read seed %s: %w", fname, err)
		}
		var schemaVer any
		if known[base] {
			schemaVer = base
		}
		if _, err := d.Exec(ctx, `INSERT INTO ai_templates (name, version, template_text, schema_version, metadata, created, updated) VALUES (?, ?, ?, ?, ?, strftime('%s','now'), strftime('%s','now')) ON CONFLICT(name, version) DO UPDATE SET template_text=excluded.template_text, schema_version=excluded.schema_version, updated=strftime('%s','now')`, name, version, string(b), schemaVer, `{"owner":"system"}`); err != nil {
			return fmt.Errorf("seed template %s: %w", base, err)
		}
	}

	return nil
}

func listFiles(fsys embed.FS, dir, ext string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ext) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
