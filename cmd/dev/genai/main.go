// Command genai runs one generation task against a local model server using
// the prompts stored in the configured database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/genai"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/pkg/ollama"
)

func main() {
	var (
		task     = flag.String("task", "description", "description, search or admin")
		title    = flag.String("title", "مطور برمجيات", "job title (description)")
		sector   = flag.String("sector", "تكنولوجيا المعلومات", "job sector (description)")
		location = flag.String("location", "بغداد", "governorate")
		keywords = flag.String("keywords", "", "extra keywords (description)")
		prompt   = flag.String("prompt", "", "search query or admin request")
		model    = flag.String("model", "", "model name, overrides config")
	)
	flag.Parse()

	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	oc := ollama.DefaultConfig()
	if cfg.Ollama.BaseURL != "" {
		oc.BaseURL = cfg.Ollama.BaseURL
	}
	ai := config.AIConfig{Model: cfg.AI.Model, Timeout: oc.Timeout}
	if *model != "" {
		ai.Model = *model
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ollama.SetLogger(logger)
	ctx := context.Background()

	conn, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	repo := sqlite.New(conn, logger)

	client, err := ollama.NewDefaultClient(oc)
	if err != nil {
		log.Fatalf("ollama client: %v", err)
	}
	defer client.Close()

	engine, err := genai.NewEngine(ctx, client, ai, repo, repo, logger)
	if err != nil {
		log.Fatalf("engine: %v", err)
	}

	var out any
	switch *task {
	case "description":
		out = engine.GenerateJobDescription(ctx, *title, *sector, *location, *keywords)
	case "search":
		out, err = engine.SearchRealTimeJobs(ctx, *prompt, *location)
	case "admin":
		out, err = engine.AdminTask(ctx, *prompt)
	default:
		log.Fatalf("unknown task %q", *task)
	}
	if err != nil {
		log.Fatalf("%s: %v", *task, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
