package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/jobboard/api"
	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/changefeed"
	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/genai"
	"github.com/garnizeh/jobboard/internal/repository/local"
	"github.com/garnizeh/jobboard/internal/repository/mongo"
	"github.com/garnizeh/jobboard/internal/repository/sqlite"
	"github.com/garnizeh/jobboard/internal/session"
	"github.com/garnizeh/jobboard/internal/store"
	"github.com/garnizeh/jobboard/pkg/ollama"
	"github.com/garnizeh/jobboard/pkg/repository"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// storeNamespace is the local storage namespace of the server-wide store.
const storeNamespace = "store"

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)
	ollama.SetLogger(logger)

	log.Printf("Starting jobboard server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection
	conn, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SeedFiles); err != nil {
			log.Fatalf("Failed to migrate DB: %v", err)
		}
	}
	repo := sqlite.New(conn, logger)

	opts := session.Options{
		LoginDomain:     cfg.Auth.LoginDomain,
		DefaultPassword: cfg.Auth.DefaultPassword,
		Logger:          logger,
	}
	var (
		backend  repository.Backend
		authFor  func(repository.LocalStorage) repository.AuthClient
		shutdown []func(context.Context)
	)

	if cfg.RemoteEnabled() {
		client, err := mongo.Connect(ctx, cfg.Remote.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to remote store: %v", err)
		}
		shutdown = append(shutdown, func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				log.Printf("Error disconnecting remote store: %v", err)
			}
		})
		database := client.Database(cfg.Remote.ProjectID)

		var bus mongo.Signaler
		if cfg.Remote.RedisURL != "" {
			notifier, err := changefeed.Connect(ctx, cfg.Remote.RedisURL, logger)
			if err != nil {
				log.Fatalf("Failed to connect change bus: %v", err)
			}
			shutdown = append(shutdown, func(context.Context) {
				if err := notifier.Close(); err != nil {
					log.Printf("Error closing change bus: %v", err)
				}
			})
			bus = notifier
		}

		remote := mongo.New(database, bus, logger)
		accounts := mongo.NewAccounts(database)
		if err := accounts.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to prepare accounts: %v", err)
		}
		backend = remote
		opts.Profiles = remote
		authFor = func(storage repository.LocalStorage) repository.AuthClient {
			return accounts.Client(storage, logger)
		}
		log.Printf("Remote mode: project %s", cfg.Remote.ProjectID)
	} else {
		backend = local.New(logger)
		log.Println("Demo mode: local data only")
	}

	st := store.New(backend, repo.Storage(storeNamespace), logger)
	if err := st.Start(ctx); err != nil {
		log.Fatalf("Failed to start store: %v", err)
	}

	// generation is optional; the AI endpoints answer 503 without it
	var engine *genai.Engine
	oc, err := ollama.NewDefaultClient(cfg.Ollama)
	if err != nil {
		log.Printf("AI disabled: %v", err)
	} else {
		shutdown = append(shutdown, func(context.Context) { _ = oc.Close() })
		engine, err = genai.NewEngine(ctx, oc, cfg.AI, repo, repo, logger)
		if err != nil {
			log.Printf("AI disabled: %v", err)
			engine = nil
		}
	}

	sessions := api.NewSessionRegistry(repo, func(sid string) repository.LocalStorage { return repo.Storage(sid) }, authFor, opts)
	// tokens expire TokenDuration after issue, so a session idle that long is dead
	sessions.StartSweeper(ctx, cfg.TokenDuration/4, cfg.TokenDuration)

	handler := api.SetupRoutes(cfg, version, buildTime, api.Deps{
		Store:     st,
		Sessions:  sessions,
		Engine:    engine,
		Schemas:   repo,
		Templates: repo,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout + cfg.AI.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	sessions.Close()
	st.Close()
	for i := len(shutdown) - 1; i >= 0; i-- {
		shutdown[i](ctx)
	}

	// Close database connection
	if err := conn.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
