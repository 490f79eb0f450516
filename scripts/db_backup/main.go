package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/garnizeh/jobboard/internal/config"
	"github.com/garnizeh/jobboard/internal/db"
)

// Writes a consistent snapshot of the database, including the per-client
// local storage and the client session table.
func main() {
	out := flag.String("out", "", "backup path (default <database_path>.<timestamp>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	dst := *out
	if dst == "" {
		dst = fmt.Sprintf("%s.%s.bak", cfg.DatabasePath, time.Now().UTC().Format("20060102T150405"))
	}
	if _, err := os.Stat(dst); err == nil {
		fmt.Fprintf(os.Stderr, "Backup error: %s already exists\n", dst)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// VACUUM INTO copies a live database without tearing
	if _, err := database.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup written to %s.\n", dst)
}
