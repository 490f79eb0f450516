package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/garnizeh/jobboard/internal/config"
)

// Replaces the configured database with a backup. The server must be stopped.
func main() {
	from := flag.String("from", "", "backup file to restore")
	flag.Parse()

	if *from == "" {
		fmt.Fprintln(os.Stderr, "Restore error: -from is required")
		os.Exit(1)
	}
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	dst := cfg.DatabasePath

	srcFile, err := os.Open(*from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer srcFile.Close()

	// write beside the target and rename so a failed copy leaves it intact
	tmp := dst + ".restore"
	dstFile, err := os.Create(tmp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(tmp)
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(tmp)
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	// stale WAL files belong to the replaced database
	for _, suffix := range []string{"-wal", "-shm"} {
		os.Remove(dst + suffix)
	}
	if err := os.Rename(tmp, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restored from %s.\n", *from)
}
