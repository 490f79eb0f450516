package sqlite

import (
	"log/slog"
	"os"
	"time"

	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// SQLiteRepo implements the local repositories using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.SchemaRepo = (*SQLiteRepo)(nil)
var _ repository.TemplateRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
