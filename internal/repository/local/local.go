// Package local is the demo backend: every write is accepted and nothing is
// persisted or pushed back.
package local

import (
	"context"
	"log/slog"
	"os"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

type Backend struct {
	logger *slog.Logger
}

var _ repository.Backend = (*Backend)(nil)

func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &Backend{logger: logger}
}

func (b *Backend) Consistency() repository.Consistency { return repository.ConsistencyOptimistic }

func (b *Backend) Add(ctx context.Context, coll repository.Collection, id string, doc any) error {
	b.logger.Debug("local add", slog.String("collection", string(coll)), slog.String("id", id))
	return nil
}

func (b *Backend) Delete(ctx context.Context, coll repository.Collection, id string) error {
	b.logger.Debug("local delete", slog.String("collection", string(coll)), slog.String("id", id))
	return nil
}

func (b *Backend) Patch(ctx context.Context, coll repository.Collection, id string, fields map[string]any) error {
	b.logger.Debug("local patch", slog.String("collection", string(coll)), slog.String("id", id), slog.Int("fields", len(fields)))
	return nil
}

func (b *Backend) PutSettings(ctx context.Context, s models.SiteSettings) error {
	return nil
}

func (b *Backend) WatchJobs(ctx context.Context) (<-chan []models.Job, error) { return nil, nil }

func (b *Backend) WatchUsers(ctx context.Context) (<-chan []models.User, error) { return nil, nil }

func (b *Backend) WatchSettings(ctx context.Context) (<-chan *models.SiteSettings, error) {
	return nil, nil
}
