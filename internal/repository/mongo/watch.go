package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// WatchJobs streams the jobs collection ordered by postedAt descending.
// postedAt is free text, so the order is lexicographic.
func (b *Backend) WatchJobs(ctx context.Context) (<-chan []models.Job, error) {
	return watch(ctx, b, repository.Jobs, b.loadJobs)
}

func (b *Backend) WatchUsers(ctx context.Context) (<-chan []models.User, error) {
	return watch(ctx, b, repository.Users, b.loadUsers)
}

// WatchSettings streams the settings document, or nil while it does not exist.
func (b *Backend) WatchSettings(ctx context.Context) (<-chan *models.SiteSettings, error) {
	return watch(ctx, b, repository.Config, b.loadSettings)
}

// watch sends an initial snapshot, then a fresh snapshot after every change
// signal. A failed load is logged and skipped.
func watch[T any](ctx context.Context, b *Backend, coll repository.Collection, load func(context.Context) (T, error)) (<-chan T, error) {
	signals, err := b.signals(ctx, coll)
	if err != nil {
		return nil, err
	}

	out := make(chan T)
	go func() {
		defer close(out)
		send := func() bool {
			v, err := load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.logger.Error("mongo: snapshot failed", slog.String("collection", string(coll)), slog.Any("error", err))
				}
				return ctx.Err() == nil
			}
			select {
			case out <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				if !send() {
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *Backend) signals(ctx context.Context, coll repository.Collection) (<-chan struct{}, error) {
	if b.bus != nil {
		return b.bus.Subscribe(ctx, coll)
	}

	cs, err := b.collection(coll).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", coll, err)
	}
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer cs.Close(context.Background())
		for cs.Next(ctx) {
			select {
			case out <- struct{}{}:
			default:
			}
		}
		if err := cs.Err(); err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
			b.logger.Error("mongo: change stream ended", slog.String("collection", string(coll)), slog.Any("error", err))
		}
	}()
	return out, nil
}

func (b *Backend) loadJobs(ctx context.Context) ([]models.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "postedAt", Value: -1}})
	return findAll[models.Job](ctx, b.collection(repository.Jobs), opts)
}

func (b *Backend) loadUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, b.collection(repository.Users), options.Find())
}

func (b *Backend) loadSettings(ctx context.Context) (*models.SiteSettings, error) {
	var doc settingsDocument
	err := b.collection(repository.Config).FindOne(ctx, bson.M{"_id": repository.SettingsDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	s := doc.SiteSettings
	return &s, nil
}

func findAll[T any](ctx context.Context, c *mongo.Collection, opts *options.FindOptions) ([]T, error) {
	cursor, err := c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.Name(), err)
		}
		out = append(out, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
