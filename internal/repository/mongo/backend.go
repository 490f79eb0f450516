// Package mongo is the remote document backend. Every write is acknowledged
// by the server and becomes visible through the watch streams.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// Signaler carries change signals between processes. When a Backend has no
// Signaler it falls back to MongoDB change streams.
type Signaler interface {
	Publish(ctx context.Context, coll repository.Collection) error
	Subscribe(ctx context.Context, coll repository.Collection) (<-chan struct{}, error)
}

type Backend struct {
	db     *mongo.Database
	bus    Signaler
	logger *slog.Logger
}

var _ repository.Backend = (*Backend)(nil)
var _ repository.ProfileStore = (*Backend)(nil)

// Connect opens a client for uri and verifies connectivity.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// New returns a backend over db. bus may be nil.
func New(db *mongo.Database, bus Signaler, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return &Backend{db: db, bus: bus, logger: logger}
}

func (b *Backend) Consistency() repository.Consistency { return repository.ConsistencyEventual }

func (b *Backend) collection(coll repository.Collection) *mongo.Collection {
	return b.db.Collection(string(coll))
}

// ErrDuplicateID is returned by Add when a document with the same id exists.
var ErrDuplicateID = errors.New("document id already exists")

// Add inserts doc under id. The entity id doubles as the document _id so
// deletes and patches address the same document. An existing document is
// never replaced.
func (b *Backend) Add(ctx context.Context, coll repository.Collection, id string, doc any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("add %s/%s: %w", coll, id, err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("add %s/%s: %w", coll, id, err)
	}
	m["_id"] = id
	if _, err := b.collection(coll).InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("add %s/%s: %w", coll, id, ErrDuplicateID)
		}
		return fmt.Errorf("add %s/%s: %w", coll, id, err)
	}
	b.changed(ctx, coll)
	return nil
}

func (b *Backend) Delete(ctx context.Context, coll repository.Collection, id string) error {
	if _, err := b.collection(coll).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s/%s: %w", coll, id, err)
	}
	b.changed(ctx, coll)
	return nil
}

// Patch sets fields on an existing document. A missing document is left missing.
func (b *Backend) Patch(ctx context.Context, coll repository.Collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if _, err := b.collection(coll).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)}); err != nil {
		return fmt.Errorf("patch %s/%s: %w", coll, id, err)
	}
	b.changed(ctx, coll)
	return nil
}

type settingsDocument struct {
	ID                  string `bson:"_id"`
	models.SiteSettings `bson:",inline"`
}

func (b *Backend) PutSettings(ctx context.Context, s models.SiteSettings) error {
	doc := settingsDocument{ID: repository.SettingsDocumentID, SiteSettings: s}
	opts := options.Replace().SetUpsert(true)
	if _, err := b.collection(repository.Config).ReplaceOne(ctx, bson.M{"_id": repository.SettingsDocumentID}, doc, opts); err != nil {
		return fmt.Errorf("put settings: %w", err)
	}
	b.changed(ctx, repository.Config)
	return nil
}

// changed publishes a change signal. Change streams need no help.
func (b *Backend) changed(ctx context.Context, coll repository.Collection) {
	if b.bus == nil {
		return
	}
	if err := b.bus.Publish(ctx, coll); err != nil {
		b.logger.Warn("mongo: change signal not published", slog.String("collection", string(coll)), slog.Any("error", err))
	}
}

// GetUser returns the profile document for id, or nil when there is none.
func (b *Backend) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := b.collection(repository.Users).FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	u.ID = id
	return &u, nil
}

func (b *Backend) SetUser(ctx context.Context, id string, u models.User) error {
	u.ID = id
	opts := options.Replace().SetUpsert(true)
	if _, err := b.collection(repository.Users).ReplaceOne(ctx, bson.M{"_id": id}, u, opts); err != nil {
		return fmt.Errorf("set user %s: %w", id, err)
	}
	b.changed(ctx, repository.Users)
	return nil
}

func (b *Backend) PatchUser(ctx context.Context, id string, fields map[string]any) error {
	return b.Patch(ctx, repository.Users, id, fields)
}
