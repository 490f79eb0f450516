// Package changefeed is a redis pub/sub bus carrying "collection changed"
// signals between processes sharing one remote document store.
package changefeed

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/garnizeh/jobboard/pkg/repository"
)

// DefaultChannel is the redis channel every process publishes to.
const DefaultChannel = "jobboard:changes"

type Notifier struct {
	rdb     *redis.Client
	channel string
	logger  *slog.Logger
}

// Connect parses redisURL and verifies connectivity.
func Connect(ctx context.Context, redisURL string, logger *slog.Logger) (*Notifier, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return New(client, DefaultChannel, logger), nil
}

func New(rdb *redis.Client, channel string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &Notifier{rdb: rdb, channel: channel, logger: logger}
}

// Publish announces that coll changed.
func (n *Notifier) Publish(ctx context.Context, coll repository.Collection) error {
	if err := n.rdb.Publish(ctx, n.channel, string(coll)).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", coll, err)
	}
	return nil
}

// Subscribe returns a stream that receives a value whenever coll changes.
// Bursts are coalesced into one pending signal. The stream is closed when
// ctx is done.
func (n *Notifier) Subscribe(ctx context.Context, coll repository.Collection) (<-chan struct{}, error) {
	ps := n.rdb.Subscribe(ctx, n.channel)
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", n.channel, err)
	}

	out := make(chan struct{}, 1)
	msgs := ps.Channel()
	go func() {
		defer close(out)
		defer ps.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					n.logger.Warn("changefeed: subscription closed", slog.String("collection", string(coll)))
					return
				}
				if m.Payload != string(coll) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (n *Notifier) Close() error {
	return n.rdb.Close()
}
