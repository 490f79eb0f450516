package changefeed_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/garnizeh/jobboard/internal/changefeed"
	"github.com/garnizeh/jobboard/pkg/repository"
)

func redisURL(t *testing.T) string {
	t.Helper()
	u := os.Getenv("JOBBOARD_TEST_REDIS_URL")
	if u == "" {
		t.Skip("JOBBOARD_TEST_REDIS_URL not set")
	}
	return u
}

func TestConnect_BadURL(t *testing.T) {
	if _, err := changefeed.Connect(context.Background(), "://nope", nil); err == nil {
		t.Fatalf("expected error for malformed url")
	}
}

func TestPublishSubscribe_FiltersByCollection(t *testing.T) {
	url := redisURL(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n, err := changefeed.Connect(ctx, url, nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer n.Close()

	subCtx, subCancel := context.WithCancel(ctx)
	jobs, err := n.Subscribe(subCtx, repository.Jobs)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := n.Publish(ctx, repository.Users); err != nil {
		t.Fatalf("Publish users: %v", err)
	}
	if err := n.Publish(ctx, repository.Jobs); err != nil {
		t.Fatalf("Publish jobs: %v", err)
	}

	select {
	case <-jobs:
	case <-ctx.Done():
		t.Fatalf("no jobs signal received")
	}

	subCancel()
	for range jobs {
	}
}
