package api_test

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/garnizeh/jobboard/api"
)

func TestMain(m *testing.M) {
	api.SetLogger(quietLogger())
	os.Exit(m.Run())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
