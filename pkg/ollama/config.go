package ollama

import (
	"time"

	"github.com/garnizeh/jobboard/internal/config"
)

// DefaultConfig returns the client settings used when none are configured.
// Retries stay at zero: generation requests are never retried unless asked for.
func DefaultConfig() config.OllamaConfig {
	return config.OllamaConfig{
		BaseURL:                 "http://localhost:11434",
		DefaultModelNames:       []string{"llama3.2"},
		Timeout:                 60 * time.Second,
		Retries:                 0,
		Backoff:                 500 * time.Millisecond,
		CircuitFailureThreshold: 5,
		CircuitReset:            30 * time.Second,
	}
}
