package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PlaceholderProjectID is the unconfigured value shipped in sample configs.
const PlaceholderProjectID = "your-project-id"

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	Remote         RemoteConfig  `yaml:"remote"`
	Auth           AuthConfig    `yaml:"auth"`
	AI             AIConfig      `yaml:"ai"`
	Ollama         OllamaConfig  `yaml:"ollama"`
}

// RemoteConfig points at the remote document store. Remote mode is enabled
// only when ProjectID is set to a real value.
type RemoteConfig struct {
	ProjectID string `yaml:"project_id"`
	MongoURI  string `yaml:"mongo_uri"`
	// RedisURL enables the redis change bus instead of mongo change streams.
	RedisURL string `yaml:"redis_url"`
}

type AuthConfig struct {
	LoginDomain     string `yaml:"login_domain"`
	DefaultPassword string `yaml:"default_password"`
}

type AIConfig struct {
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type OllamaConfig struct {
	BaseURL                 string        `yaml:"base_url"`
	DefaultModelNames       []string      `yaml:"models"`
	Timeout                 time.Duration `yaml:"timeout"`
	Retries                 int           `yaml:"retries"`
	Backoff                 time.Duration `yaml:"backoff"`
	CircuitFailureThreshold int           `yaml:"circuit_failure_threshold"`
	CircuitReset            time.Duration `yaml:"circuit_reset"`
}

func LoadConfig(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	apiTimeout := 15 * time.Second
	tokenDuration := 24 * time.Hour

	cfg := &Config{
		Addr:           getEnv("JOBBOARD_ADDR", ":8080"),
		JWTSecret:      getEnv("JOBBOARD_JWT_SECRET", "supersecretkey"),
		APITimeout:     apiTimeout,
		DatabasePath:   getEnv("JOBBOARD_DATABASE_PATH", "jobboard.db"),
		TokenDuration:  tokenDuration,
		MigrateOnStart: getEnv("JOBBOARD_MIGRATE_ON_START", "true") == "true",
		Remote: RemoteConfig{
			ProjectID: getEnv("JOBBOARD_PROJECT_ID", ""),
			MongoURI:  getEnv("JOBBOARD_MONGO_URI", ""),
			RedisURL:  getEnv("JOBBOARD_REDIS_URL", ""),
		},
		AI: AIConfig{
			Model: getEnv("JOBBOARD_AI_MODEL", "llama3.2"),
		},
		Ollama: OllamaConfig{
			BaseURL: getEnv("JOBBOARD_OLLAMA_URL", ""),
			Retries: getEnvInt("JOBBOARD_OLLAMA_RETRIES", 0),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// RemoteEnabled reports whether the remote backend should be used.
func (c *Config) RemoteEnabled() bool {
	return c.Remote.ProjectID != "" && c.Remote.ProjectID != PlaceholderProjectID
}

// Validate fills defaults and rejects unusable configurations.
func (c *Config) Validate() error {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 24 * time.Hour
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == "supersecretkey" && os.Getenv("JOBBOARD_ENV") != "development" {
		return errors.New("insecure jwt_secret outside development")
	}

	if c.RemoteEnabled() && c.Remote.MongoURI == "" {
		return fmt.Errorf("remote.mongo_uri is required for project %q", c.Remote.ProjectID)
	}

	if c.Auth.LoginDomain == "" {
		c.Auth.LoginDomain = "iraqjobs.com"
	}
	if c.Auth.DefaultPassword == "" {
		c.Auth.DefaultPassword = "password123"
	}

	if c.AI.Model == "" {
		return errors.New("ai.model is required")
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = 60 * time.Second
	}

	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if len(c.Ollama.DefaultModelNames) == 0 {
		c.Ollama.DefaultModelNames = []string{c.AI.Model}
	}
	if c.Ollama.Timeout <= 0 {
		c.Ollama.Timeout = c.AI.Timeout
	}
	if c.Ollama.Retries < 0 {
		return fmt.Errorf("ollama.retries must be >= 0, got %d", c.Ollama.Retries)
	}
	if c.Ollama.Backoff <= 0 {
		c.Ollama.Backoff = 500 * time.Millisecond
	}
	if c.Ollama.CircuitFailureThreshold <= 0 {
		c.Ollama.CircuitFailureThreshold = 5
	}
	if c.Ollama.CircuitReset <= 0 {
		c.Ollama.CircuitReset = 30 * time.Second
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
