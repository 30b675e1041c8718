package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Mode selects which collaborator implementations get constructed.
type Mode string

const (
	// ModeLive wires the real Qdrant index and OpenAI-compatible services.
	ModeLive Mode = "live"
	// ModeDemo wires deterministic in-process implementations, for local
	// development and offline demos.
	ModeDemo Mode = "demo"
)

// Config holds all configuration for the application.
// Values are read from environment variables; a .env file in the working
// directory (or a parent, up to the module root) is loaded first.
type Config struct {
	Mode      Mode   `env:"ADVISOR_MODE" envDefault:"demo"`
	APIPort   string `env:"API_PORT" envDefault:"9000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"http://localhost:8080/v1"`
	LLMAPIKey  string `env:"LLM_API_KEY" envDefault:"dummy-key"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"Llama-3.1-8B-Instruct"`

	EmbeddingBaseURL string `env:"EMBEDDING_BASE_URL" envDefault:"http://localhost:8081/v1"`
	EmbeddingModel   string `env:"EMBEDDING_MODEL" envDefault:"granite-embedding-278m-multilingual"`
	VectorSize       int    `env:"VECTOR_SIZE" envDefault:"768"`

	QdrantURL        string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	QdrantCollection string `env:"QDRANT_COLLECTION" envDefault:"documents"`

	WebSearchURL string `env:"WEB_SEARCH_URL" envDefault:""`

	DBPath  string `env:"DB_PATH" envDefault:"./data/advisor-ai.db"`
	DocsDir string `env:"DOCS_DIR" envDefault:""`

	SessionCapacity int `env:"SESSION_CAPACITY" envDefault:"1000"`
	LearnedCapacity int `env:"LEARNED_CAPACITY" envDefault:"5000"`
}

// Load reads configuration from the environment and validates it.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.Mode {
	case ModeLive, ModeDemo:
	default:
		return nil, fmt.Errorf("ADVISOR_MODE must be %q or %q, got %q", ModeLive, ModeDemo, cfg.Mode)
	}

	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}

	// Create the data directory up front so SQLite can open its file.
	if dataDir := filepath.Dir(cfg.DBPath); dataDir != "." {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// SlogLevel maps the configured level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadDotEnv loads a .env file from the current directory or the nearest
// ancestor containing one. Missing files are not an error.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
