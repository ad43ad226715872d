package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"TWP_DB_PATH" envDefault:"./data/textweaver.db"`
	ServerAddr string `env:"TWP_SERVER_ADDR" envDefault:":8080"`
	LogLevel   string `env:"TWP_LOG_LEVEL" envDefault:"info"`

	// Worker pool shared by every active project; bounds total outbound
	// capability concurrency regardless of how many projects run at once.
	WorkerPoolSize int64 `env:"TWP_WORKER_POOL" envDefault:"6"`

	// Executor policy
	TranslateTimeout time.Duration `env:"TWP_TRANSLATE_TIMEOUT" envDefault:"30s"`
	MaxAttempts      int           `env:"TWP_MAX_ATTEMPTS" envDefault:"3"`

	// Chunking policy: unit budget in whitespace-delimited tokens, plus the
	// slack fraction allowed before a hard cut.
	ChunkTokenBudget int     `env:"TWP_CHUNK_TOKENS" envDefault:"1000"`
	ChunkSlack       float64 `env:"TWP_CHUNK_SLACK" envDefault:"0.2"`

	// Batch coordinator fan-out limit.
	BatchConcurrency int `env:"TWP_BATCH_CONCURRENCY" envDefault:"4"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Logger builds the root slog logger for the configured level.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
