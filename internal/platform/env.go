package platform

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

// EnvConfig is the environment-driven configuration of the composition root.
type EnvConfig struct {
	BatchSize   int        `env:"DOM_BATCH_SIZE"   envDefault:"500"`
	LogLevel    slog.Level `env:"DOM_LOG_LEVEL"    envDefault:"INFO"`
	FixtureDir  string     `env:"DOM_FIXTURE_DIR"`
	FixtureGlob string     `env:"DOM_FIXTURE_GLOB" envDefault:"**/*.yaml"`
}

// LoadEnv reads EnvConfig from the process environment.
func LoadEnv() (EnvConfig, error) {
	cfg, err := env.ParseAs[EnvConfig]()
	if err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BatchSize < 0 {
		return EnvConfig{}, fmt.Errorf("parse env: DOM_BATCH_SIZE must not be negative, got %d", cfg.BatchSize)
	}
	return cfg, nil
}

// Options translates the configuration into functional options. The logger
// writes text records to stderr.
func (c EnvConfig) Options() []Option {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
	opts := []Option{WithBatchSize(c.BatchSize), WithLogger(logger)}
	if c.FixtureDir != "" {
		opts = append(opts, WithFixtures(os.DirFS(c.FixtureDir), c.FixtureGlob))
	}
	return opts
}

// FromEnv is LoadEnv followed by Options.
func FromEnv() ([]Option, error) {
	cfg, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return cfg.Options(), nil
}
