package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, parsed once from the environment
// at process start and passed by reference to collaborators.
type Config struct {
	Port     string `env:"SUSURRO_PORT" envDefault:"8080"`
	LogLevel string `env:"SUSURRO_LOG_LEVEL" envDefault:"info"`

	// Database: local SQLite file by default, or a hosted libsql database
	// when UseLocalDB is false.
	UseLocalDB   bool   `env:"USE_LOCAL_DB" envDefault:"true"`
	DBPath       string `env:"SUSURRO_DB_PATH" envDefault:"susurro.db"`
	TursoURL     string `env:"TURSO_DATABASE_URL"`
	TursoToken   string `env:"TURSO_AUTH_TOKEN"`

	GroqAPIKey string `env:"GROQ_API_KEY"`
	// Target language for transcription (ISO 639-1).
	Language string `env:"SUSURRO_LANGUAGE" envDefault:"es"`

	// Rate limits, requests per minute per user.
	RateLimitTranscription int `env:"RATE_LIMIT_TRANSCRIPTION" envDefault:"5"`
	RateLimitNotes         int `env:"RATE_LIMIT_NOTES" envDefault:"30"`
	RateLimitGeneral       int `env:"RATE_LIMIT_GENERAL" envDefault:"100"`

	// Maximum accepted audio upload size in megabytes.
	MaxAudioSizeMB int64 `env:"MAX_AUDIO_FILE_SIZE" envDefault:"10"`
}

// Load parses and validates configuration from environment variables.
// Failures are descriptive so a misconfigured deployment fails at startup,
// not on the first request.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if !c.UseLocalDB {
		if c.TursoURL == "" || c.TursoToken == "" {
			return fmt.Errorf("TURSO_DATABASE_URL and TURSO_AUTH_TOKEN are required when USE_LOCAL_DB=false")
		}
	}
	if c.RateLimitTranscription < 1 || c.RateLimitNotes < 1 || c.RateLimitGeneral < 1 {
		return fmt.Errorf("rate limits must be at least 1 request per minute")
	}
	if c.MaxAudioSizeMB < 1 {
		return fmt.Errorf("MAX_AUDIO_FILE_SIZE must be at least 1 MB")
	}
	return nil
}

// MaxAudioBytes returns the audio upload ceiling in bytes.
func (c *Config) MaxAudioBytes() int64 {
	return c.MaxAudioSizeMB * 1024 * 1024
}
