// Copyright (c) 2026 Michal Danieluk
// All rights reserved. See LICENSE for details.

// Package config loads the server's environment configuration: database and
// Valkey addresses, object storage credentials, AI provider keys and models,
// and the pipeline retry policy.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible job queue)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage for logos and rendered creatives
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	// AI provider settings. The API key and image model here are env
	// fallbacks; the AppConfig record in the database takes precedence.
	TextAPIKey   string
	TextModel    string
	TextBaseURL  string
	ImageAPIKey  string
	ImageModel   string
	ImageBaseURL string

	// Pipeline tuning
	TextTimeout     time.Duration // per text provider call
	ImageTimeout    time.Duration // per image provider call
	RetryDelay      time.Duration // fixed delay between stage retries
	ConceptAttempts int           // concept generation attempts per job
	RenderAttempts  int           // image render attempts per job
	CostPer1KTokens float64       // blended text rate, dollars per 1k tokens
	WorkerCount     int           // queue worker goroutines
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "adforge"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "adforge"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "eu-central"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "adforge-assets"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		TextAPIKey:   os.Getenv("OPENAI_API_KEY"),
		TextModel:    envOrDefault("TEXT_MODEL", "gpt-4o-mini"),
		TextBaseURL:  os.Getenv("TEXT_BASE_URL"),
		ImageAPIKey:  os.Getenv("GEMINI_API_KEY"),
		ImageModel:   envOrDefault("IMAGE_MODEL", "imagen-3.0-generate-001"),
		ImageBaseURL: os.Getenv("IMAGE_BASE_URL"),

		TextTimeout:     envDuration("TEXT_TIMEOUT", 60*time.Second),
		ImageTimeout:    envDuration("IMAGE_TIMEOUT", 120*time.Second),
		RetryDelay:      envDuration("RETRY_DELAY", 5*time.Second),
		ConceptAttempts: envInt("CONCEPT_ATTEMPTS", 2),
		RenderAttempts:  envInt("RENDER_ATTEMPTS", 3),
		CostPer1KTokens: envFloat("COST_PER_1K_TOKENS", 0.0006),
		WorkerCount:     envInt("WORKER_COUNT", 4),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envDuration reads a duration environment variable (e.g. "30s"),
// returning a fallback if unset or unparseable.
func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envInt reads an integer environment variable, returning a fallback if
// unset or unparseable.
func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envFloat reads a float environment variable, returning a fallback if
// unset or unparseable.
func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
