package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	AllowedOrigin string
	LogLevel      string

	// GitLab connection
	GitLabBaseURL string
	GitLabToken   string
	// File fallback for the stored credential when no database is
	// configured.
	GitLabTokenFile string

	// Database (optional; credential persistence only)
	DatabaseURL string

	// Saved pull-request queries, YAML file of {name, query} entries.
	QueriesFile string

	// TTL for the per-file comment cache.
	CommentCacheTTL time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:            getEnvDefault("PORT", "8080"),
		AllowedOrigin:   getEnvDefault("ALLOWED_ORIGIN", "*"),
		LogLevel:        getEnvDefault("LOG_LEVEL", "info"),
		GitLabBaseURL:   getEnvDefault("GITLAB_BASE_URL", "https://gitlab.com/api/v4"),
		GitLabToken:     os.Getenv("GITLAB_TOKEN"),
		GitLabTokenFile: getEnvDefault("GITLAB_TOKEN_FILE", "data/gitlab_token.json"),
		DatabaseURL:     os.Getenv("DB_URL"),
		QueriesFile:     getEnvDefault("QUERIES_FILE", "queries.yaml"),
		CommentCacheTTL: getEnvDurationDefault("COMMENT_CACHE_TTL", 2*time.Minute),
	}
	if cfg.GitLabToken == "" {
		log.Println("warning: GITLAB_TOKEN is not set; the stored credential will be used if present")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	// Accept a bare number of seconds.
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
