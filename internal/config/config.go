// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port        int
	BaseURL     string // external URL, used to build OAuth callback URLs
	DBPath      string
	UploadsDir  string // banner image object store root
	TemplateDir string
	StaticDir   string

	JWTSecret    string
	CookieSecure bool // Secure attribute on session cookies; enable behind HTTPS

	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	RedisAddr string // empty disables the product list cache
}

// LoadEnv loads a .env file when one exists. Missing files are fine;
// deployments set real environment variables instead.
func LoadEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not load .env file", slog.String("error", err.Error()))
		}
		return
	}
	logger.Info("loaded .env file")
}

// FromEnv reads the configuration from environment variables, applying
// defaults suitable for local development.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:        8080,
		DBPath:      "data/catalog.db",
		UploadsDir:  "data/uploads",
		TemplateDir: "web/templates",
		StaticDir:   "web/static",

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("UPLOADS_DIR"); v != "" {
		cfg.UploadsDir = v
	}
	if v := os.Getenv("TEMPLATE_DIR"); v != "" {
		cfg.TemplateDir = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	cfg.CookieSecure = os.Getenv("COOKIE_SECURE") == "true"

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET must be set")
	}

	return cfg, nil
}
