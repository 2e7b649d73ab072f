// Package config loads the runtime configuration from the environment
// into one explicit object. Components receive the values they need
// through constructors; nothing reads the environment at use time.
package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Port         string
	LogLevel     string
	JWTSecret    string
	CookieDomain string

	SurrealURL       string
	SurrealNamespace string
	SurrealDatabase  string
	SurrealUser      string
	SurrealPass      string

	StorageRoot string
	PublicURL   string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	AllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             getenv("PORT", "3000"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CookieDomain:     os.Getenv("DOMAIN"),
		SurrealURL:       getenv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealNamespace: getenv("SURREALDB_NAMESPACE", "workplane"),
		SurrealDatabase:  getenv("SURREALDB_DATABASE", "workplane"),
		SurrealUser:      getenv("SURREALDB_USER", "root"),
		SurrealPass:      getenv("SURREALDB_PASS", "root"),
		StorageRoot:      getenv("STORAGE_ROOT", "assets"),
		PublicURL:        getenv("PUBLIC_URL", "http://localhost:3000"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getenv("SMTP_PORT", "587"),
		SMTPUsername:     os.Getenv("SMTP_USERNAME"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:         getenv("SMTP_FROM", "workplane@localhost"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
