package config

import (
	"os"
	"testing"
)

func TestLoadDatabaseType(t *testing.T) {
	originalType := os.Getenv("DATABASE_TYPE")
	originalPath := os.Getenv("DATABASE_PATH")
	defer func() {
		restoreEnv("DATABASE_TYPE", originalType)
		restoreEnv("DATABASE_PATH", originalPath)
	}()

	os.Setenv("DATABASE_TYPE", "sqlite")
	os.Setenv("DATABASE_PATH", "/tmp/test-rules.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Database.Type != "sqlite" {
		t.Errorf("Expected database type from env, got: %s", cfg.Database.Type)
	}
	if cfg.Database.Path != "/tmp/test-rules.db" {
		t.Errorf("Expected database path from env, got: %s", cfg.Database.Path)
	}
}

func restoreEnv(key, value string) {
	if value != "" {
		os.Setenv(key, value)
	} else {
		os.Unsetenv(key)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Type: "sqlite", Path: "./data/rules.db"},
		Server:   ServerConfig{Port: 8080},
		Auth:     AuthConfig{TokenTTL: 72},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Valid config should not error: %v", err)
	}

	// Unknown backend must be rejected
	cfg.Database.Type = "mysql"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unsupported database_type")
	}

	// Postgres needs a URL or host/name pair
	cfg.Database = DatabaseConfig{Type: "postgres"}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for postgres without connection info")
	}

	cfg.Database = DatabaseConfig{Type: "postgres", URL: "postgresql://test@localhost/rules"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Postgres with URL should validate: %v", err)
	}
}

func TestPostgresDSN(t *testing.T) {
	c := &DatabaseConfig{Type: "postgres", Host: "db", Port: 5433, User: "u", Password: "p", Name: "rules"}
	want := "host=db port=5433 user=u password=p dbname=rules sslmode=disable"
	if got := c.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}

	c.URL = "postgresql://u:p@db:5433/rules"
	if got := c.PostgresDSN(); got != c.URL {
		t.Errorf("URL should take precedence, got %q", got)
	}
}
