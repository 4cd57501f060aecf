package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Auth      AuthConfig
	Discord   DiscordConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database configuration.
// Type selects the backend: "sqlite" (embedded file) or "postgres" (pooled network connection).
type DatabaseConfig struct {
	Type     string
	URL      string // full postgres URL; takes precedence over Host/User/...
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Path     string // sqlite database file path
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// AuthConfig holds staff authentication configuration
type AuthConfig struct {
	JWTSecret   string
	TokenSecret string // shared secret guarding the token-issue endpoint
	TokenTTL    int    // hours
}

// DiscordConfig holds the optional webhook used for approval notifications
type DiscordConfig struct {
	WebhookURL string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	ServiceName       string
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("RW")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/ruleswiki")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Type:     getString("database_type", envOr("DATABASE_TYPE", "sqlite")),
			URL:      getString("database_url", envOr("DATABASE_URL", "")),
			Host:     getString("db_host", envOr("DB_HOST", "localhost")),
			Port:     getInt("db_port", envIntOr("DB_PORT", 5432)),
			User:     getString("db_user", envOr("DB_USER", "ruleswiki")),
			Password: getString("db_password", envOr("DB_PASSWORD", "")),
			Name:     getString("db_name", envOr("DB_NAME", "ruleswiki")),
			Path:     getString("database_path", envOr("DATABASE_PATH", "./data/ruleswiki.db")),
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Auth: AuthConfig{
			JWTSecret:   getString("jwt_secret", "dev-only-secret"),
			TokenSecret: getString("token_secret", ""),
			TokenTTL:    getInt("token_ttl_hours", 72),
		},
		Discord: DiscordConfig{
			WebhookURL: getString("discord_webhook_url", ""),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", ""),
			PrometheusEnabled: getBool("prometheus_enabled", true),
			ServiceName:       getString("service_name", "ruleswiki"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database_type", "sqlite")
	viper.SetDefault("database_path", "./data/ruleswiki.db")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("prometheus_enabled", true)
	viper.SetDefault("service_name", "ruleswiki")
	viper.SetDefault("token_ttl_hours", 72)
}

// envOr reads a bare (unprefixed) environment variable. The deployment scripts
// export DATABASE_TYPE, DB_HOST etc. without the RW_ prefix, so both spellings work.
func envOr(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func envIntOr(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	if val := os.Getenv("RW_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("RW_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("RW_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func toEnvKey(key string) string {
	result := ""
	for _, r := range key {
		if r == '-' || r == '_' {
			result += "_"
		} else if r >= 'a' && r <= 'z' {
			result += string(r - 32)
		} else {
			result += string(r)
		}
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database_path is required for sqlite backend")
		}
	case "postgres":
		if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
			return fmt.Errorf("database_url or db_host/db_name are required for postgres backend")
		}
	default:
		return fmt.Errorf("unsupported database_type: %q (want sqlite or postgres)", c.Database.Type)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("http_server_port must be between 1 and 65535")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl_hours must be positive")
	}
	return nil
}

// PostgresDSN builds the connection string for the postgres backend.
func (c *DatabaseConfig) PostgresDSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}
