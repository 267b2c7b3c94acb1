package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lasroun/collectgate/internal/domain/collect"
)

// Config holds all application configuration. It is loaded once at
// startup and read-only afterwards.
type Config struct {
	App       AppConfig
	FedaPay   FedaPayConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Env     string
	Version string
	Port    string
	URL     string
}

// FedaPayConfig holds FedaPay payment provider configuration
type FedaPayConfig struct {
	APIKey        string
	Environment   collect.Environment
	WebhookSecret string
	APIURL        string // optional base URL override
	Timeout       time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// AuthConfig holds service authentication configuration. When disabled
// the merchant-facing endpoints are open; the webhook endpoint is always
// authenticated by its signature instead.
type AuthConfig struct {
	Enabled  bool
	Secret   string
	TokenTTL time.Duration
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	CollectPerMinute int
	APIPerMinute     int
	WebhookPerMinute int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "1.0.0"),
			Port:    getEnv("APP_PORT", "8080"),
			URL:     getEnv("APP_URL", "http://localhost:8080"),
		},
		FedaPay: FedaPayConfig{
			APIKey:        getEnv("FEDAPAY_KEY", ""),
			Environment:   collect.Environment(strings.ToLower(getEnv("FEDAPAY_ENV", "sandbox"))),
			WebhookSecret: getEnv("FEDAPAY_WEBHOOK_SECRET", ""),
			APIURL:        getEnv("FEDAPAY_API_URL", ""),
			Timeout:       getEnvDuration("FEDAPAY_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Auth: AuthConfig{
			Enabled:  getEnvBool("AUTH_ENABLED", false),
			Secret:   getEnv("AUTH_JWT_SECRET", ""),
			TokenTTL: getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		RateLimit: RateLimitConfig{
			CollectPerMinute: getEnvInt("RATE_LIMIT_COLLECT", 30),
			APIPerMinute:     getEnvInt("RATE_LIMIT_API", 100),
			WebhookPerMinute: getEnvInt("RATE_LIMIT_WEBHOOK", 1000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.FedaPay.APIKey == "" {
		return fmt.Errorf("FEDAPAY_KEY is required")
	}

	switch c.FedaPay.Environment {
	case collect.EnvSandbox, collect.EnvLive:
	default:
		return fmt.Errorf("FEDAPAY_ENV must be sandbox or live, got %q", c.FedaPay.Environment)
	}

	if c.FedaPay.WebhookSecret == "" {
		return fmt.Errorf("FEDAPAY_WEBHOOK_SECRET is required")
	}

	if c.Auth.Enabled && len(c.Auth.Secret) < 32 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 32 characters when AUTH_ENABLED is set")
	}

	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Try parsing as seconds
		if i, err := strconv.Atoi(value); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
