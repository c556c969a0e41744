package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the client and the sandbox server
type Config struct {
	Env string

	// Wallet API (RemoteWalletService) configuration
	APIURL     string
	APITimeout time.Duration
	APIRate    float64 // requests per second, 0 disables pacing

	// Redis configuration for the recipient directory cache; empty URL disables it
	RedisURL          string
	RedisPassword     string
	DirectoryCacheTTL time.Duration

	// Sandbox server configuration
	SandboxPort           string
	SandboxJWTSecret      string
	SandboxInitialBalance string
	SandboxSeedPath       string
	AllowedOrigins        []string

	// DatabaseURL switches the sandbox to PostgreSQL storage when set
	DatabaseURL string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env:                   getEnv("ENV", "development"),
		APIURL:                strings.TrimRight(getEnv("WALLET_API_URL", "http://localhost:3000"), "/"),
		APITimeout:            time.Duration(getEnvAsInt("WALLET_API_TIMEOUT_MS", 10000)) * time.Millisecond,
		APIRate:               getEnvAsFloat("WALLET_API_RPS", 10),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		DirectoryCacheTTL:     time.Duration(getEnvAsInt("DIRECTORY_CACHE_TTL_SECONDS", 60)) * time.Second,
		SandboxPort:           getEnv("SANDBOX_PORT", "3000"),
		SandboxJWTSecret:      getEnv("SANDBOX_JWT_SECRET", ""),
		SandboxInitialBalance: getEnv("SANDBOX_INITIAL_BALANCE", "0"),
		SandboxSeedPath:       getEnv("SANDBOX_SEED_PATH", ""),
		AllowedOrigins:        splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:8081")),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures the client configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("WALLET_API_URL must be an absolute URL, got %q", c.APIURL)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("WALLET_API_TIMEOUT_MS must be positive")
	}

	if c.APIRate < 0 {
		return fmt.Errorf("WALLET_API_RPS must not be negative")
	}

	if c.DirectoryCacheTTL <= 0 {
		return fmt.Errorf("DIRECTORY_CACHE_TTL_SECONDS must be positive")
	}

	return nil
}

// ValidateSandbox checks the settings only the sandbox server needs
func (c *Config) ValidateSandbox() error {
	if c.SandboxJWTSecret == "" {
		return fmt.Errorf("SANDBOX_JWT_SECRET is required")
	}

	if len(c.SandboxJWTSecret) < 32 {
		return fmt.Errorf("SANDBOX_JWT_SECRET must be at least 32 characters long")
	}

	bal, err := decimal.NewFromString(c.SandboxInitialBalance)
	if err != nil || bal.IsNegative() {
		return fmt.Errorf("SANDBOX_INITIAL_BALANCE must be a non-negative number, got %q", c.SandboxInitialBalance)
	}

	return nil
}

// InitialBalance returns the opening balance for newly registered sandbox
// accounts, zero when unparseable
func (c *Config) InitialBalance() decimal.Decimal {
	bal, err := decimal.NewFromString(c.SandboxInitialBalance)
	if err != nil {
		return decimal.Zero
	}
	return bal
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RedisEnabled reports whether a Redis address was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
