package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Auth      AuthConfig
	Payment   PaymentConfig
	AI        AIConfig
	Retention RetentionConfig
	Logging   LoggingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// StoreConfig contains local cache and remote mirror configuration
type StoreConfig struct {
	// Local sqlite cache, always on
	Path     string
	AudioDir string

	// Remote mirror (postgres), optional
	MirrorEnabled bool
	MirrorDSN     string
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
}

// PaymentConfig contains payment gateway configuration
type PaymentConfig struct {
	BaseURL     string
	APIKey      string
	SecretKey   string
	ConfirmURL  string
	ReturnURL   string
	OrderPrefix string
}

// AIConfig contains transcription provider configuration
type AIConfig struct {
	OpenAIAPIKey   string
	MonthlyCredits int
}

// RetentionConfig contains the recording retention policy
type RetentionConfig struct {
	MaxAgeDays    int
	SweepSchedule string // cron expression
	BatchSize     int
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Store: StoreConfig{
			Path:          getEnv("STORE_PATH", "./voznote.db"),
			AudioDir:      getEnv("AUDIO_DIR", "./audio"),
			MirrorEnabled: getEnvAsBool("MIRROR_ENABLED", false),
			MirrorDSN:     getEnv("MIRROR_DSN", ""),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
			BCryptCost:         getEnvAsInt("BCRYPT_COST", 12),
		},
		Payment: PaymentConfig{
			BaseURL:     getEnv("PAYMENT_BASE_URL", "https://www.flow.cl/api"),
			APIKey:      getEnv("PAYMENT_API_KEY", ""),
			SecretKey:   getEnv("PAYMENT_SECRET_KEY", ""),
			ConfirmURL:  getEnv("PAYMENT_CONFIRM_URL", ""),
			ReturnURL:   getEnv("PAYMENT_RETURN_URL", ""),
			OrderPrefix: getEnv("PAYMENT_ORDER_PREFIX", "vz"),
		},
		AI: AIConfig{
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			MonthlyCredits: getEnvAsInt("AI_MONTHLY_CREDITS", 2),
		},
		Retention: RetentionConfig{
			MaxAgeDays:    getEnvAsInt("RETENTION_MAX_AGE_DAYS", 90),
			SweepSchedule: getEnv("RETENTION_SWEEP_SCHEDULE", "0 4 * * *"),
			BatchSize:     getEnvAsInt("RETENTION_BATCH_SIZE", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. Missing credentials for optional
// integrations (payments, AI, mirror) are not fatal here; the integration is
// disabled and the caller reports it.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Store.MirrorEnabled && c.Store.MirrorDSN == "" {
		return fmt.Errorf("MIRROR_DSN must be set when MIRROR_ENABLED is true")
	}

	if c.Retention.MaxAgeDays < 1 {
		return fmt.Errorf("RETENTION_MAX_AGE_DAYS must be positive")
	}

	return nil
}

// PaymentsConfigured reports whether the payment gateway credentials are present
func (c *Config) PaymentsConfigured() bool {
	return c.Payment.APIKey != "" && c.Payment.SecretKey != ""
}

// AIConfigured reports whether the transcription provider is usable
func (c *Config) AIConfigured() bool {
	return c.AI.OpenAIAPIKey != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
