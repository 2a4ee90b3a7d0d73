package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Payment  PaymentConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// PaymentConfig holds payment session and webhook configuration.
type PaymentConfig struct {
	// UPIID is the virtual payment address payments are directed to.
	UPIID string

	// BusinessName is the payee name embedded in payment links.
	BusinessName string

	// SessionTimeout is how long a payment session stays live. While a session
	// is live, its amount is locked against new intents.
	SessionTimeout time.Duration

	// MaxVerificationAttempts bounds confirmation attempts per session.
	MaxVerificationAttempts int

	// WebhookSecret is the shared secret confirmation webhooks must present.
	WebhookSecret string

	// ChatWebhookURL is an optional chat webhook notified on completed
	// payments. Empty disables outbound notifications.
	ChatWebhookURL string

	// NotifyTimeout bounds each outbound notification call.
	NotifyTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "paygate"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "payment-gateway"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Payment: PaymentConfig{
			UPIID:                   getEnv("UPI_ID", ""),
			BusinessName:            getEnv("BUSINESS_NAME", "Simple Payment Gateway"),
			SessionTimeout:          getDurationEnv("PAYMENT_SESSION_TIMEOUT", 300*time.Second),
			MaxVerificationAttempts: getIntEnv("PAYMENT_MAX_VERIFICATION_ATTEMPTS", 10),
			WebhookSecret:           getEnv("WEBHOOK_SECRET", ""),
			ChatWebhookURL:          getEnv("CHAT_WEBHOOK_URL", ""),
			NotifyTimeout:           getDurationEnv("NOTIFY_TIMEOUT", 3*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
