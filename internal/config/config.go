package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

type AuthConfig struct {
	JWKSURL  string
	Secret   string
	Issuer   string
	Audience string
}

type JobsConfig struct {
	EmailDispatchInterval time.Duration
	EmailBatchSize        int
	ReminderInterval      time.Duration
	ReminderWindow        time.Duration
	TrialExpiryInterval   time.Duration
}

// Config is the process configuration, read once at startup
type Config struct {
	Environment string
	Port        int
	DatabaseURL string
	AppURL      string
	SentryDSN   string
	LogLevel    string
	AutoMigrate bool

	Auth   AuthConfig
	Redis  RedisConfig
	Minio  MinioConfig
	SMTP   SMTPConfig
	Stripe StripeConfig
	Jobs   JobsConfig
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads .env when present, then the environment. Missing required
// settings are reported together.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnvAsInt("PORT", 8080),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		AppURL:      strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
		SentryDSN:   getEnv("SENTRY_DSN", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		AutoMigrate: getEnvAsBool("AUTO_MIGRATE", true),
		Auth: AuthConfig{
			JWKSURL:  getEnv("JWKS_URL", ""),
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("JWT_ISSUER", ""),
			Audience: getEnv("JWT_AUDIENCE", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "assochub-documents"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@assochub.local"),
			FromName: getEnv("SMTP_FROM_NAME", "AssocHub"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		},
		Jobs: JobsConfig{
			EmailDispatchInterval: getEnvAsDuration("EMAIL_DISPATCH_INTERVAL", 30*time.Second),
			EmailBatchSize:        getEnvAsInt("EMAIL_BATCH_SIZE", 50),
			ReminderInterval:      getEnvAsDuration("MEETING_REMINDER_INTERVAL", 15*time.Minute),
			ReminderWindow:        getEnvAsDuration("MEETING_REMINDER_WINDOW", 24*time.Hour),
			TrialExpiryInterval:   getEnvAsDuration("TRIAL_EXPIRY_INTERVAL", time.Hour),
		},
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.Auth.JWKSURL == "" && cfg.Auth.Secret == "" {
		missing = append(missing, "JWKS_URL or JWT_SECRET")
	}
	if cfg.IsProduction() && cfg.Stripe.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return nil, errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
