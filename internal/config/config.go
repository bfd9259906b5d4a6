package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvProduction    = "production"
	DefaultJwtSecret = "default_secret"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Broker   BrokerConfig
	Callback CallbackConfig
	Reaper   ReaperConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string `env:"APP_PORT" envDefault:"3000"`
	BaseURL            string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
	Environment        string `env:"GO_ENV" envDefault:"development"`
	LogFilePath        string `env:"LOG_FILE_PATH" envDefault:"app.log"`
	CorsAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173"`
	RedisURL           string `env:"REDIS_URL"`
}

type DatabaseConfig struct {
	Connection string `env:"DB_CONNECTION_STRING"`
}

type SMTPConfig struct {
	Host       string `env:"SMTP_HOST"`
	Port       int    `env:"SMTP_PORT" envDefault:"587"`
	Email      string `env:"SMTP_EMAIL"`
	Password   string `env:"SMTP_PASSWORD"`
	SenderName string `env:"SMTP_SENDER_NAME" envDefault:"Survey Rewards"`
}

type AuthConfig struct {
	JwtSecret string `env:"JWT_SECRET" envDefault:"default_secret"`
}

// BrokerConfig selects where domain events are forwarded: none, nats or kafka.
type BrokerConfig struct {
	Kind         string   `env:"EVENT_BROKER" envDefault:"none"`
	NatsURL      string   `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"survey-payout-events"`
}

type CallbackConfig struct {
	ThankYouURL    string        `env:"THANK_YOU_URL" envDefault:"http://localhost:5173/thank-you"`
	DiagnosticMode bool          `env:"CALLBACK_DIAGNOSTIC_MODE" envDefault:"false"`
	SecretCacheTTL time.Duration `env:"CALLBACK_SECRET_CACHE_TTL" envDefault:"1m"`
}

type ReaperConfig struct {
	ThresholdHours int           `env:"REAPER_THRESHOLD_HOURS" envDefault:"48"`
	Interval       time.Duration `env:"REAPER_INTERVAL" envDefault:"1h"`
}

type TracingConfig struct {
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Token echoing is never allowed in production.
	if cfg.IsProduction() {
		cfg.Callback.DiagnosticMode = false
		if cfg.Auth.JwtSecret == "" || cfg.Auth.JwtSecret == DefaultJwtSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set to a non-default value in production")
		}
	}
	if cfg.Reaper.ThresholdHours <= 0 {
		return nil, fmt.Errorf("REAPER_THRESHOLD_HOURS must be positive")
	}
	if cfg.Reaper.Interval <= 0 {
		return nil, fmt.Errorf("REAPER_INTERVAL must be positive")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

func (r ReaperConfig) Threshold() time.Duration {
	return time.Duration(r.ThresholdHours) * time.Hour
}
