package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

type Config struct {
	Env         string `env:"ENV"          envDefault:"local" validate:"required,oneof=local staging production"`
	Port        string `env:"PORT"         envDefault:"8080"  validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"  validate:"required"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"  validate:"oneof=debug info warn error"`

	StoreDriver   string `env:"STORE_DRIVER"   envDefault:"postgres" validate:"oneof=postgres mongo memory"`
	DatabaseURL   string `env:"DATABASE_URL"                         validate:"required_if=StoreDriver postgres"`
	MongoURI      string `env:"MONGO_URI"                            validate:"required_if=StoreDriver mongo"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"todo_api"`

	AccessTokenKey string `env:"ACCESS_TOKEN_PRIVATE_KEY,required" validate:"required,min=32"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"      validate:"min=4,max=31"`

	MailFrom     string `env:"MAIL_FROM"      validate:"required_unless=Env local"`
	ResendAPIKey string `env:"RESEND_API_KEY"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT"      envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`

	PublicBaseURL       string   `env:"PUBLIC_BASE_URL"       validate:"omitempty,url"`
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS"  envSeparator:","`
	ResetReaperSchedule string   `env:"RESET_REAPER_SCHEDULE" envDefault:"@every 5m"`
}

var errNoMailTransport = errors.New("RESEND_API_KEY or SMTP_HOST is required outside ENV=local")

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Env != "local" && cfg.ResendAPIKey == "" && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("invalid config: %w", errNoMailTransport)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) IsLocal() bool {
	return c.Env == "local"
}
