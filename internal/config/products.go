package config

import (
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

type Products struct {
	DatabaseURL       string        `envconfig:"DATABASE_URL"`
	RabbitMQURL       string        `envconfig:"RABBITMQ_URL"`
	RedisURL          string        `envconfig:"REDIS_URL"`
	HTTPAddr          string        `envconfig:"HTTP_ADDR" default:":8080"`
	MigrationsPath    string        `envconfig:"MIGRATIONS_PATH" default:"migrations/products"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	DBPingTimeout     time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	LogLevelName      string        `envconfig:"LOG_LEVEL" default:"info"`
	AlertRateLimit    float64       `envconfig:"ALERT_RATE_LIMIT" default:"0.2"`
	AlertRateBurst    int           `envconfig:"ALERT_RATE_BURST" default:"3"`

	AlertSettings
	EmailSettings

	LogLevel slog.Level `ignored:"true"`
}

func LoadProducts() (Products, error) {
	var cfg Products
	if err := process(&cfg); err != nil {
		return Products{}, err
	}

	if cfg.DatabaseURL == "" {
		return Products{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RabbitMQURL == "" {
		return Products{}, fmt.Errorf("RABBITMQ_URL is required")
	}
	if cfg.AlertRateLimit <= 0 || cfg.AlertRateBurst < 1 {
		return Products{}, fmt.Errorf("ALERT_RATE_LIMIT and ALERT_RATE_BURST must be positive")
	}
	if err := cfg.AlertSettings.validate(); err != nil {
		return Products{}, err
	}

	level, err := parseLevel(cfg.LogLevelName)
	if err != nil {
		return Products{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func (p Products) AlertRate() rate.Limit {
	return rate.Limit(p.AlertRateLimit)
}
