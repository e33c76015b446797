package config

import (
	"fmt"
	"log/slog"
	"time"
)

type Notifications struct {
	RabbitMQURL     string        `envconfig:"RABBITMQ_URL"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	RedisURL        string        `envconfig:"REDIS_URL"`
	MetricsAddr     string        `envconfig:"METRICS_ADDR" default:":9091"`
	MigrationsPath  string        `envconfig:"MIGRATIONS_PATH" default:"migrations/products"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	DBPingTimeout   time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
	LogLevelName    string        `envconfig:"LOG_LEVEL" default:"info"`

	AlertSettings
	EmailSettings

	LogLevel slog.Level `ignored:"true"`
}

func LoadNotifications() (Notifications, error) {
	var cfg Notifications
	if err := process(&cfg); err != nil {
		return Notifications{}, err
	}

	if cfg.RabbitMQURL == "" {
		return Notifications{}, fmt.Errorf("RABBITMQ_URL is required")
	}
	if cfg.DatabaseURL == "" {
		return Notifications{}, fmt.Errorf("DATABASE_URL is required")
	}
	if err := cfg.AlertSettings.validate(); err != nil {
		return Notifications{}, err
	}

	level, err := parseLevel(cfg.LogLevelName)
	if err != nil {
		return Notifications{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}
