// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stock-inventory/internal/email"

	"github.com/kelseyhightower/envconfig"
)

// AlertSettings controls the daily low-stock alert.
type AlertSettings struct {
	Recipient     string         `envconfig:"ALERT_RECIPIENT"`
	Timezone      string         `envconfig:"ALERT_TIMEZONE" default:"UTC"`
	GateSlot      string         `envconfig:"ALERT_GATE_SLOT" default:"default"`
	SendTimeout   time.Duration  `envconfig:"ALERT_SEND_TIMEOUT" default:"10s"`
	DefaultMinQty int            `envconfig:"LOW_STOCK_DEFAULT_MIN_QTY" default:"5"`
	Location      *time.Location `ignored:"true"`
}

// EmailSettings holds EmailJS credentials. Leaving them empty disables
// delivery without failing startup.
type EmailSettings struct {
	PublicKey  string `envconfig:"EMAILJS_PUBLIC_KEY"`
	ServiceID  string `envconfig:"EMAILJS_SERVICE_ID"`
	TemplateID string `envconfig:"EMAILJS_TEMPLATE_ID"`
	PrivateKey string `envconfig:"EMAILJS_PRIVATE_KEY"`
	Endpoint   string `envconfig:"EMAILJS_ENDPOINT"`
}

func (e EmailSettings) EmailConfig() email.Config {
	return email.Config{
		PublicKey:  e.PublicKey,
		ServiceID:  e.ServiceID,
		TemplateID: e.TemplateID,
		PrivateKey: e.PrivateKey,
		Endpoint:   e.Endpoint,
	}
}

func (a *AlertSettings) validate() error {
	if a.DefaultMinQty < 0 {
		return errors.New("LOW_STOCK_DEFAULT_MIN_QTY must not be negative")
	}
	if a.SendTimeout <= 0 {
		return errors.New("ALERT_SEND_TIMEOUT must be positive")
	}
	if strings.TrimSpace(a.GateSlot) == "" {
		return errors.New("ALERT_GATE_SLOT must not be empty")
	}

	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return fmt.Errorf("ALERT_TIMEZONE %q: %w", a.Timezone, err)
	}
	a.Location = loc
	return nil
}

func process(spec any) error {
	if err := envconfig.Process("", spec); err != nil {
		return fmt.Errorf("process env: %w", err)
	}
	return nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", raw)
	}
	return level, nil
}
