// Package email delivers templated messages through the EmailJS REST API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

	contentTypeJSON  = "application/json"
	maxErrorBodySize = 512
)

var ErrNotConfigured = errors.New("email delivery is not configured")

// Config holds EmailJS credentials. The zero value is the unconfigured
// variant: Send refuses to run until PublicKey, ServiceID and TemplateID are
// set.
type Config struct {
	PublicKey  string
	ServiceID  string
	TemplateID string
	PrivateKey string
	Endpoint   string
}

func (c Config) Configured() bool {
	return c.PublicKey != "" && c.ServiceID != "" && c.TemplateID != ""
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{cfg: cfg, http: httpClient}
}

func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts one templated message. The recipient is passed to the template
// as to_email unless params already carry it.
func (c *Client) Send(ctx context.Context, recipient string, params map[string]string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	tp := make(map[string]string, len(params)+1)
	for k, v := range params {
		tp[k] = v
	}
	if _, ok := tp["to_email"]; !ok {
		tp["to_email"] = recipient
	}

	payload, err := json.Marshal(sendRequest{
		ServiceID:      c.cfg.ServiceID,
		TemplateID:     c.cfg.TemplateID,
		UserID:         c.cfg.PublicKey,
		AccessToken:    c.cfg.PrivateKey,
		TemplateParams: tp,
	})
	if err != nil {
		return fmt.Errorf("marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	return statusError(resp.StatusCode, strings.TrimSpace(string(body)))
}

func statusError(status int, body string) error {
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("invalid email configuration: %s", body)
	case http.StatusPaymentRequired:
		return fmt.Errorf("email quota exceeded")
	default:
		if body == "" {
			return fmt.Errorf("email api returned status %d", status)
		}
		return fmt.Errorf("email api returned status %d: %s", status, body)
	}
}
