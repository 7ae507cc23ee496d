package authgate

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client talks to the admin API of the external auth provider. Staff
// identities live there; this service only mirrors them in profiles.
type Client struct {
	http *resty.Client
	log  *logrus.Logger
}

type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

func NewClient(cfg Config, log *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", cfg.ServiceKey).
		SetHeader("Authorization", "Bearer "+cfg.ServiceKey)

	return &Client{
		http: client,
		log:  log,
	}
}

type createUserRequest struct {
	Email        string         `json:"email"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type banUserRequest struct {
	BanDuration string `json:"ban_duration"`
}

type userResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Message string `json:"msg"`
	Error   string `json:"error_description"`
}

func (e *errorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// CreateUser provisions an identity at the auth provider and returns
// the id it issued. Profile rows reuse that id as their primary key.
func (c *Client) CreateUser(ctx context.Context, email, name string) (uuid.UUID, error) {
	request := createUserRequest{
		Email:        email,
		EmailConfirm: true,
		UserMetadata: map[string]any{"name": name},
	}

	var result userResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&result).
		SetError(&apiErr).
		Post("/admin/users")
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth provider create user: %w", err)
	}
	if resp.IsError() {
		c.log.Warnf("Auth provider rejected user creation: status=%d msg=%s", resp.StatusCode(), apiErr.text())
		return uuid.Nil, fmt.Errorf("auth provider create user: status %d: %s", resp.StatusCode(), apiErr.text())
	}

	id, err := uuid.Parse(result.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth provider returned malformed user id %q: %w", result.ID, err)
	}

	return id, nil
}

// DisableUser bans the identity so the provider stops issuing tokens
// for it. The profile row is removed separately.
func (c *Client) DisableUser(ctx context.Context, id uuid.UUID) error {
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(banUserRequest{BanDuration: "876000h"}).
		SetError(&apiErr).
		Put("/admin/users/" + id.String())
	if err != nil {
		return fmt.Errorf("auth provider disable user: %w", err)
	}
	if resp.IsError() {
		c.log.Warnf("Auth provider rejected user disable: status=%d msg=%s", resp.StatusCode(), apiErr.text())
		return fmt.Errorf("auth provider disable user: status %d: %s", resp.StatusCode(), apiErr.text())
	}

	return nil
}
