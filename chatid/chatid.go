// Package chatid registers platform users with the external chat service.
package chatid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"foundersnexus/logging"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Registrar creates chat identities. Calls are best-effort.
type Registrar interface {
	RegisterIdentity(ctx context.Context, user primitive.ObjectID, displayName, avatarURL string) error
	DeleteIdentity(ctx context.Context, user primitive.ObjectID) error
}

// Nop is used when no chat service is configured.
type Nop struct{}

func (Nop) RegisterIdentity(context.Context, primitive.ObjectID, string, string) error { return nil }
func (Nop) DeleteIdentity(context.Context, primitive.ObjectID) error                   { return nil }

type Config struct {
	BaseURL    string
	AppID      string
	APIKey     string
	MaxRetries uint64
	Backoff    time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logging.Logger
}

func NewClient(cfg Config, log logging.Logger) *Client {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: 10 * time.Second}, log: log}
}

type createUserRequest struct {
	UID    string `json:"uid"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// RegisterIdentity creates the chat user. An identity that already exists
// counts as registered.
func (c *Client) RegisterIdentity(ctx context.Context, user primitive.ObjectID, displayName, avatarURL string) error {
	body, err := json.Marshal(createUserRequest{UID: user.Hex(), Name: displayName, Avatar: avatarURL})
	if err != nil {
		return err
	}

	status, err := c.do(ctx, http.MethodPost, "/users", body)
	if err != nil {
		return fmt.Errorf("register chat identity %s: %w", user.Hex(), err)
	}
	if status == http.StatusConflict {
		c.log.Info(ctx, "chat identity already exists", "user", user.Hex())
	}
	return nil
}

func (c *Client) DeleteIdentity(ctx context.Context, user primitive.ObjectID) error {
	status, err := c.do(ctx, http.MethodDelete, "/users/"+user.Hex(), nil)
	if err != nil {
		return fmt.Errorf("delete chat identity %s: %w", user.Hex(), err)
	}
	if status == http.StatusNotFound {
		c.log.Debug(ctx, "chat identity already gone", "user", user.Hex())
	}
	return nil
}

// do sends the request, retrying 429 and 5xx responses with exponential
// backoff. 409 and 404 are returned to the caller as statuses, not errors.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, error) {
	backoff := retry.WithMaxRetries(c.cfg.MaxRetries, retry.NewExponential(c.cfg.Backoff))

	var status int
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("apiKey", c.cfg.APIKey)
		req.Header.Set("appId", c.cfg.AppID)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))

		status = resp.StatusCode
		switch {
		case status < 300, status == http.StatusConflict, status == http.StatusNotFound:
			return nil
		case status == http.StatusTooManyRequests, status >= 500:
			c.log.Debug(ctx, "chat api call failed, retrying", "method", method, "path", path, "status", status)
			return retry.RetryableError(fmt.Errorf("chat api status %d: %s", status, msg))
		default:
			return fmt.Errorf("chat api status %d: %s", status, msg)
		}
	})
	return status, err
}
