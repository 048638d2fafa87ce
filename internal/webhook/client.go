package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zinc-sig/ferry/internal/logging"
)

// Client posts operation results to a single endpoint.
type Client struct {
	http  *http.Client
	cfg   Config
	retry RetryConfig
	log   logging.Logger
}

// NewClient fills in the method and timeout defaults. A nil retry uses
// DefaultRetryConfig and a nil log discards output.
func NewClient(cfg *Config, retry *RetryConfig, log logging.Logger) *Client {
	c := &Client{
		http: &http.Client{Timeout: 10 * time.Second},
		cfg:  *cfg,
	}
	if c.cfg.Method == "" {
		c.cfg.Method = http.MethodPost
	}
	if c.cfg.Timeout <= 0 {
		c.cfg.Timeout = 30 * time.Second
	}
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	c.retry = *retry
	if log == nil {
		log = logging.Nop()
	}
	c.log = log.With("webhook", cfg.URL)
	return c
}

// Send marshals payload and delivers it, retrying transport errors and
// retryable statuses until MaxRetries is spent or Timeout elapses.
func (c *Client) Send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retry.Backoff(attempt)
			c.log.Debug(ctx, "webhook retry", "attempt", attempt, "max", c.retry.MaxRetries, "delay", delay)

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("webhook timeout after %d attempts: %w", attempt, ctx.Err())
			}
		}

		status, err := c.post(ctx, body)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("attempt %d failed: %w", attempt+1, err)
		case status >= 200 && status < 300:
			c.log.Debug(ctx, "webhook sent", "status", status)
			return nil
		default:
			lastErr = fmt.Errorf("attempt %d failed with status %d", attempt+1, status)
			if !Retryable(status) {
				c.log.Warn(ctx, "webhook non-retryable status, giving up", "status", status)
				return lastErr
			}
		}
	}

	return fmt.Errorf("webhook failed after %d attempts: %w", c.retry.MaxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, c.cfg.Method, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	switch c.cfg.AuthType {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	case "api-key":
		req.Header.Set("X-API-Key", c.cfg.AuthToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
