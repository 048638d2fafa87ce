package webhook

import (
	"fmt"
	"strings"
	"time"

	"github.com/zinc-sig/ferry/internal/settings"
)

// Config holds webhook endpoint configuration
type Config struct {
	URL       string            // Webhook endpoint URL
	Method    string            // HTTP method (default: POST)
	Headers   map[string]string // Custom headers
	Timeout   time.Duration     // Overall timeout for all retries
	AuthType  string            // Authentication type: none, bearer, api-key
	AuthToken string            // Authentication token
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int           // Maximum retry attempts (default: 3)
	InitialDelay time.Duration // Initial delay between retries (default: 1s)
	MaxDelay     time.Duration // Maximum delay (default: 30s)
	Multiplier   float64       // Backoff multiplier (default: 2.0)
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

var methods = map[string]bool{"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true}

// FromMap converts a merged settings map into client configuration. It
// returns nils when no url is set.
func FromMap(m map[string]any) (*Config, *RetryConfig, error) {
	url := settings.StringDefault(m, "url", "")
	if url == "" {
		return nil, nil, nil
	}

	timeout, err := settings.Duration(m, "timeout", 30*time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid webhook timeout duration: %w", err)
	}
	delay, err := settings.Duration(m, "retry_delay", time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid webhook retry delay: %w", err)
	}
	retries, err := settings.Int(m, "retries", 3)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid webhook retries: %w", err)
	}

	method := strings.ToUpper(settings.StringDefault(m, "method", "POST"))
	if !methods[method] {
		return nil, nil, fmt.Errorf("unsupported webhook method %q", method)
	}

	var headers map[string]string
	if raw := settings.Map(m, "headers"); raw != nil {
		headers = make(map[string]string, len(raw))
		for k, v := range raw {
			headers[k] = fmt.Sprint(v)
		}
	}

	cfg := &Config{
		URL:       url,
		Method:    method,
		Headers:   headers,
		Timeout:   timeout,
		AuthType:  settings.StringDefault(m, "auth_type", "none"),
		AuthToken: settings.StringDefault(m, "auth_token", ""),
	}
	retry := &RetryConfig{
		MaxRetries:   retries,
		InitialDelay: delay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	return cfg, retry, nil
}
