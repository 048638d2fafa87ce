package helpers

import (
	"fmt"

	"github.com/zinc-sig/ferry/cmd/config"
	"github.com/zinc-sig/ferry/internal/settings"
	"github.com/zinc-sig/ferry/internal/webhook"
)

// WebhookEnvPrefix names the environment variables read for webhook settings.
const WebhookEnvPrefix = "FERRY_WEBHOOK"

// BuildWebhookConfig builds webhook configuration from all sources
func BuildWebhookConfig(cfg *config.WebhookConfig) (map[string]any, error) {
	// Precedence: env < file < json < kv < direct flags
	webhookConf, err := settings.BuildWithPrefix(WebhookEnvPrefix, cfg.Config, cfg.ConfigKV, cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook config: %w", err)
	}
	if webhookConf == nil {
		webhookConf = make(map[string]any)
	}

	// Override with explicit flag values if set (highest precedence)
	if cfg.URL != "" {
		webhookConf["url"] = cfg.URL
	}
	if cfg.Method != "" && cfg.Method != "POST" {
		webhookConf["method"] = cfg.Method
	}
	if cfg.AuthType != "" && cfg.AuthType != "none" {
		webhookConf["auth_type"] = cfg.AuthType
	}
	if cfg.AuthToken != "" {
		webhookConf["auth_token"] = cfg.AuthToken
	}
	if cfg.Timeout != "" && cfg.Timeout != "30s" {
		webhookConf["timeout"] = cfg.Timeout
	}
	if cfg.Retries != 3 {
		webhookConf["retries"] = cfg.Retries
	}
	if cfg.RetryDelay != "" && cfg.RetryDelay != "1s" {
		webhookConf["retry_delay"] = cfg.RetryDelay
	}

	return webhookConf, nil
}

// ParseWebhookConfigToInternal converts built webhook config map to internal webhook structures
func ParseWebhookConfigToInternal(cfg *config.WebhookConfig) (*webhook.Config, *webhook.RetryConfig, error) {
	configMap, err := BuildWebhookConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return webhook.FromMap(configMap)
}
