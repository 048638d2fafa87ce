package minio

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/zinc-sig/ferry/internal/settings"
	"github.com/zinc-sig/ferry/internal/storage"
)

type Config struct {
	// Endpoint is host[:port] without a scheme.
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
	Region    string
	Prefix    string
	// URL is the public base URL; derived from the endpoint when empty.
	URL string
}

func ConfigFromMap(config map[string]any) (Config, error) {
	var cfg Config
	for key, dst := range map[string]*string{
		"endpoint":   &cfg.Endpoint,
		"access_key": &cfg.AccessKey,
		"secret_key": &cfg.SecretKey,
		"bucket":     &cfg.Bucket,
	} {
		v, ok := settings.String(config, key)
		if !ok || v == "" {
			return Config{}, storage.ConfigError("minio", fmt.Errorf("%s is required", key))
		}
		*dst = v
	}

	cfg.Secure = settings.Bool(config, "secure", true)
	cfg.Region = settings.StringDefault(config, "region", "us-east-1")
	cfg.Prefix = strings.Trim(settings.StringDefault(config, "prefix", ""), "/")
	cfg.URL = settings.StringDefault(config, "url", "")

	// An endpoint given as a URL decides Secure by its scheme.
	if strings.Contains(cfg.Endpoint, "://") {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return Config{}, storage.ConfigError("minio", fmt.Errorf("invalid endpoint URL %q", cfg.Endpoint))
		}
		cfg.Endpoint = u.Host
		cfg.Secure = u.Scheme == "https"
	}
	return cfg, nil
}

// BaseURL is the public URL of the prefix inside the bucket.
func (c Config) BaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	scheme := "https"
	if !c.Secure {
		scheme = "http"
	}
	base := fmt.Sprintf("%s://%s/%s", scheme, c.Endpoint, c.Bucket)
	if c.Prefix != "" {
		base += "/" + c.Prefix
	}
	return base
}
