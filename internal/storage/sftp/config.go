package sftp

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/zinc-sig/ferry/internal/settings"
	"github.com/zinc-sig/ferry/internal/storage"
)

// Options are the SSH settings carried in the "options" bag.
type Options struct {
	KeyFile    string
	Passphrase string
	KnownHosts string
	Timeout    time.Duration
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Folder   string
	URL      string
	Options  Options
}

func DefaultConfig() Config {
	return Config{
		Host: "localhost",
		Port: 22,
		User: "anonymous",
		URL:  "http://localhost",
	}
}

func ConfigFromMap(config map[string]any) (Config, error) {
	cfg := DefaultConfig()

	cfg.Host = settings.StringDefault(config, "host", cfg.Host)
	cfg.User = settings.StringDefault(config, "user", cfg.User)
	cfg.Password = settings.StringDefault(config, "password", cfg.Password)
	cfg.Folder = settings.StringDefault(config, "folder", cfg.Folder)
	cfg.URL = settings.StringDefault(config, "url", cfg.URL)

	port, err := settings.Int(config, "port", cfg.Port)
	if err != nil {
		return Config{}, storage.ConfigError("sftp", err)
	}
	if port < 1 || port > 65535 {
		return Config{}, storage.ConfigError("sftp", fmt.Errorf("port %d out of range", port))
	}
	cfg.Port = port
	if cfg.Host == "" {
		return Config{}, storage.ConfigError("sftp", fmt.Errorf("host is required"))
	}

	// Flattened keys (options.key_file=...) arrive from key=value flags.
	opts := settings.Merge(settings.Map(config, "options"), flattened(config, "options."))
	cfg.Options.KeyFile = settings.StringDefault(opts, "key_file", "")
	cfg.Options.Passphrase = settings.StringDefault(opts, "passphrase", "")
	cfg.Options.KnownHosts = settings.StringDefault(opts, "known_hosts", "")
	if cfg.Options.Timeout, err = settings.Duration(opts, "timeout", 0); err != nil {
		return Config{}, storage.ConfigError("sftp", err)
	}
	return cfg, nil
}

func flattened(config map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for k, v := range config {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out[k[len(prefix):]] = v
		}
	}
	return out
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
