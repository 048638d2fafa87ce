package ftp

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/zinc-sig/ferry/internal/settings"
	"github.com/zinc-sig/ferry/internal/storage"
)

// Config is the parsed FTP engine configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	// Folder is prefixed to every object path on the server.
	Folder string
	// URL is the public base URL objects are served from.
	URL     string
	Passive bool
	TLS     bool
	// Chmod sends SITE CHMOD with the local file's mode after each upload.
	Chmod bool
	// Timeout is zero for the library default.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Host:   "localhost",
		Port:   21,
		User:   "anonymous",
		Folder: "/",
		URL:    "http://localhost",
		Chmod:  true,
	}
}

// ConfigFromMap overlays config on DefaultConfig.
func ConfigFromMap(config map[string]any) (Config, error) {
	cfg := DefaultConfig()

	cfg.Host = settings.StringDefault(config, "host", cfg.Host)
	cfg.User = settings.StringDefault(config, "user", cfg.User)
	cfg.Password = settings.StringDefault(config, "password", cfg.Password)
	cfg.Folder = settings.StringDefault(config, "folder", cfg.Folder)
	cfg.URL = settings.StringDefault(config, "url", cfg.URL)
	cfg.Passive = settings.Bool(config, "passive", cfg.Passive)
	cfg.TLS = settings.Bool(config, "tls", cfg.TLS)
	cfg.Chmod = settings.Bool(config, "chmod", cfg.Chmod)

	port, err := settings.Int(config, "port", cfg.Port)
	if err != nil {
		return Config{}, storage.ConfigError("ftp", err)
	}
	if port < 1 || port > 65535 {
		return Config{}, storage.ConfigError("ftp", fmt.Errorf("port %d out of range", port))
	}
	cfg.Port = port

	if cfg.Timeout, err = settings.Duration(config, "timeout", 0); err != nil {
		return Config{}, storage.ConfigError("ftp", err)
	}
	if cfg.Host == "" {
		return Config{}, storage.ConfigError("ftp", fmt.Errorf("host is required"))
	}
	return cfg, nil
}

// Addr is host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
