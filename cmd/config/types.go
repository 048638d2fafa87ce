package config

import "time"

// EngineConfig holds engine selection and configuration flags
type EngineConfig struct {
	Engine     string
	Config     string
	ConfigKV   []string
	ConfigFile string
}

// LocalConfig holds the local layout used by the uploader
type LocalConfig struct {
	Root           string
	StoreDir       string
	CacheDir       string
	Permissions    string
	DirPermissions string
}

// CommonFlags holds commonly used flags across commands
type CommonFlags struct {
	Verbose    bool
	TimeoutStr string
	Timeout    time.Duration
}

// WebhookConfig holds webhook-related flags
type WebhookConfig struct {
	// Direct configuration flags
	URL        string
	Method     string // HTTP method (GET, POST, PUT, PATCH, DELETE)
	AuthType   string
	AuthToken  string
	Timeout    string
	Retries    int
	RetryDelay string

	// Alternative configuration methods
	Config     string   // JSON string configuration
	ConfigKV   []string // Key-value pairs
	ConfigFile string   // Path to JSON config file
}
