package helpers

import (
	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/cmd/config"
)

// SetupEngineFlags adds engine selection and configuration flags to a command and its children
func SetupEngineFlags(cmd *cobra.Command, cfg *config.EngineConfig) {
	cmd.PersistentFlags().StringVar(&cfg.Engine, "engine", "", "Storage engine (ftp, sftp, minio)")
	cmd.PersistentFlags().StringVar(&cfg.Config, "config", "", "Engine configuration as JSON string")
	cmd.PersistentFlags().StringArrayVar(&cfg.ConfigKV, "config-kv", nil, "Engine config key=value pairs (can be used multiple times)")
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config-file", "", "Path to JSON file containing engine configuration")
}

// SetupLocalFlags adds the local layout flags
func SetupLocalFlags(cmd *cobra.Command, cfg *config.LocalConfig) {
	cmd.PersistentFlags().StringVar(&cfg.Root, "root", ".", "Local base directory")
	cmd.PersistentFlags().StringVar(&cfg.StoreDir, "store-dir", "uploads", "Remote store directory, relative to the engine folder")
	cmd.PersistentFlags().StringVar(&cfg.CacheDir, "cache-dir", "uploads/tmp", "Cache directory, relative to --root")
	cmd.PersistentFlags().StringVar(&cfg.Permissions, "permissions", "0644", "Octal mode for cached files")
	cmd.PersistentFlags().StringVar(&cfg.DirPermissions, "dir-permissions", "0755", "Octal mode for cache directories")
}

// SetupCommonFlags adds commonly used flags
func SetupCommonFlags(cmd *cobra.Command, flags *config.CommonFlags) {
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log connection and transfer details to stderr")
	cmd.PersistentFlags().StringVarP(&flags.TimeoutStr, "timeout", "t", "", "Timeout for the whole operation (e.g., 30s, 2m)")
}

// SetupWebhookFlags adds webhook-related flags to a command
func SetupWebhookFlags(cmd *cobra.Command, cfg *config.WebhookConfig) {
	// Direct configuration flags
	cmd.Flags().StringVar(&cfg.URL, "webhook-url", "", "Webhook URL to send results to")
	cmd.Flags().StringVar(&cfg.Method, "webhook-method", "POST", "HTTP method to use: GET, POST, PUT, PATCH, DELETE")
	cmd.Flags().StringVar(&cfg.AuthType, "webhook-auth-type", "none", "Authentication type: none, bearer, api-key")
	cmd.Flags().StringVar(&cfg.AuthToken, "webhook-auth-token", "", "Authentication token (use with --webhook-auth-type)")
	cmd.Flags().IntVar(&cfg.Retries, "webhook-retries", 3, "Maximum webhook retry attempts (0 = no retries)")
	cmd.Flags().StringVar(&cfg.RetryDelay, "webhook-retry-delay", "1s", "Initial delay between webhook retries")
	cmd.Flags().StringVar(&cfg.Timeout, "webhook-timeout", "30s", "Total timeout for webhook including retries")

	// Alternative configuration methods
	cmd.Flags().StringVar(&cfg.Config, "webhook-config", "", "Webhook configuration as JSON string")
	cmd.Flags().StringArrayVar(&cfg.ConfigKV, "webhook-config-kv", nil, "Webhook config key=value pairs (can be used multiple times)")
	cmd.Flags().StringVar(&cfg.ConfigFile, "webhook-config-file", "", "Path to JSON file containing webhook configuration")
}
