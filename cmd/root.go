package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/cmd/config"
	"github.com/zinc-sig/ferry/cmd/helpers"
	"github.com/zinc-sig/ferry/internal/logging"
	"github.com/zinc-sig/ferry/internal/output"
	"github.com/zinc-sig/ferry/internal/storage"
)

// app carries the persistent flags shared by every subcommand.
type app struct {
	engine config.EngineConfig
	local  config.LocalConfig
	common config.CommonFlags
	log    logging.Logger
	// engines resolves --engine; nil means engines.Default().
	engines *storage.Registry
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(reg *storage.Registry) *cobra.Command {
	a := &app{log: logging.Nop(), engines: reg}

	root := &cobra.Command{
		Use:   "ferry",
		Short: "Move uploaded files between a local cache and remote storage",
		Long: `Ferry stores, fetches and deletes uploaded files on FTP, SFTP or
MinIO servers and manages the local upload cache. Every command prints a
JSON result document.

Engine configuration is layered: FERRY_CONFIG and FERRY_CONFIG_* environment
variables (a .env file in the working directory is loaded first), then
--config-file, --config and --config-kv.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			timeout, err := helpers.ParseTimeout(a.common.TimeoutStr)
			if err != nil {
				return err
			}
			a.common.Timeout = timeout
			a.log = helpers.NewLogger(cmd.ErrOrStderr(), a.common.Verbose)
			return nil
		},
	}

	helpers.SetupEngineFlags(root, &a.engine)
	helpers.SetupLocalFlags(root, &a.local)
	helpers.SetupCommonFlags(root, &a.common)

	root.AddCommand(
		newStoreCmd(a),
		newFetchCmd(a),
		newStatCmd(a),
		newDeleteCmd(a),
		newURLCmd(a),
		newCacheCmd(a),
		newEnginesCmd(),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setupEngine builds the selected engine and prints its configuration in
// verbose or dry-run mode.
func (a *app) setupEngine(cmd *cobra.Command, dryRun bool) (storage.Engine, error) {
	engine, conf, err := helpers.SetupEngine(a.engines, &a.engine, &a.local, a.log)
	if err != nil {
		return nil, err
	}
	if a.common.Verbose || dryRun {
		helpers.PrintEngineInfo(cmd.ErrOrStderr(), engine.Name(), conf, dryRun)
	}
	return engine, nil
}

func (a *app) reporter(cmd *cobra.Command, hook *config.WebhookConfig) (*helpers.Reporter, error) {
	r := &helpers.Reporter{Out: cmd.OutOrStdout(), Log: a.log}
	if hook == nil {
		return r, nil
	}
	cfg, retry, err := helpers.ParseWebhookConfigToInternal(hook)
	if err != nil {
		return nil, err
	}
	r.Webhook, r.Retry = cfg, retry
	return r, nil
}

// run times op, records its outcome in result and emits it. The error of
// op is returned so the process exits non-zero.
func (a *app) run(cmd *cobra.Command, result *output.Result, reporter *helpers.Reporter, op func(ctx context.Context) error) error {
	ctx, cancel := helpers.WithTimeout(cmd.Context(), a.common.Timeout)
	defer cancel()

	start := time.Now()
	err := op(ctx)
	result.Finish(start, err)

	if emitErr := reporter.Emit(cmd.Context(), result); emitErr != nil {
		return emitErr
	}
	return err
}

func describe(result *output.Result, file storage.File) {
	result.Path = file.Path()
	result.URL = file.URL()
	result.Filename = file.Filename()
	result.ContentType = file.ContentType()
}
