package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/internal/output"
	"github.com/zinc-sig/ferry/internal/storage"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local upload cache",
	}
	cmd.AddCommand(newCachePutCmd(a), newCacheCleanCmd(a), newCacheRmdirCmd(a))
	return cmd
}

func newCachePutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-file> <identifier>",
		Short: "Move a local file into the cache",
		Long: `Move a local file into the cache directory of this run. When the disk is
full, entries older than ten minutes are purged once and the move retried.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.setupEngine(cmd, false)
			if err != nil {
				return err
			}
			reporter, err := a.reporter(cmd, nil)
			if err != nil {
				return err
			}

			result := &output.Result{Command: "cache put", Engine: engine.Name(), Identifier: args[1]}
			return a.run(cmd, result, reporter, func(context.Context) error {
				dest, err := engine.CacheToLocal(args[0], args[1])
				result.LocalPath = dest
				return err
			})
		},
	}
}

func newCacheCleanCmd(a *app) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cache entries older than --max-age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.setupEngine(cmd, false)
			if err != nil {
				return err
			}
			reporter, err := a.reporter(cmd, nil)
			if err != nil {
				return err
			}

			result := &output.Result{Command: "cache clean", Engine: engine.Name()}
			return a.run(cmd, result, reporter, func(context.Context) error {
				return engine.CleanupOlderThan(maxAge)
			})
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", storage.DefaultCacheTTL, "Remove entries created before now minus this age")
	return cmd
}

func newCacheRmdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir <dir>",
		Short: "Remove an empty cache directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.setupEngine(cmd, false)
			if err != nil {
				return err
			}
			reporter, err := a.reporter(cmd, nil)
			if err != nil {
				return err
			}

			result := &output.Result{Command: "cache rmdir", Engine: engine.Name(), LocalPath: args[0]}
			return a.run(cmd, result, reporter, func(context.Context) error {
				return engine.DeleteDir(args[0])
			})
		},
	}
}
