package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/cmd/config"
	"github.com/zinc-sig/ferry/cmd/helpers"
	"github.com/zinc-sig/ferry/internal/output"
	"github.com/zinc-sig/ferry/internal/storage"
)

func newStoreCmd(a *app) *cobra.Command {
	var (
		hook        config.WebhookConfig
		dryRun      bool
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "store <local-file> <identifier>",
		Short: "Upload a local file to the remote store",
		Example: `  ferry store --engine ftp --config-kv host=files.local ./avatar.png photos/123/avatar.png
  ferry store --engine sftp --config-file sftp.json --webhook-url https://hooks.local/ferry report.pdf reports/q3.pdf`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			localPath, identifier := args[0], args[1]

			engine, err := a.setupEngine(cmd, dryRun)
			if err != nil {
				return err
			}
			reporter, err := a.reporter(cmd, &hook)
			if err != nil {
				return err
			}

			result := &output.Result{Command: "store", Engine: engine.Name(), Identifier: identifier, LocalPath: localPath}
			if info, err := os.Stat(localPath); err == nil {
				size := info.Size()
				result.Size = &size
			}

			if dryRun {
				file, err := engine.Retrieve(identifier)
				if err != nil {
					return err
				}
				if contentType != "" {
					file.SetContentType(contentType)
				}
				describe(result, file)
				result.Status = output.StatusSuccess
				return helpers.OutputJSON(cmd.OutOrStdout(), result)
			}

			return a.run(cmd, result, reporter, func(ctx context.Context) error {
				file, err := store(ctx, engine, identifier, localPath, contentType)
				if err != nil {
					return err
				}
				describe(result, file)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the remote location without transferring")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type to assign instead of inferring it")
	helpers.SetupWebhookFlags(cmd, &hook)
	return cmd
}

// store goes through the engine facade. An explicit content type has to be
// on the handle before the upload, so that case stores through the handle.
func store(ctx context.Context, engine storage.Engine, identifier, localPath, contentType string) (storage.File, error) {
	if contentType == "" {
		return engine.Store(ctx, identifier, localPath)
	}
	file, err := engine.Retrieve(identifier)
	if err != nil {
		return nil, err
	}
	file.SetContentType(contentType)
	if err := file.Store(ctx, localPath); err != nil {
		return nil, err
	}
	return file, nil
}
