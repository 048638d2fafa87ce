package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/cmd/config"
	"github.com/zinc-sig/ferry/cmd/helpers"
	"github.com/zinc-sig/ferry/internal/output"
)

func newDeleteCmd(a *app) *cobra.Command {
	var hook config.WebhookConfig

	cmd := &cobra.Command{
		Use:   "delete <identifier>",
		Short: "Delete a stored file",
		Long: `Delete a stored file. Deletion is best-effort: a missing file or a refused
delete is logged and the command still succeeds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.setupEngine(cmd, false)
			if err != nil {
				return err
			}
			reporter, err := a.reporter(cmd, &hook)
			if err != nil {
				return err
			}
			file, err := engine.Retrieve(args[0])
			if err != nil {
				return err
			}

			result := &output.Result{Command: "delete", Engine: engine.Name(), Identifier: args[0]}
			describe(result, file)
			return a.run(cmd, result, reporter, func(ctx context.Context) error {
				file.Delete(ctx)
				return nil
			})
		},
	}

	helpers.SetupWebhookFlags(cmd, &hook)
	return cmd
}
