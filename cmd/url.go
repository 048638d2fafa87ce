package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/cmd/helpers"
	"github.com/zinc-sig/ferry/internal/output"
)

func newURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "url <identifier>",
		Short: "Print the public URL of a stored file without connecting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.setupEngine(cmd, false)
			if err != nil {
				return err
			}
			file, err := engine.Retrieve(args[0])
			if err != nil {
				return err
			}

			result := &output.Result{Command: "url", Engine: engine.Name(), Identifier: args[0]}
			describe(result, file)
			result.Status = output.StatusSuccess
			return helpers.OutputJSON(cmd.OutOrStdout(), result)
		},
	}
}
