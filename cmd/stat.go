package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/internal/output"
)

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <identifier>",
		Short: "Report whether a stored file exists and its size",
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
			file, err := engine.Retrieve(args[0])
			if err != nil {
				return err
			}

			result := &output.Result{Command: "stat", Engine: engine.Name(), Identifier: args[0]}
			describe(result, file)
			return a.run(cmd, result, reporter, func(ctx context.Context) error {
				size, ok, err := file.Size(ctx)
				if err != nil {
					return err
				}
				result.Exists = &ok
				if ok {
					result.Size = &size
				}
				return nil
			})
		},
	}
}
