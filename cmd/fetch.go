package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/internal/output"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <identifier> [destination]",
		Short: "Download a stored file",
		Long: `Download a stored file into destination. Without a destination the file
is written to the current directory under its remote name.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := args[0]
			engine, err := a.setupEngine(cmd, false)
			if err != nil {
				return err
			}
			reporter, err := a.reporter(cmd, nil)
			if err != nil {
				return err
			}

			file, err := engine.Retrieve(identifier)
			if err != nil {
				return err
			}
			dest := file.Filename()
			if len(args) == 2 {
				dest = args[1]
			}

			result := &output.Result{Command: "fetch", Engine: engine.Name(), Identifier: identifier, LocalPath: dest}
			describe(result, file)
			return a.run(cmd, result, reporter, func(ctx context.Context) error {
				tmp, err := file.LocalCopy(ctx)
				if err != nil {
					return err
				}
				defer func() {
					_ = tmp.Close()
					_ = os.Remove(tmp.Name())
				}()

				out, err := os.Create(dest)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", dest, err)
				}
				n, err := io.Copy(out, tmp)
				if cerr := out.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", dest, err)
				}
				result.Size = &n
				return nil
			})
		},
	}
}
