package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/zinc-sig/ferry/internal/engines"
)

func newEnginesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the available storage engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string][]string{
				"engines": engines.Default().Names(),
			})
		},
	}
}
