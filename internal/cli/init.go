package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/socialdb/internal/config"
	"github.com/mesh-intelligence/socialdb/internal/paths"
)

func newInitCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		Long:  "Create the configuration directory and write config.yaml with default values. An existing file is left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wrote, err := config.WriteDefault(opts.configDir)
			if err != nil {
				return sysError(err)
			}
			path := paths.ConfigFile(opts.configDir)
			if !wrote {
				fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
}
