package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/socialdb/pkg/socialdb"
)

const modulePath = "github.com/mesh-intelligence/socialdb"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the socialdb version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "socialdb v%s\nmodule: %s\n", socialdb.Version, modulePath)
			return nil
		},
	}
}
