package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMemberTypesCmd(opts *RootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "member-types",
		Short: "Print the configured member type catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(s.MemberTypes); err != nil {
					return sysError(err)
				}
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDISCOUNT\tMONTH POSTS LIMIT")
			for _, m := range s.MemberTypes {
				fmt.Fprintf(tw, "%s\t%g\t%d\n", m.ID, m.Discount, m.MonthPostsLimit)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
