package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and where their records go",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := loadServices(cmd, Overrides{})
		if err != nil {
			return err
		}
		defer closeServices(cmd, svc)

		out := cmd.OutOrStdout()
		cmd.Printf("Remote: %s\n", svc.RemoteKind)
		if svc.Settings.Remote.URL != "" {
			cmd.Printf("URL:    %s\n", redactURL(svc.Settings.Remote.URL))
		}
		if svc.Settings.Remote.Key != "" {
			cmd.Printf("Key:    %s\n", maskKey(svc.Settings.Remote.Key))
		}
		cmd.Println()

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tTABLE\tMODE\tREMOTE LIMIT\tLOCAL FILES")
		for _, spec := range svc.Specs {
			limit := "-"
			if spec.RemoteLimit > 0 {
				limit = fmt.Sprint(spec.RemoteLimit)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				spec.Type, spec.Table, spec.Mode, limit, spec.DataDir)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
