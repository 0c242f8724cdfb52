package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dself/internal/core/domain"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status [source]",
	Short: "Show recent runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var source domain.SourceType
		if len(args) == 1 {
			s, err := domain.ParseSourceType(args[0])
			if err != nil {
				return err
			}
			source = s
		}
		if statusLimit <= 0 {
			return fmt.Errorf("%w: --limit must be positive", domain.ErrInvalidInput)
		}

		svc, err := loadServices(cmd, Overrides{})
		if err != nil {
			return err
		}
		defer closeServices(cmd, svc)

		reports, err := svc.Runner.History(cmd.Context(), source, statusLimit)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			cmd.Println("No runs recorded.")
			return nil
		}

		out := cmd.OutOrStdout()
		st := newStyles(out)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tSOURCE\tSTATUS\tEXTRACTED\tPERSISTED\tDESTINATION")
		for _, r := range reports {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				formatTime(r.StartedAt), r.Source, st.stateLabel(r),
				r.Extracted, r.Persisted, r.Destination)
		}
		return tw.Flush()
	},
}

func init() {
	statusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 10, "number of runs to show")
	rootCmd.AddCommand(statusCmd)
}
