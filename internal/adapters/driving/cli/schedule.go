package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run sources on their configured intervals",
	Long: `Run every enabled source on its interval until interrupted.
Intervals are set with scheduler.<source>_interval in the config file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := loadServices(cmd, Overrides{})
		if err != nil {
			return err
		}
		defer closeServices(cmd, svc)

		if !svc.Settings.Scheduler.Enabled {
			return errors.New("scheduler is disabled (scheduler.enabled = false)")
		}

		cmd.Println("Scheduler started (Ctrl+C to stop)")
		err = svc.Scheduler.Start(cmd.Context())
		if stopErr := svc.Scheduler.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
		flushMetrics(cmd, svc)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := loadServices(cmd, Overrides{})
		if err != nil {
			return err
		}
		defer closeServices(cmd, svc)

		tasks, err := svc.Scheduler.Tasks(cmd.Context())
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			cmd.Println("No scheduled tasks.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tENABLED\tINTERVAL\tLAST RUN\tNEXT RUN\tLAST ERROR")
		for _, t := range tasks {
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\t%s\n",
				t.Source, t.Enabled, t.Interval, formatTime(t.LastRun), formatTime(t.NextRun), t.LastError)
		}
		return tw.Flush()
	},
}

func init() {
	scheduleCmd.AddCommand(scheduleListCmd)
	rootCmd.AddCommand(scheduleCmd)
}
