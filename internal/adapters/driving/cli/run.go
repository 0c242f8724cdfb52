package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dself/internal/core/domain"
	"github.com/custodia-labs/dself/internal/logger"
)

var (
	runMaxResults int64
	runDaysBack   int
	runFile       string
	runWatch      bool
)

var runCmd = &cobra.Command{
	Use:   "run [source...]",
	Short: "Extract and persist records",
	Long: `Run the extraction pipeline for the named sources, or for every
configured source when none are named.

Sources: browser, calendar, gmail, imessage, whatsapp.`,
	Example: `  dself run
  dself run gmail calendar --max-results 50
  dself run whatsapp --file ~/Downloads/whatsapp_export.json
  dself run whatsapp --watch`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Int64Var(&runMaxResults, "max-results", 0, "maximum events or messages to fetch from Google sources")
	runCmd.Flags().IntVar(&runDaysBack, "days-back", 0, "calendar look-back window in days")
	runCmd.Flags().StringVar(&runFile, "file", "", "WhatsApp export file to read instead of the newest match")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "keep running and process new WhatsApp exports as they appear")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	sources, err := parseSources(args)
	if err != nil {
		return err
	}
	if runMaxResults < 0 || runDaysBack < 0 {
		return fmt.Errorf("%w: --max-results and --days-back must not be negative", domain.ErrInvalidInput)
	}
	if runWatch && (len(sources) != 1 || sources[0] != domain.SourceWhatsApp) {
		return errors.New("--watch requires exactly the whatsapp source")
	}
	if runWatch && runFile != "" {
		return fmt.Errorf("%w: --watch reads each new export and cannot be combined with --file", domain.ErrInvalidInput)
	}

	svc, err := loadServices(cmd, Overrides{
		MaxResults:   runMaxResults,
		DaysBack:     runDaysBack,
		WhatsAppFile: runFile,
	})
	if err != nil {
		return err
	}
	defer closeServices(cmd, svc)

	ctx := cmd.Context()
	var reports []domain.RunReport
	if len(sources) == 0 {
		reports = svc.Runner.RunAll(ctx)
	} else {
		for _, source := range sources {
			report, err := svc.Runner.Run(ctx, source)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
	}

	printReports(cmd.OutOrStdout(), reports)
	flushMetrics(cmd, svc)

	if runWatch {
		return watchExports(ctx, cmd, svc)
	}
	return nil
}

// watchExports reruns the export pipeline for every new export file until
// ctx is cancelled. Each run reads the newest export, which is the file
// that triggered it.
func watchExports(ctx context.Context, cmd *cobra.Command, svc *Services) error {
	if svc.Watcher == nil {
		return fmt.Errorf("%w: whatsapp", domain.ErrUnknownSource)
	}
	cmd.Printf("Watching %s for new exports (Ctrl+C to stop)\n", svc.Settings.WhatsApp.ExportDir)

	err := svc.Watcher.Watch(ctx, func(path string) {
		logger.Info("new export %s", path)
		report, err := svc.Runner.Run(ctx, domain.SourceWhatsApp)
		if err != nil {
			cmd.PrintErrf("run: %v\n", err)
			return
		}
		printReports(cmd.OutOrStdout(), []domain.RunReport{report})
		flushMetrics(cmd, svc)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func parseSources(args []string) ([]domain.SourceType, error) {
	sources := make([]domain.SourceType, 0, len(args))
	seen := make(map[domain.SourceType]bool, len(args))
	for _, arg := range args {
		source, err := domain.ParseSourceType(arg)
		if err != nil {
			return nil, err
		}
		if seen[source] {
			continue
		}
		seen[source] = true
		sources = append(sources, source)
	}
	return sources, nil
}

func flushMetrics(cmd *cobra.Command, svc *Services) {
	if svc.Flush == nil {
		return
	}
	if err := svc.Flush(); err != nil {
		cmd.PrintErrf("write metrics: %v\n", err)
	}
}
