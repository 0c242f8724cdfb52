// Package cli provides the dself command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dself/internal/logger"
)

// version is set at build time or by Execute.
var version = "dev"

var (
	configPath string
	verbose    bool
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "dself",
	Short: "Collect your digital activity into one store",
	Long: `dself extracts browser history, calendar events, email, iMessage and
WhatsApp messages, normalises them into one record shape per source and
persists them to a remote store, or to local JSON files when the remote
store is not configured or not reachable.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.dself/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "persist to an in-memory store instead of the remote store")
}

// Execute runs the root command. An empty v keeps the default version.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.ExecuteContext(ctx)
}
