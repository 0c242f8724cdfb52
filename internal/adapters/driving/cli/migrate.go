package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the record tables in a PostgreSQL remote store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := loadServices(cmd, Overrides{})
		if err != nil {
			return err
		}
		defer closeServices(cmd, svc)

		if svc.Migrator == nil {
			return errors.New("migrate requires a postgres:// remote.url")
		}
		if err := svc.Migrator.Migrate(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Migrations applied.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
