package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/afritokeni/ussd-engine/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := requireDSN()
				if err != nil {
					return err
				}
				if err := database.Migrate(cmd.Context(), dsn); err != nil {
					return err
				}
				return printVersion(cmd, dsn)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := requireDSN()
				if err != nil {
					return err
				}
				if err := database.Rollback(cmd.Context(), dsn); err != nil {
					return err
				}
				return printVersion(cmd, dsn)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				dsn, err := requireDSN()
				if err != nil {
					return err
				}
				return printVersion(cmd, dsn)
			},
		},
	)

	return cmd
}

func printVersion(cmd *cobra.Command, dsn string) error {
	version, err := database.Version(cmd.Context(), dsn)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
	return nil
}
