package cli

import (
	"github.com/spf13/cobra"

	"github.com/charlesng35/boardsync/internal/database"
)

func newMigrateCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "migrate",
		Short:   "Create or update the schema and seed the admin group",
		GroupID: "admin",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.database()
			if err != nil {
				return err
			}
			if err := database.AutoMigrateAndSeed(db); err != nil {
				return err
			}
			if rt.opts.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), map[string]bool{"migrated": true})
			}
			printSuccess(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
