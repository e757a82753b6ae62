package cli

import (
	"log"

	"github.com/spf13/cobra"
)

// NewMigrateCommand applies the schema and exits.
func NewMigrateCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connect(loadConfig(root)); err != nil {
				return err
			}
			log.Println("Migration complete")
			return nil
		},
	}
}
