package cli

import (
	"fmt"

	"github.com/arnold/okrs-api/internal/database"
	"github.com/arnold/okrs-api/internal/templates"
	"github.com/spf13/cobra"
)

// NewSeedTemplatesCommand loads a YAML catalog into objective_templates.
func NewSeedTemplatesCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-templates [file]",
		Short: "Upsert objective templates from a YAML catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(root)
			path := cfg.TemplatesFile
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no template file given and TEMPLATES_FILE is unset")
			}

			list, err := templates.Load(path)
			if err != nil {
				return err
			}
			if err := connect(cfg); err != nil {
				return err
			}
			n, err := templates.Seed(database.DB, list)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d templates from %s\n", n, path)
			return nil
		},
	}
}
