package cli

import (
	"github.com/arnold/okrs-api/internal/config"
	"github.com/arnold/okrs-api/internal/database"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command for the okrs-api binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "okrs-api",
		Short:         "OKR goal hierarchy and analytics service",
		Long:          "Generates company objectives from templates, cascades them to departments and teams, and serves progress analytics.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedTemplatesCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

// loadConfig reads the dotenv file if present, then the environment.
func loadConfig(opts *RootOptions) *config.Config {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	}
	return config.Load()
}

func connect(cfg *config.Config) error {
	if err := database.Connect(cfg); err != nil {
		return err
	}
	return database.Migrate()
}
