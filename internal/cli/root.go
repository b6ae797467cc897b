// Package cli implements projectctl, the operator command line for the project tracker.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Marga-Ghale/ora-project-tracker/internal/config"
)

// RootOptions holds global flags. Empty values fall back to the environment.
type RootOptions struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// NewRootCommand creates the root command for projectctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "projectctl",
		Short: "Project tracker operator tool",
		Long:  "Run migrations, load sample projects and inspect project status counts.",

		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (postgres|sqlite), default $DATABASE_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL URL, default $DATABASE_URL")
	cmd.PersistentFlags().StringVar(&opts.SQLitePath, "sqlite-path", "", "SQLite file, default $SQLITE_PATH")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewOverdueCommand(opts))

	return cmd
}

// config loads the environment configuration and applies flag overrides.
func (o *RootOptions) config() (*config.Config, error) {
	cfg := config.Load()
	if o.Driver != "" {
		cfg.DatabaseDriver = o.Driver
	}
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}
	if o.SQLitePath != "" {
		cfg.SQLitePath = o.SQLitePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
