package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Marga-Ghale/ora-project-tracker/internal/db"
	"github.com/Marga-Ghale/ora-project-tracker/internal/seed"
	"github.com/Marga-Ghale/ora-project-tracker/internal/service"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply pending schema migrations",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.config()
			if err != nil {
				return err
			}
			if err := db.Migrate(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s migrations applied\n", cfg.DatabaseDriver)
			return nil
		},
	}
}

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Force bool
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample projects",
		Long: `Insert the ten sample projects.

By default nothing is inserted when the projects table already holds rows,
including soft-deleted ones. --force inserts them regardless.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "insert even when projects exist")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	store, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer store.Close()

	seedFn := seed.SeedIfEmpty
	if opts.Force {
		seedFn = seed.Seed
	}
	n, err := seedFn(cmd.Context(), store.Repos.ProjectRepo)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d projects inserted\n", n)
	return nil
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "stats",
		Short:        "Show live project counts by status",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := service.NewProjectService(store.Repos.ProjectRepo, nil, nil).RefreshStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
			return nil
		},
	}
}

// NewOverdueCommand creates the overdue command.
func NewOverdueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "overdue",
		Short:        "List unfinished projects past their end date",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			projects, err := service.NewProjectService(store.Repos.ProjectRepo, nil, nil).ListOverdue(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no overdue projects")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProjects(projects))
			return nil
		},
	}
}

func openStore(opts *RootOptions) (*db.Store, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(cfg); err != nil {
		return nil, err
	}
	return db.Open(cfg)
}
