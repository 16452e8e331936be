package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/bookhive/bookhive-api/internal/infrastructure/db/postgres"
)

// NewMigrateCmd creates the migrate subcommand. Only the postgres user store
// has a schema; the mongo store creates its indexes on startup.
func NewMigrateCmd() *cobra.Command {
	var (
		down        bool
		databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply (or with --down, roll back) the PostgreSQL user schema migrations.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if databaseURL == "" {
				return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable or --database-url flag is required")
			}
			return runMigrate(cmd, databaseURL, down)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (defaults to $DATABASE_URL)")

	return cmd
}

func runMigrate(cmd *cobra.Command, databaseURL string, down bool) error {
	m, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "open migrator").Wrap(err)
	}
	defer func() { _ = m.Close() }()

	if down {
		cmd.Println("Rolling back migrations...")
		if err := m.Down(); err != nil {
			return err
		}
	} else {
		cmd.Println("Running migrations...")
		if err := m.Up(); err != nil {
			return err
		}
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	cmd.Printf("Schema version %d (dirty=%t)\n", version, dirty)
	return nil
}
