package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"newspost/internal/config"
	"newspost/internal/store"
)

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inspect || dryRun {
				if cfg.DBURL != "" {
					return errors.New("--inspect and --dry-run are only supported for sqlite databases")
				}
				return printMigrationPlan(cfg.DBPath, *jsonOutput)
			}

			// Opening the store applies pending migrations, same as server start.
			st, backend, err := store.OpenFromConfig(cmd.Context(), cfg.DBPath, cfg.DBURL)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := st.Close(); err != nil {
				return err
			}

			if backend == "sqlite" && *jsonOutput {
				return printMigrationPlan(cfg.DBPath, true)
			}
			if *jsonOutput {
				return writeJSON(map[string]string{"backend": backend, "status": "migrated"})
			}
			return writePlain("Migrations applied successfully (%s).\n", backend)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status")

	return cmd
}

func printMigrationPlan(dbPath string, jsonOutput bool) error {
	plan, err := store.InspectMigrations(dbPath)
	if err != nil {
		return fmt.Errorf("inspect migrations: %w", err)
	}

	if jsonOutput {
		return writeJSON(plan)
	}

	if err := writePlain("Current version: %d\nAvailable version: %d\n", plan.CurrentVersion, plan.AvailableVersion); err != nil {
		return err
	}
	if len(plan.Pending) == 0 {
		return writePlain("No pending migrations.\n")
	}
	if err := writePlain("Pending migrations: %d\n", len(plan.Pending)); err != nil {
		return err
	}
	for _, m := range plan.Pending {
		if err := writePlain("  %d: %s\n", m.Version, m.Description); err != nil {
			return err
		}
	}
	return nil
}
