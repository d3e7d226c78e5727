package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/earpanel-core/internal/infrastructure/config"
	"github.com/nerrad567/earpanel-core/internal/infrastructure/database"
	"github.com/nerrad567/earpanel-core/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect or roll back the journal database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "List applied and pending journal migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := openJournalDB(cmd)
				if err != nil {
					return err
				}
				defer db.Close() //nolint:errcheck // read-only command

				applied, pending, err := db.MigrationStatus(cmd.Context(), migrations.Source())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tNAME\tSTATE")
				for _, r := range applied {
					fmt.Fprintf(tw, "%s\t\tapplied %s\n", r.Version, r.AppliedAt.Format(time.RFC3339))
				}
				for _, m := range pending {
					fmt.Fprintf(tw, "%s\t%s\tpending\n", m.Version, m.Name)
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the newest applied journal migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := openJournalDB(cmd)
				if err != nil {
					return err
				}
				defer db.Close() //nolint:errcheck // closed on exit

				if err := db.MigrateDown(cmd.Context(), migrations.Source()); err != nil {
					return fmt.Errorf("reverting migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "reverted newest migration")
				return nil
			},
		},
	)
	return cmd
}

// openJournalDB opens the database named by the config file whether or
// not the journal is enabled for serve.
func openJournalDB(cmd *cobra.Command) (*database.DB, error) {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("database.path is not set")
	}
	db, err := database.Open(database.ConfigFrom(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
