package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations (local, no server needed)",
	Args:  cobra.NoArgs,
	RunE:  runMigrateCmd,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrateCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadLocalConfig()
	if err != nil {
		return err
	}

	db, err := migrations.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	applied, err := migrations.Up(cmd.Context(), db)
	if err != nil {
		return err
	}
	current, err := migrations.Version(cmd.Context(), db)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{"applied": applied, "version": current})
	}
	if len(applied) == 0 {
		fmt.Fprintf(out, "Database %s is up to date (version %d)\n", cfg.Database.Path, current)
		return nil
	}
	fmt.Fprintf(out, "Applied %d migration(s) to %s, now at version %d\n", len(applied), cfg.Database.Path, current)
	return nil
}
