package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/thrift/internal/cli"
	"github.com/Veraticus/thrift/internal/storage"
)

func migrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  `Create the database if needed and apply any pending schema migrations.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := storage.NewSQLiteStorage(e.settings.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("Failed to close database", "error", closeErr)
				}
			}()

			before, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			after, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if before == after {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Database is up to date (schema version %d)", after)))
			} else {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Migrated database from schema version %d to %d", before, after)))
			}
			fmt.Fprintln(out, cli.SubtleStyle.Render(store.Path()))
			return nil
		},
	}

	return cmd
}
