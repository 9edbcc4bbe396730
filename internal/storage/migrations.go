package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL DEFAULT '',
					baseline_income REAL NOT NULL DEFAULT 0,
					flexible_budget REAL NOT NULL DEFAULT 0,
					budget_mode TEXT NOT NULL DEFAULT 'auto',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					date TEXT NOT NULL,
					merchant TEXT NOT NULL,
					amount REAL NOT NULL,
					category_hint TEXT NOT NULL DEFAULT '',
					justification TEXT NOT NULL DEFAULT '',
					category TEXT NOT NULL,
					is_impulse INTEGER NOT NULL DEFAULT 0,
					decision TEXT NOT NULL,
					explanation TEXT NOT NULL,
					source TEXT NOT NULL DEFAULT 'manual',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_user_date ON transactions(user_id, date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category)`,

				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					title TEXT NOT NULL,
					target_amount REAL NOT NULL,
					target_date TEXT NOT NULL,
					saved_amount REAL NOT NULL DEFAULT 0,
					rules TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_goals_user ON goals(user_id)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Add cached translation columns",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE users ADD COLUMN language TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE transactions ADD COLUMN explanation_translated TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE goals ADD COLUMN title_translated TEXT NOT NULL DEFAULT ''`,
				`ALTER TABLE goals ADD COLUMN rules_translated TEXT NOT NULL DEFAULT ''`,
			)
		},
	},
	{
		Version:     3,
		Description: "Deduplicate imported transactions by source identifier",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`ALTER TABLE transactions ADD COLUMN external_id TEXT NOT NULL DEFAULT ''`,
				`CREATE UNIQUE INDEX idx_transactions_external
					ON transactions(user_id, external_id) WHERE external_id != ''`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// SchemaVersion reports the version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}
	return nil
}
