package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrSchemaTooNew is returned when the database was written by a newer build.
var ErrSchemaTooNew = errors.New("database schema is newer than this build")

// schemaStep is one schema version. Version n is schema[n-1].
type schemaStep struct {
	name       string
	statements []string
}

var schema = []schemaStep{
	{
		name: "settings",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		},
	},
	{
		name: "sync outbox",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS outbox (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				spreadsheet_id TEXT NOT NULL,
				ops TEXT NOT NULL,
				attempts INTEGER NOT NULL DEFAULT 0,
				last_error TEXT NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_outbox_spreadsheet ON outbox(spreadsheet_id, id)`,
		},
	},
	{
		name: "ledger snapshot cache",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS snapshot_rows (
				collection TEXT NOT NULL,
				position INTEGER NOT NULL,
				row TEXT NOT NULL,
				PRIMARY KEY (collection, position)
			)`,
		},
	},
}

// SchemaVersion is the user_version a fully migrated database carries.
var SchemaVersion = len(schema)

// Migrate brings the schema up to SchemaVersion. Each version is applied in
// its own transaction together with its user_version bump.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("%w: version %d, this build knows %d", ErrSchemaTooNew, current, SchemaVersion)
	}

	for version := current + 1; version <= SchemaVersion; version++ {
		step := schema[version-1]
		if err := s.applyStep(ctx, version, step); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", version, step.name, err)
		}
		slog.Debug("Applied migration", "version", version, "name", step.name)
	}
	return nil
}

func (s *SQLiteStorage) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (s *SQLiteStorage) applyStep(ctx context.Context, version int, step schemaStep) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range step.statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	// PRAGMA takes no bind parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return tx.Commit()
}
