package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SpreadsheetIDKey is the settings key of the connected spreadsheet.
const SpreadsheetIDKey = "buildtrack_spreadsheet_id"

// IDStore keeps the connected spreadsheet identifier in the settings table.
// It implements service.IDStore.
type IDStore struct {
	db *sql.DB
}

// Load returns the stored identifier, or "" when none is stored.
func (s *IDStore) Load(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	var id string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, SpreadsheetIDKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load spreadsheet id: %w", err)
	}
	return id, nil
}

// Save stores spreadsheetID, replacing any previous one.
func (s *IDStore) Save(ctx context.Context, spreadsheetID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(spreadsheetID, "spreadsheetID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, SpreadsheetIDKey, spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to save spreadsheet id: %w", err)
	}
	return nil
}

// Clear forgets the stored identifier.
func (s *IDStore) Clear(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, SpreadsheetIDKey); err != nil {
		return fmt.Errorf("failed to clear spreadsheet id: %w", err)
	}
	return nil
}
