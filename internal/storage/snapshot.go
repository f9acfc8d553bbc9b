package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/buildtrack/internal/sheets"
)

// SnapshotCache keeps the last known ledger rows. It implements
// service.SnapshotCache.
type SnapshotCache struct {
	db *sql.DB
}

// LoadSnapshot returns the cached rows per collection in their stored order.
func (c *SnapshotCache) LoadSnapshot(ctx context.Context) (map[sheets.Collection][]sheets.Row, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT collection, row FROM snapshot_rows ORDER BY collection, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[sheets.Collection][]sheets.Row)
	for rows.Next() {
		var (
			collection string
			raw        string
		)
		if err := rows.Scan(&collection, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}

		var r sheets.Row
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("snapshot %s: failed to decode row: %w", collection, err)
		}
		c := sheets.Collection(collection)
		out[c] = append(out[c], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return out, nil
}

// SaveSnapshot replaces the cache with rows in one transaction.
func (c *SnapshotCache) SaveSnapshot(ctx context.Context, rows map[sheets.Collection][]sheets.Row) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_rows`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_rows (collection, position, row) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for collection, rs := range rows {
		if !collection.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownSheet, collection)
		}
		for i, r := range rs {
			raw, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("snapshot %s: failed to encode row %d: %w", collection, i, err)
			}
			if _, err := stmt.ExecContext(ctx, string(collection), i, string(raw)); err != nil {
				return fmt.Errorf("snapshot %s: failed to save row %d: %w", collection, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}
