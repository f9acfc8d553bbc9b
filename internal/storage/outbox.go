package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/service"
)

// Outbox is the durable sync queue. It implements service.Outbox.
type Outbox struct {
	db *sql.DB
}

// Enqueue stores op and assigns its ID.
func (o *Outbox) Enqueue(ctx context.Context, op *service.PendingOp) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePendingOp(op); err != nil {
		return err
	}

	ops, err := json.Marshal(op.Ops)
	if err != nil {
		return fmt.Errorf("failed to encode row ops: %w", err)
	}
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}

	result, err := o.db.ExecContext(ctx, `
		INSERT INTO outbox (spreadsheet_id, ops, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, op.SpreadsheetID, string(ops), op.Attempts, op.LastError, op.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to enqueue outbox op: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read outbox id: %w", err)
	}
	op.ID = id
	return nil
}

// Pending returns the queued ops for spreadsheetID, oldest first.
func (o *Outbox) Pending(ctx context.Context, spreadsheetID string) ([]service.PendingOp, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := o.db.QueryContext(ctx, `
		SELECT id, spreadsheet_id, ops, attempts, last_error, created_at
		FROM outbox
		WHERE spreadsheet_id = ?
		ORDER BY id
	`, spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []service.PendingOp
	for rows.Next() {
		var (
			op  service.PendingOp
			raw string
		)
		if err := rows.Scan(&op.ID, &op.SpreadsheetID, &raw, &op.Attempts, &op.LastError, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox op: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &op.Ops); err != nil {
			return nil, fmt.Errorf("outbox op %d: failed to decode row ops: %w", op.ID, err)
		}
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read outbox: %w", err)
	}
	return out, nil
}

// Remove deletes a confirmed op.
func (o *Outbox) Remove(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := o.db.ExecContext(ctx, `DELETE FROM outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove outbox op %d: %w", id, err)
	}
	return nil
}

// MarkFailed counts a failed attempt and records its error.
func (o *Outbox) MarkFailed(ctx context.Context, id int64, cause error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	result, err := o.db.ExecContext(ctx, `
		UPDATE outbox SET attempts = attempts + 1, last_error = ? WHERE id = ?
	`, msg, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox op %d: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark outbox op %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("outbox op %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// Clear drops every queued op.
func (o *Outbox) Clear(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := o.db.ExecContext(ctx, `DELETE FROM outbox`); err != nil {
		return fmt.Errorf("failed to clear outbox: %w", err)
	}
	return nil
}
