// Package storage persists client-local state in SQLite: the connected
// spreadsheet identifier, the sync outbox and the cached ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/buildtrack/internal/service"
	"github.com/Veraticus/buildtrack/internal/sheets"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrEmptySlice   = errors.New("slice cannot be empty")
	ErrInvalidRowOp = errors.New("invalid row operation")
	ErrUnknownSheet = errors.New("unknown collection")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validatePendingOp checks an outbox entry before it is stored.
func validatePendingOp(op *service.PendingOp) error {
	if op == nil {
		return fmt.Errorf("%w: op", ErrNilParameter)
	}
	if err := validateString(op.SpreadsheetID, "spreadsheetID"); err != nil {
		return err
	}
	if len(op.Ops) == 0 {
		return fmt.Errorf("%w: ops", ErrEmptySlice)
	}

	for i, r := range op.Ops {
		if !r.Collection.Valid() {
			return fmt.Errorf("row op %d: %w: %q", i, ErrUnknownSheet, r.Collection)
		}
		if r.RecordID == "" {
			return fmt.Errorf("row op %d: %w: missing record id", i, ErrInvalidRowOp)
		}
		switch r.Kind {
		case sheets.OpAppend, sheets.OpUpdate:
			if len(r.Row) == 0 {
				return fmt.Errorf("row op %d: %w: %s without a row", i, ErrInvalidRowOp, r.Kind)
			}
		case sheets.OpDelete:
		default:
			return fmt.Errorf("row op %d: %w: kind %q", i, ErrInvalidRowOp, r.Kind)
		}
	}
	return nil
}
