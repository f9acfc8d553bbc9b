// Package service defines the contracts shared by the sync engine and the
// components it is wired to.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/buildtrack/internal/sheets"
)

// IDStore persists the identifier of the connected spreadsheet across runs.
type IDStore interface {
	// Load returns the stored identifier, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, spreadsheetID string) error
	Clear(ctx context.Context) error
}

// RowOp is one row change of a pending remote leg. Rows are addressed by
// record id; the position is resolved when the op is sent.
type RowOp struct {
	Kind       sheets.OpKind     `json:"kind"`
	Collection sheets.Collection `json:"collection"`
	RecordID   string            `json:"recordId"`
	Row        sheets.Row        `json:"row,omitempty"`
}

// PendingOp is the remote leg of one applied local mutation. All of its row
// ops are sent as one request.
type PendingOp struct {
	CreatedAt     time.Time
	SpreadsheetID string
	LastError     string
	Ops           []RowOp
	ID            int64
	Attempts      int
}

// Outbox queues remote legs until the remote confirms them.
type Outbox interface {
	// Enqueue stores op and assigns its ID.
	Enqueue(ctx context.Context, op *PendingOp) error
	// Pending returns the queued ops for spreadsheetID, oldest first.
	Pending(ctx context.Context, spreadsheetID string) ([]PendingOp, error)
	Remove(ctx context.Context, id int64) error
	// MarkFailed counts a failed attempt and records its error.
	MarkFailed(ctx context.Context, id int64, cause error) error
	Clear(ctx context.Context) error
}

// Level is the severity of a notification.
type Level string

// Notification levels.
const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a short user-facing message.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier shows notifications without blocking the caller.
type Notifier interface {
	Notify(n Notification)
}

// SnapshotCache keeps the last known ledger as rows so it survives restarts
// and stays readable while the remote is unreachable.
type SnapshotCache interface {
	// LoadSnapshot returns the cached rows; an empty cache returns an empty map.
	LoadSnapshot(ctx context.Context) (map[sheets.Collection][]sheets.Row, error)
	SaveSnapshot(ctx context.Context, rows map[sheets.Collection][]sheets.Row) error
}
