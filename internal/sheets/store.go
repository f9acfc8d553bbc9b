package sheets

import (
	"context"
	"fmt"
)

// Store is a remote spreadsheet holding one tab per collection. Row indexes
// are zero-based data row positions; the header row is not counted.
type Store interface {
	// Provision creates a new spreadsheet with every tab and header row and
	// returns its identifier.
	Provision(ctx context.Context) (string, error)
	// EnsureSchema adds missing tabs and header rows to an existing spreadsheet.
	EnsureSchema(ctx context.Context, spreadsheetID string) error
	ReadCollection(ctx context.Context, spreadsheetID string, c Collection) ([]Record, error)
	// ReadAll reads every collection. Missing tabs read as empty.
	ReadAll(ctx context.Context, spreadsheetID string) (Snapshot, error)
	AppendRows(ctx context.Context, spreadsheetID string, c Collection, rows []Row) error
	UpdateRow(ctx context.Context, spreadsheetID string, c Collection, rowIndex int, row Row) error
	DeleteRow(ctx context.Context, spreadsheetID string, c Collection, rowIndex int) error
	// Apply performs ops in order as one request. Either every op lands or
	// none does.
	Apply(ctx context.Context, spreadsheetID string, ops []Op) error
}

// OpKind is the kind of a row operation.
type OpKind string

// Row operation kinds.
const (
	OpAppend OpKind = "append"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Op is one row operation inside an Apply batch. RowIndex is ignored for
// appends; Row is ignored for deletes.
type Op struct {
	Kind       OpKind     `json:"kind"`
	Collection Collection `json:"sheetType"`
	RowIndex   int        `json:"rowIndex,omitempty"`
	Row        Row        `json:"data,omitempty"`
}

// Validate checks that op is well formed.
func (op Op) Validate() error {
	if !op.Collection.Valid() {
		return fmt.Errorf("Invalid sheetType: %s", op.Collection)
	}
	switch op.Kind {
	case OpAppend, OpUpdate:
		if len(op.Row) == 0 {
			return fmt.Errorf("%s %s: row is empty", op.Kind, op.Collection)
		}
	case OpDelete:
	default:
		return fmt.Errorf("unknown op kind %q", op.Kind)
	}
	if op.Kind != OpAppend && op.RowIndex < 0 {
		return fmt.Errorf("%s %s: negative row index %d", op.Kind, op.Collection, op.RowIndex)
	}
	return nil
}
