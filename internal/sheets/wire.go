package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Actions understood by the backend function.
const (
	ActionCreate     = "create"
	ActionInitialize = "initialize"
	ActionRead       = "read"
	ActionReadAll    = "readAll"
	ActionAppend     = "append"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionBatch      = "batch"
)

// Request is the body of a backend function call. Data holds the rows for
// append, a single row for update, and is absent otherwise.
type Request struct {
	RowIndex      *int            `json:"rowIndex,omitempty"`
	Action        string          `json:"action"`
	SpreadsheetID string          `json:"spreadsheetId,omitempty"`
	SheetType     string          `json:"sheetType,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	Ops           []Op            `json:"ops,omitempty"`
}

// Response is the body the backend function answers with. Data holds
// []Record for read and map[collection][]Record for readAll.
type Response struct {
	SpreadsheetID string          `json:"spreadsheetId,omitempty"`
	Error         string          `json:"error,omitempty"`
	Message       string          `json:"message,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	Success       bool            `json:"success"`
}

// UnmarshalJSON accepts string, number, boolean and null cells and stores
// them as strings.
func (r *Row) UnmarshalJSON(b []byte) error {
	var cells []any
	if err := json.Unmarshal(b, &cells); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	row := make(Row, len(cells))
	for i, c := range cells {
		s, err := cellString(c)
		if err != nil {
			return fmt.Errorf("decode row cell %d: %w", i, err)
		}
		row[i] = s
	}
	*r = row
	return nil
}

// UnmarshalJSON accepts scalar values of any JSON type and stores them as
// strings.
func (r *Record) UnmarshalJSON(b []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	rec := make(Record, len(fields))
	for k, v := range fields {
		s, err := cellString(v)
		if err != nil {
			return fmt.Errorf("decode record field %q: %w", k, err)
		}
		rec[k] = s
	}
	*r = rec
	return nil
}

func cellString(v any) (string, error) {
	switch c := v.(type) {
	case nil:
		return "", nil
	case string:
		return c, nil
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(c), nil
	default:
		return "", fmt.Errorf("unsupported cell type %T", v)
	}
}
