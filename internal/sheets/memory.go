package sheets

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Veraticus/buildtrack/internal/common"
)

// MemoryStore is an in-process Store. It records every call and can be told
// to fail a given action, which makes it the remote of choice in tests.
type MemoryStore struct {
	books  map[string]map[Collection][]Row
	errs   map[string]error
	calls  []Call
	nextID int
	mu     sync.Mutex
}

// Call is one recorded Store call.
type Call struct {
	Action        string
	SpreadsheetID string
	Collection    Collection
	Rows          []Row
	Ops           []Op
	RowIndex      int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[string]map[Collection][]Row),
		errs:  make(map[string]error),
	}
}

// SetError makes every later call of action fail with err. A nil err clears it.
func (m *MemoryStore) SetError(action string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.errs, action)
		return
	}
	m.errs[action] = err
}

// ClearErrors removes every injected failure.
func (m *MemoryStore) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errs = make(map[string]error)
}

// Calls returns a copy of the recorded calls.
func (m *MemoryStore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.calls)
}

// CallCount returns how many times action was called.
func (m *MemoryStore) CallCount(action string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c.Action == action {
			n++
		}
	}
	return n
}

// ResetCalls forgets the recorded calls.
func (m *MemoryStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
}

// Seed stores rows directly, creating the spreadsheet if needed. It is not
// recorded as a call.
func (m *MemoryStore) Seed(spreadsheetID string, c Collection, rows ...Row) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book, ok := m.books[spreadsheetID]
	if !ok {
		book = make(map[Collection][]Row)
		m.books[spreadsheetID] = book
	}
	for _, r := range rows {
		book[c] = append(book[c], slices.Clone(r))
	}
}

// Rows returns a copy of the data rows of c.
func (m *MemoryStore) Rows(spreadsheetID string, c Collection) []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Row
	for _, r := range m.books[spreadsheetID][c] {
		out = append(out, slices.Clone(r))
	}
	return out
}

func (m *MemoryStore) record(call Call) error {
	m.calls = append(m.calls, call)
	return m.errs[call.Action]
}

func (m *MemoryStore) book(spreadsheetID string) (map[Collection][]Row, error) {
	book, ok := m.books[spreadsheetID]
	if !ok {
		return nil, fmt.Errorf("spreadsheet %s: %w", spreadsheetID, common.ErrNotFound)
	}
	return book, nil
}

// Provision implements Store.
func (m *MemoryStore) Provision(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Action: ActionCreate}); err != nil {
		return "", err
	}

	m.nextID++
	id := fmt.Sprintf("memory-sheet-%d", m.nextID)
	m.books[id] = make(map[Collection][]Row)
	return id, nil
}

// EnsureSchema implements Store.
func (m *MemoryStore) EnsureSchema(_ context.Context, spreadsheetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Action: ActionInitialize, SpreadsheetID: spreadsheetID}); err != nil {
		return err
	}
	_, err := m.book(spreadsheetID)
	return err
}

// ReadCollection implements Store.
func (m *MemoryStore) ReadCollection(_ context.Context, spreadsheetID string, c Collection) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Action: ActionRead, SpreadsheetID: spreadsheetID, Collection: c}); err != nil {
		return nil, err
	}
	book, err := m.book(spreadsheetID)
	if err != nil {
		return nil, err
	}
	return m.records(book, c), nil
}

// ReadAll implements Store.
func (m *MemoryStore) ReadAll(_ context.Context, spreadsheetID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Action: ActionReadAll, SpreadsheetID: spreadsheetID}); err != nil {
		return nil, err
	}
	book, err := m.book(spreadsheetID)
	if err != nil {
		return nil, err
	}
	snap := make(Snapshot, len(order))
	for _, c := range order {
		snap[c] = m.records(book, c)
	}
	return snap, nil
}

func (m *MemoryStore) records(book map[Collection][]Row, c Collection) []Record {
	headers := c.Headers()
	out := make([]Record, 0, len(book[c]))
	for _, r := range book[c] {
		out = append(out, RowToRecord(headers, r))
	}
	return out
}

// AppendRows implements Store.
func (m *MemoryStore) AppendRows(_ context.Context, spreadsheetID string, c Collection, rows []Row) error {
	return m.apply(Call{Action: ActionAppend, SpreadsheetID: spreadsheetID, Collection: c, Rows: rows},
		Op{Kind: OpAppend, Collection: c}, rows)
}

// UpdateRow implements Store.
func (m *MemoryStore) UpdateRow(_ context.Context, spreadsheetID string, c Collection, rowIndex int, row Row) error {
	return m.apply(Call{Action: ActionUpdate, SpreadsheetID: spreadsheetID, Collection: c, RowIndex: rowIndex, Rows: []Row{row}},
		Op{Kind: OpUpdate, Collection: c, RowIndex: rowIndex, Row: row}, nil)
}

// DeleteRow implements Store.
func (m *MemoryStore) DeleteRow(_ context.Context, spreadsheetID string, c Collection, rowIndex int) error {
	return m.apply(Call{Action: ActionDelete, SpreadsheetID: spreadsheetID, Collection: c, RowIndex: rowIndex},
		Op{Kind: OpDelete, Collection: c, RowIndex: rowIndex}, nil)
}

func (m *MemoryStore) apply(call Call, op Op, rows []Row) error {
	ops := []Op{op}
	if op.Kind == OpAppend {
		ops = ops[:0]
		for _, r := range rows {
			ops = append(ops, Op{Kind: OpAppend, Collection: op.Collection, Row: r})
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(call); err != nil {
		return err
	}
	return m.commit(call.SpreadsheetID, ops)
}

// Apply implements Store. Ops are checked against a copy and only committed
// when all of them succeed.
func (m *MemoryStore) Apply(_ context.Context, spreadsheetID string, ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Action: ActionBatch, SpreadsheetID: spreadsheetID, Ops: slices.Clone(ops)}); err != nil {
		return err
	}
	return m.commit(spreadsheetID, ops)
}

func (m *MemoryStore) commit(spreadsheetID string, ops []Op) error {
	book, err := m.book(spreadsheetID)
	if err != nil {
		return err
	}

	staged := make(map[Collection][]Row, len(book))
	for c, rows := range book {
		staged[c] = slices.Clone(rows)
	}

	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
		rows := staged[op.Collection]
		switch op.Kind {
		case OpAppend:
			staged[op.Collection] = append(rows, slices.Clone(op.Row))
		case OpUpdate:
			if op.RowIndex >= len(rows) {
				return fmt.Errorf("op %d: update %s row %d: %w", i, op.Collection, op.RowIndex, common.ErrNotFound)
			}
			rows[op.RowIndex] = slices.Clone(op.Row)
		case OpDelete:
			if op.RowIndex >= len(rows) {
				return fmt.Errorf("op %d: delete %s row %d: %w", i, op.Collection, op.RowIndex, common.ErrNotFound)
			}
			staged[op.Collection] = slices.Delete(rows, op.RowIndex, op.RowIndex+1)
		}
	}

	m.books[spreadsheetID] = staged
	return nil
}
