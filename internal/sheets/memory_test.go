package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/buildtrack/internal/common"
)

func TestMemoryStorePrimitives(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Provision(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, store.AppendRows(ctx, id, MaterialItems, []Row{
		{"i1", "Cement", "bag", ""},
		{"i2", "Steel", "kg", ""},
	}))
	require.NoError(t, store.UpdateRow(ctx, id, MaterialItems, 1, Row{"i2", "TMT Steel", "kg", "Fe500"}))

	records, err := store.ReadCollection(ctx, id, MaterialItems)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "TMT Steel", records[1]["name"])

	require.NoError(t, store.DeleteRow(ctx, id, MaterialItems, 0))
	snap, err := store.ReadAll(ctx, id)
	require.NoError(t, err)
	require.Len(t, snap[MaterialItems], 1)
	assert.Equal(t, "i2", snap[MaterialItems][0].ID())
	assert.Empty(t, snap[Projects])

	err = store.UpdateRow(ctx, id, MaterialItems, 4, Row{"x"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.ReadAll(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryStoreApplyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed("s1", Bills, Row{"b1", "INV-1", "", "p1", "", "", "", "100", "0", "pending"})

	err := store.Apply(ctx, "s1", []Op{
		{Kind: OpAppend, Collection: Payments, Row: Row{"pay1"}},
		{Kind: OpUpdate, Collection: Bills, RowIndex: 3, Row: Row{"b1"}},
	})
	require.Error(t, err)
	assert.Empty(t, store.Rows("s1", Payments))

	err = store.Apply(ctx, "s1", []Op{
		{Kind: OpAppend, Collection: Payments, Row: Row{"pay1"}},
		{Kind: OpUpdate, Collection: Bills, RowIndex: 0, Row: Row{"b1", "INV-1", "", "p1", "", "", "", "100", "100", "paid"}},
	})
	require.NoError(t, err)
	assert.Len(t, store.Rows("s1", Payments), 1)
	assert.Equal(t, "paid", store.Rows("s1", Bills)[0][9])
}

func TestMemoryStoreInjectedErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	boom := errors.New("boom")

	store.SetError(ActionCreate, boom)
	_, err := store.Provision(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, store.CallCount(ActionCreate))

	store.SetError(ActionCreate, nil)
	id, err := store.Provision(ctx)
	require.NoError(t, err)

	store.SetError(ActionBatch, boom)
	err = store.Apply(ctx, id, []Op{{Kind: OpAppend, Collection: Transactions, Row: Row{"t1"}}})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.Rows(id, Transactions))

	store.ClearErrors()
	require.NoError(t, store.Apply(ctx, id, []Op{{Kind: OpAppend, Collection: Transactions, Row: Row{"t1"}}}))

	calls := store.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, ActionBatch, calls[3].Action)
	require.Len(t, calls[3].Ops, 1)

	store.ResetCalls()
	assert.Empty(t, store.Calls())
}

func TestOpValidate(t *testing.T) {
	tests := []struct {
		name    string
		op      Op
		wantErr string
	}{
		{name: "valid append", op: Op{Kind: OpAppend, Collection: Bills, Row: Row{"b1"}}},
		{name: "valid delete", op: Op{Kind: OpDelete, Collection: Bills, RowIndex: 2}},
		{name: "unknown collection", op: Op{Kind: OpAppend, Collection: "invoices", Row: Row{"x"}}, wantErr: "Invalid sheetType: invoices"},
		{name: "empty update", op: Op{Kind: OpUpdate, Collection: Bills}, wantErr: "row is empty"},
		{name: "negative index", op: Op{Kind: OpDelete, Collection: Bills, RowIndex: -1}, wantErr: "negative row index"},
		{name: "unknown kind", op: Op{Kind: "move", Collection: Bills}, wantErr: "unknown op kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWireCellsNormalizeToStrings(t *testing.T) {
	var row Row
	require.NoError(t, row.UnmarshalJSON([]byte(`["p1", 1200000, 12.5, true, null]`)))
	assert.Equal(t, Row{"p1", "1200000", "12.5", "true", ""}, row)

	var rec Record
	require.NoError(t, rec.UnmarshalJSON([]byte(`{"id":"b1","amount":500}`)))
	assert.Equal(t, Record{"id": "b1", "amount": "500"}, rec)

	assert.Error(t, row.UnmarshalJSON([]byte(`[["nested"]]`)))
}
